package domain

import "path/filepath"

// CanonicalPath абсолютный путь с раскрытыми симлинками, без "." и "..".
// Все проверки защиты и принадлежности к корзине сравнивают именно
// канонические пути, а не сырые строки, иначе защиту можно обойти
// альтернативным написанием того же места.
type CanonicalPath string

func (p CanonicalPath) String() string {
	return string(p)
}

func (p CanonicalPath) Base() string {
	return filepath.Base(string(p))
}

// Join присоединяет имя элемента, сам результат уже не канонический.
func (p CanonicalPath) Join(name string) string {
	return filepath.Join(string(p), name)
}
