package domain

// ItemStatus терминальное состояние одного элемента пакетной операции.
// Повторных попыток нет, каждый элемент заканчивает ровно в одном из них.
type ItemStatus string

const (
	ItemCopied           ItemStatus = "copied"
	ItemMoved            ItemStatus = "moved"
	ItemMovedToTrash     ItemStatus = "moved_to_trash"
	ItemErased           ItemStatus = "erased"
	ItemSkippedMissing   ItemStatus = "skipped_missing"
	ItemSkippedProtected ItemStatus = "skipped_protected"
	ItemFailed           ItemStatus = "failed"
)

// ItemResult результат обработки одного имени из пакетного запроса.
// Ошибка отдельного элемента не прерывает обработку остальных, но и не
// теряется: граница сама решает, как её показать.
type ItemResult struct {
	Name   string
	Status ItemStatus
	Err    error
}

// Failed true, если элемент закончил с ошибкой, а не был пропущен.
func (r ItemResult) Failed() bool {
	return r.Status == ItemFailed
}
