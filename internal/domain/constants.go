package domain

const (
	PathEmpty        = ""
	PathCurrent      = "."
	PathRoot         = "/"
	RootDisplayName  = "Root"
	HiddenFilePrefix = "."
	ExtensionZip     = ".zip"
	ExtensionMD      = ".md"
	MIMEOctetStream  = "application/octet-stream"
	MIMEZip          = "application/zip"
	MIMEPDF          = "application/pdf"
	MIMETextPlain    = "text/plain; charset=utf-8"
	MIMEHTML         = "text/html; charset=utf-8"
)
