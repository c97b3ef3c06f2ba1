package server

const (
	OperationUpload       = "upload"
	OperationCreateFolder = "create_folder"
	OperationCreateFile   = "create_file"
	OperationDelete       = "delete"
	OperationRename       = "rename"
	OperationCopy         = "copy"
	OperationMove         = "move"
	OperationBatchCopy    = "batch_copy"
	OperationBatchMove    = "batch_move"
	OperationBatchDelete  = "batch_delete"
	OperationEmptyTrash   = "empty_trash"
	OperationZip          = "zip"
	OperationUnzip        = "unzip"

	LogFileUploaded        = "File uploaded"
	LogFolderCreated       = "Folder created"
	LogFileCreated         = "File created"
	LogFileOrFolderDeleted = "File or folder deleted"
	LogFileOrFolderRenamed = "File or folder renamed"
	LogItemCopied          = "Item copied"
	LogItemMoved           = "Item moved"
	LogBatchProcessed      = "Batch processed"
	LogTrashEmptied        = "Trash emptied"
	LogItemZipped          = "Item zipped"
	LogItemUnzipped        = "Item unzipped"

	QueryParamPath   = "path"
	QueryParamSearch = "search"
	QueryParamHidden = "show_hidden"
	QueryParamMode   = "mode"
	ModeRecents      = "recents"
	RecentsName      = "Recents"

	FormParamFile  = "file"
	FormParamName  = "name"
	FormParamOld   = "old"
	FormParamNew   = "new"
	FormParamPath  = "path"
	FormParamSrc   = "src"
	FormParamDst   = "dst"
	FormParamNames = "names"

	NamesSeparator       = ","
	RedirectPathTemplate = "/?path="
)
