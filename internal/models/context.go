package models

// ContextFile describes one stored context document.
type ContextFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// UploadResponse lists the files stored by an upload request.
type UploadResponse struct {
	Stored []ContextFile `json:"stored"`
}
