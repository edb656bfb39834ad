package entities

// UploadedFile describes a file-like field value before submission.
// Only metadata is inspected client-side; content handling is delegated
// to the storage backend after submission.
type UploadedFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}
