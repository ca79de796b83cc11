package domain

// Drive mime types used by the store
const (
	MimeFolder = "application/vnd.google-apps.folder"
	MimePDF    = "application/pdf"
	MimeText   = "text/plain"
)

// KnowledgeFile represents one uploaded source document in the root folder.
// Files are created by upload and removed by delete, never mutated in place.
type KnowledgeFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}
