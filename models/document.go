package models

import "time"

// ApplicationDocument is a file attached to an application at submission
// time. Documents are read-only after submission.
type ApplicationDocument struct {
	DocumentID       int        `gorm:"primaryKey;column:document_id" json:"document_id"`
	ApplicationID    int        `gorm:"column:application_id" json:"application_id"`
	OriginalFilename string     `gorm:"column:original_filename" json:"original_filename"`
	StoredFilename   string     `gorm:"column:stored_filename" json:"-"`
	FileSize         int64      `gorm:"column:file_size" json:"file_size"`
	MimeType         string     `gorm:"column:mime_type" json:"mime_type"`
	UploadedAt       *time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

// TableName overrides
func (ApplicationDocument) TableName() string {
	return "application_documents"
}

// Helper methods for file validation
func (d *ApplicationDocument) IsAllowedType() bool {
	allowed := []string{
		"application/pdf",
		"image/jpeg",
		"image/jpg",
		"image/png",
	}
	for _, mime := range allowed {
		if d.MimeType == mime {
			return true
		}
	}
	return false
}

func (d *ApplicationDocument) FileSizeInMB() float64 {
	return float64(d.FileSize) / (1024 * 1024)
}
