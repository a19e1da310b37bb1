package model

// File stores an uploaded document (resume or cover letter) as raw bytes.
// Apply requests reference files by id.
type File struct {
	ID        int `gorm:"primaryKey"`
	Content   []byte
	Extension string
}
