// Package documents stores apartment files (notices, circulars, bylaws) in
// object storage with Postgres metadata.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Category of a document.
type Category string

// Document categories.
const (
	CategoryNotice   Category = "notice"
	CategoryCircular Category = "circular"
	CategoryBylaw    Category = "bylaw"
	CategoryOther    Category = "other"
)

// Document is stored file metadata. ObjectKey locates the blob in the bucket.
type Document struct {
	ID          uuid.UUID `json:"id"`
	ApartmentID uuid.UUID `json:"apartment_id"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ObjectKey   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
