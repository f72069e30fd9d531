package store

import "time"

// Dataset represents one uploaded claim-payment record set.
type Dataset struct {
	ID         int64     `json:"id"`
	UploadedAt time.Time `json:"uploaded_at"`
	Name       string    `json:"name"`
	RowCount   int       `json:"row_count"`
}
