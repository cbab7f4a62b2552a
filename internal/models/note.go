package models

// Note is free text attached to exactly one watchlist entry.
type Note struct {
	ID        int64  `json:"id"`
	EntryID   int64  `json:"parentAssetId"`
	Text      string `json:"text" validate:"required,max=2000"`
	CreatedAt string `json:"createdAt,omitempty"`
}
