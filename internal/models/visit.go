package models

import (
	"time"
)

// Классификация перехода по ссылке
const (
	LinkTypePublic  = "public"
	LinkTypePrivate = "private"
)

type Visit struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	LinkID      int64     `json:"link_id"`
	LinkType    string    `json:"link_type"`
	VisitedAt   time.Time `json:"visited_at"`
}

// VisitEvent событие перехода, отправляемое в worker pool
type VisitEvent struct {
	ShortCode string
}
