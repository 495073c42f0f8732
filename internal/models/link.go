package models

import (
	"time"
)

type Link struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateShortInput struct {
	OriginalURL string `json:"url" binding:"required"`
	CreatorName string `json:"creator_name"`
	Users       string `json:"users"`
}

// LinkStatus строка ответа /user/status. Дефисы в именах полей
// сохранены ради совместимости существующих клиентов.
type LinkStatus struct {
	ShortID     int64  `json:"short-id"`
	ShortURL    string `json:"short-url"`
	OriginalURL string `json:"original-url"`
	Type        string `json:"type"`
}
