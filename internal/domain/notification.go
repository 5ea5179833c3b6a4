package domain

import "time"

const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification es un aviso interno dirigido a los administradores.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
