package domain

import (
	"encoding/json"
	"time"
)

// Order registra la compra de un curso por un usuario.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	CourseID    string          `json:"course_id"`
	PaymentInfo json.RawMessage `json:"payment_info,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MonthCount es un punto de la serie mensual para analytics.
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}
