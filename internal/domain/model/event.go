package model

import "time"

// Event rows are drained by the notification collaborator; the engine only
// appends them.
type Event struct {
	ID        int64          `json:"id"`
	UserID    *int64         `json:"user_id"`
	Name      string         `json:"name"`
	Props     map[string]any `json:"props"`
	CreatedAt time.Time      `json:"created_at"`
}
