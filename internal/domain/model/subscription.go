package model

import (
	"time"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
)

type Subscription struct {
	UserID       int64      `json:"user_id"`
	Plan         enums.Plan `json:"plan"`
	ProExpiresAt *time.Time `json:"pro_expires_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
