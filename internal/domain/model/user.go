package model

import (
	"time"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
)

type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
