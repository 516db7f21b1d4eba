package model

import (
	"time"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
)

type Profile struct {
	UserID             int64                    `json:"user_id"`
	DisplayName        string                   `json:"display_name"`
	Age                int                      `json:"age"`
	Gender             string                   `json:"gender"`
	RelationshipIntent enums.RelationshipIntent `json:"relationship_intent"`
	Bio                string                   `json:"bio"`
	IsVerified         bool                     `json:"is_verified"`
	ProfileCompleted   bool                     `json:"profile_completed"`
	Lat                *float64                 `json:"lat"`
	Lon                *float64                 `json:"lon"`
	Country            string                   `json:"country"`
	State              string                   `json:"state"`
	City               string                   `json:"city"`
	PhotoURLs          []string                 `json:"photo_urls"`
	AgeMin             int                      `json:"age_min"`
	AgeMax             int                      `json:"age_max"`
	RadiusKM           int                      `json:"radius_km"`
	VerifiedOnly       bool                     `json:"verified_only"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}
