package model

import "time"

// Match is the derived reciprocal-like relation, persisted so the feed and
// chat paths never have to recompute it. UserAID < UserBID always holds.
type Match struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}
