package model

// DailyQuota is the per-user, per-UTC-day counter row. A new day key means a
// fresh row, which is how the lazy midnight reset works: no scheduler, the
// old row simply stops being read.
type DailyQuota struct {
	UserID      int64  `json:"user_id"`
	DayKey      string `json:"day_key"`
	LikesUsed   int    `json:"likes_used"`
	MatchesUsed int    `json:"matches_used"`
}
