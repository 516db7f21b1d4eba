package dto

type FeedItemResponse struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Age         int    `json:"age"`
	City        string `json:"city"`
	IsVerified  bool   `json:"is_verified"`
	DistanceKM  *int   `json:"distance_km,omitempty"`
}

type FeedResponse struct {
	Items      []FeedItemResponse `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}
