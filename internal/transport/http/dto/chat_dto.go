package dto

import "time"

type ChatSendRequest struct {
	Content string `json:"content"`
}

type ChatMessageResponse struct {
	ID           int64     `json:"id"`
	MatchID      int64     `json:"match_id"`
	SenderUserID int64     `json:"sender_user_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

type ChatMessagesResponse struct {
	Items []ChatMessageResponse `json:"items"`
}
