package dto

import "time"

type VerificationSubmitResponse struct {
	SubmissionID int64  `json:"submission_id"`
	Status       string `json:"status"`
}

type VerificationStatusResponse struct {
	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

type ModerationQueueItemResponse struct {
	SubmissionID int64     `json:"submission_id"`
	UserID       int64     `json:"user_id"`
	SelfieURL    string    `json:"selfie_url"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type ModerationQueueResponse struct {
	Items []ModerationQueueItemResponse `json:"items"`
}

type ModerationReviewRequest struct {
	SubmissionID int64 `json:"submission_id"`
	Approve      bool  `json:"approve"`
}

type ModerationReviewResponse struct {
	OK bool `json:"ok"`
}
