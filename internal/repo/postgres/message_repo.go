package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/model"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Insert(ctx context.Context, tx pgx.Tx, matchID, senderID int64, content string) (model.Message, error) {
	if matchID <= 0 || senderID <= 0 || content == "" {
		return model.Message{}, fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return model.Message{}, fmt.Errorf("transaction is required")
	}

	rec := model.Message{
		MatchID:      matchID,
		SenderUserID: senderID,
		Content:      content,
	}
	err := tx.QueryRow(ctx, `
INSERT INTO messages (
	match_id,
	sender_user_id,
	content,
	created_at
) VALUES ($1, $2, $3, NOW())
RETURNING id, created_at
`, matchID, senderID, content).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return rec, nil
}

// CountBySenderInMatch runs inside the send transaction so the free-tier
// message gate cannot be raced past.
func (r *MessageRepo) CountBySenderInMatch(ctx context.Context, tx pgx.Tx, matchID, senderID int64) (int, error) {
	if matchID <= 0 || senderID <= 0 {
		return 0, fmt.Errorf("invalid message count payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	var count int
	if err := tx.QueryRow(ctx, `
SELECT COUNT(*)
FROM messages
WHERE match_id = $1 AND sender_user_id = $2
`, matchID, senderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sender messages: %w", err)
	}

	return count, nil
}

func (r *MessageRepo) ListByMatch(ctx context.Context, matchID int64, limit int) ([]model.Message, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Message{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, match_id, sender_user_id, content, created_at
FROM messages
WHERE match_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0, limit)
	for rows.Next() {
		var rec model.Message
		if err := rows.Scan(&rec.ID, &rec.MatchID, &rec.SenderUserID, &rec.Content, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}
