package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/model"
	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
)

const maxMessageLength = 2000

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("match not found")
	ErrNotMember    = errors.New("not a match member")
	ErrNotVerified  = errors.New("both members must be verified")
	ErrMessageLimit = errors.New("free message limit reached")
)

type MatchStore interface {
	GetByID(ctx context.Context, matchID int64) (model.Match, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID int64) (pgrepo.ProfileRecord, error)
}

type MessageStore interface {
	Insert(ctx context.Context, tx pgx.Tx, matchID, senderID int64, content string) (model.Message, error)
	CountBySenderInMatch(ctx context.Context, tx pgx.Tx, matchID, senderID int64) (int, error)
	ListByMatch(ctx context.Context, matchID int64, limit int) ([]model.Message, error)
}

type EntitlementProvider interface {
	IsProActive(ctx context.Context, userID int64) (bool, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, userID *int64, name string, props map[string]any)
}

type Config struct {
	FreeMessagesPerMatch int
}

type Message struct {
	ID           int64
	MatchID      int64
	SenderUserID int64
	Content      string
	CreatedAt    time.Time
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	Matches      MatchStore
	Messages     MessageStore
	Profiles     ProfileStore
	Entitlements EntitlementProvider
	Events       EventEmitter
}

type Service struct {
	matches      MatchStore
	messages     MessageStore
	profiles     ProfileStore
	entitlements EntitlementProvider
	events       EventEmitter
	cfg          Config
	runTx        func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.FreeMessagesPerMatch <= 0 {
		cfg.FreeMessagesPerMatch = 3
	}

	return &Service{
		matches:      deps.Matches,
		messages:     deps.Messages,
		profiles:     deps.Profiles,
		entitlements: deps.Entitlements,
		events:       deps.Events,
		cfg:          cfg,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
	}
}

// Send counts the sender's prior messages inside the insert transaction, so
// the free-tier gate holds under concurrent sends. Messages flow only between
// verified members.
func (s *Service) Send(ctx context.Context, matchID, senderID int64, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if matchID <= 0 || senderID <= 0 || content == "" || len(content) > maxMessageLength {
		return Message{}, ErrValidation
	}
	if s.matches == nil || s.messages == nil || s.profiles == nil || s.entitlements == nil {
		return Message{}, fmt.Errorf("chat dependencies are not configured")
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return Message{}, ErrNotFound
		}
		return Message{}, err
	}
	if match.UserAID != senderID && match.UserBID != senderID {
		return Message{}, ErrNotMember
	}

	for _, memberID := range [2]int64{match.UserAID, match.UserBID} {
		profile, err := s.profiles.Get(ctx, memberID)
		if err != nil {
			return Message{}, err
		}
		if !profile.IsVerified {
			return Message{}, ErrNotVerified
		}
	}

	proActive, err := s.entitlements.IsProActive(ctx, senderID)
	if err != nil {
		return Message{}, err
	}

	var rec model.Message
	if err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if !proActive {
			sent, err := s.messages.CountBySenderInMatch(txCtx, tx, matchID, senderID)
			if err != nil {
				return err
			}
			if sent >= s.cfg.FreeMessagesPerMatch {
				return ErrMessageLimit
			}
		}

		inserted, err := s.messages.Insert(txCtx, tx, matchID, senderID, content)
		if err != nil {
			return err
		}
		rec = inserted
		return nil
	}); err != nil {
		if errors.Is(err, ErrMessageLimit) && s.events != nil {
			s.events.Emit(ctx, &senderID, "message_limit_reached", map[string]any{
				"match_id": matchID,
			})
		}
		return Message{}, err
	}

	return Message{
		ID:           rec.ID,
		MatchID:      rec.MatchID,
		SenderUserID: rec.SenderUserID,
		Content:      rec.Content,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func (s *Service) List(ctx context.Context, matchID, userID int64, limit int) ([]Message, error) {
	if matchID <= 0 || userID <= 0 {
		return nil, ErrValidation
	}
	if s.matches == nil || s.messages == nil {
		return nil, fmt.Errorf("chat dependencies are not configured")
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if match.UserAID != userID && match.UserBID != userID {
		return nil, ErrNotMember
	}

	records, err := s.messages.ListByMatch(ctx, matchID, limit)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, Message{
			ID:           rec.ID,
			MatchID:      rec.MatchID,
			SenderUserID: rec.SenderUserID,
			Content:      rec.Content,
			CreatedAt:    rec.CreatedAt,
		})
	}

	return messages, nil
}
