package feed

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	pgrepo "github.com/Imamariya/mccuppidv1.01/internal/repo/postgres"
	geosvc "github.com/Imamariya/mccuppidv1.01/internal/services/geo"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidCursor = errors.New("invalid cursor")
	ErrNotFound      = errors.New("not found")
)

type Repository interface {
	GetViewerContext(ctx context.Context, userID int64) (pgrepo.FeedViewerContext, error)
	ListCandidates(ctx context.Context, q pgrepo.FeedQuery) ([]pgrepo.FeedCandidate, error)
}

type Config struct {
	DefaultAgeMin   int
	DefaultAgeMax   int
	DefaultRadiusKM int
	MaxRadiusKM     int
	PageSize        int
}

// Request carries the page window and the caller's optional filter
// overrides. A nil override falls back to the viewer's stored preference.
type Request struct {
	Cursor       string
	Limit        int
	AgeMin       *int
	AgeMax       *int
	RadiusKM     *int
	VerifiedOnly *bool
}

type Item struct {
	UserID      int64
	DisplayName string
	Age         int
	City        string
	IsVerified  bool
	DistanceKM  *int
}

type Result struct {
	Items      []Item
	NextCursor string
}

type pageCursor struct {
	CreatedAt int64 `json:"t"`
	UserID    int64 `json:"i"`
}

type Service struct {
	repo Repository
	cfg  Config
}

func NewService(repo Repository, cfg Config) *Service {
	if cfg.DefaultAgeMin <= 0 {
		cfg.DefaultAgeMin = 18
	}
	if cfg.DefaultAgeMax <= 0 {
		cfg.DefaultAgeMax = 100
	}
	if cfg.DefaultRadiusKM <= 0 {
		cfg.DefaultRadiusKM = 50
	}
	if cfg.MaxRadiusKM <= 0 {
		cfg.MaxRadiusKM = 100
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	return &Service{
		repo: repo,
		cfg:  cfg,
	}
}

// Get returns candidates that pass every active filter. The repository does
// the coarse cut in SQL; the exact distance and the verified gate are applied
// here so the exposed values always agree with what was filtered on.
func (s *Service) Get(ctx context.Context, userID int64, req Request) (Result, error) {
	if userID <= 0 {
		return Result{}, ErrValidation
	}
	if s.repo == nil {
		return Result{}, fmt.Errorf("feed repository is nil")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.PageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	viewer, err := s.repo.GetViewerContext(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrFeedViewerNotFound) {
			return Result{}, ErrNotFound
		}
		return Result{}, err
	}

	// Request overrides win over stored preferences for this page only.
	if req.AgeMin != nil {
		viewer.AgeMin = *req.AgeMin
	}
	if req.AgeMax != nil {
		viewer.AgeMax = *req.AgeMax
	}
	if req.RadiusKM != nil {
		viewer.RadiusKM = *req.RadiusKM
	}
	if req.VerifiedOnly != nil {
		viewer.VerifiedOnly = *req.VerifiedOnly
	}

	ageMin, ageMax := s.resolveAgeBand(viewer)
	radiusKM := s.resolveRadius(viewer)

	query := pgrepo.FeedQuery{
		ViewerUserID: userID,
		AgeMin:       ageMin,
		AgeMax:       ageMax,
		RadiusKM:     radiusKM,
		VerifiedOnly: viewer.VerifiedOnly,
		ViewerLat:    viewer.Lat,
		ViewerLon:    viewer.Lon,
		Limit:        limit,
	}
	if strings.TrimSpace(req.Cursor) != "" {
		decoded, err := decodeCursor(req.Cursor)
		if err != nil {
			return Result{}, ErrInvalidCursor
		}
		query.HasCursor = true
		query.CursorCreatedAt = time.Unix(decoded.CreatedAt, 0).UTC()
		query.CursorUserID = decoded.UserID
	}

	candidates, err := s.repo.ListCandidates(ctx, query)
	if err != nil {
		return Result{}, err
	}

	items := make([]Item, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.UserID == userID {
			continue
		}
		if viewer.VerifiedOnly && !candidate.IsVerified {
			continue
		}
		if candidate.Age < ageMin || candidate.Age > ageMax {
			continue
		}

		item := Item{
			UserID:      candidate.UserID,
			DisplayName: candidate.DisplayName,
			Age:         candidate.Age,
			City:        candidate.City,
			IsVerified:  candidate.IsVerified,
		}

		if viewer.Lat != nil && viewer.Lon != nil && candidate.Lat != nil && candidate.Lon != nil {
			distance := geosvc.DistanceKM(*viewer.Lat, *viewer.Lon, *candidate.Lat, *candidate.Lon)
			if radiusKM > 0 && distance > float64(radiusKM) {
				continue
			}
			rounded := int(math.Round(distance))
			item.DistanceKM = &rounded
		}

		items = append(items, item)
	}

	result := Result{Items: items}
	if len(candidates) == limit {
		last := candidates[len(candidates)-1]
		result.NextCursor = encodeCursor(pageCursor{
			CreatedAt: last.CreatedAt.UTC().Unix(),
			UserID:    last.UserID,
		})
	}

	return result, nil
}

func (s *Service) resolveAgeBand(viewer pgrepo.FeedViewerContext) (int, int) {
	ageMin := viewer.AgeMin
	ageMax := viewer.AgeMax
	if ageMin < s.cfg.DefaultAgeMin {
		ageMin = s.cfg.DefaultAgeMin
	}
	if ageMax <= 0 || ageMax > s.cfg.DefaultAgeMax {
		ageMax = s.cfg.DefaultAgeMax
	}
	if ageMax < ageMin {
		ageMax = ageMin
	}
	return ageMin, ageMax
}

func (s *Service) resolveRadius(viewer pgrepo.FeedViewerContext) int {
	radius := viewer.RadiusKM
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusKM
	}
	if radius > s.cfg.MaxRadiusKM {
		radius = s.cfg.MaxRadiusKM
	}
	return radius
}

func encodeCursor(c pageCursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(value string) (pageCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return pageCursor{}, err
	}

	var c pageCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return pageCursor{}, err
	}
	if c.UserID <= 0 {
		return pageCursor{}, fmt.Errorf("invalid cursor payload")
	}
	return c, nil
}
