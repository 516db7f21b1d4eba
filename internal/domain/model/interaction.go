package model

import (
	"time"

	"github.com/Imamariya/mccuppidv1.01/internal/domain/enums"
)

// Interaction is the single active decision an actor holds on a target.
// A later action supersedes the earlier one for the same (actor, target)
// pair; the pair is unique at the storage level.
type Interaction struct {
	ID           int64                 `json:"id"`
	ActorUserID  int64                 `json:"actor_user_id"`
	TargetUserID int64                 `json:"target_user_id"`
	Kind         enums.InteractionKind `json:"kind"`
	CreatedAt    time.Time             `json:"created_at"`
}
