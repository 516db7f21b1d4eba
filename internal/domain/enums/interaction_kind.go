package enums

type InteractionKind string

const (
	InteractionLike      InteractionKind = "like"
	InteractionSuperLike InteractionKind = "super_like"
	InteractionReject    InteractionKind = "reject"
)
