package enums

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)
