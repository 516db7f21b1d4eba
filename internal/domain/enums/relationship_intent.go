package enums

type RelationshipIntent string

const (
	IntentSerious    RelationshipIntent = "serious"
	IntentCasual     RelationshipIntent = "casual"
	IntentFriendship RelationshipIntent = "friendship"
	IntentMarriage   RelationshipIntent = "marriage"
)
