package model

// Role identifies who produced a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a single message in a search conversation
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationHistory is the ordered list of turns sent as context with each extraction
type ConversationHistory []ConversationTurn

// UserTurn builds a turn spoken by the user
func UserTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Content: content}
}

// AssistantTurn builds a turn spoken by the assistant
func AssistantTurn(content string) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant, Content: content}
}
