package model

// SearchResult is the composed answer to one conversational turn
type SearchResult struct {
	Filters     Filters           `json:"filters"`
	Properties  []PropertySummary `json:"properties"`
	Message     string            `json:"message"`
	Suggestions []string          `json:"suggestions"`
}

// ChatRequest represents one utterance posted to a search session
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse represents the HTTP answer to a ChatRequest
type ChatResponse struct {
	SessionID string `json:"sessionId"`
	SearchResult
	Error *ChatError `json:"error,omitempty"`
	Took  int64      `json:"took_ms"`
}

// ChatError describes an upstream failure class the client should react to
type ChatError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ResetRequest clears the history of a search session
type ResetRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// ResetResponse acknowledges a ResetRequest
type ResetResponse struct {
	SessionID string `json:"sessionId"`
	Reset     bool   `json:"reset"`
}
