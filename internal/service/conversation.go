package service

import (
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/model"
)

// ConversationManager maintains the ordered turn history of a search session
type ConversationManager struct {
	maxTurns int // 0 keeps every turn
}

// NewConversationManager creates a manager that keeps at most maxTurns turns
func NewConversationManager(maxTurns int) *ConversationManager {
	if maxTurns < 0 {
		maxTurns = 0
	}
	return &ConversationManager{maxTurns: maxTurns}
}

// Append returns a new history with turns added at the end; the input is never modified.
// When a bound is set the oldest turns are dropped first.
func (m *ConversationManager) Append(history model.ConversationHistory, turns ...model.ConversationTurn) model.ConversationHistory {
	total := len(history) + len(turns)
	skip := 0
	if m.maxTurns > 0 && total > m.maxTurns {
		skip = total - m.maxTurns
	}

	out := make(model.ConversationHistory, 0, total-skip)
	for i, turn := range history {
		if i >= skip {
			out = append(out, turn)
		}
	}
	for i, turn := range turns {
		if len(history)+i >= skip {
			out = append(out, turn)
		}
	}
	return out
}

// Reset returns an empty history
func (m *ConversationManager) Reset() model.ConversationHistory {
	return model.ConversationHistory{}
}
