package service

import (
	"context"
	"sync"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/model"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/repository"
)

// fakeBackend replays canned replies and records every request
type fakeBackend struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests [][]ChatMessage
	block    bool // wait for ctx cancellation before answering
}

func (f *fakeBackend) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, append([]ChatMessage(nil), messages...))
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "{}", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeBackend) IsEnabled() bool { return true }

func (f *fakeBackend) lastRequest() []ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

// fakeFinder returns a fixed result and records the queries it receives
type fakeFinder struct {
	mu         sync.Mutex
	properties []model.PropertySummary
	err        error
	queries    []repository.PropertyQuery
	onFind     func(ctx context.Context)
}

func (f *fakeFinder) FindProperties(ctx context.Context, q repository.PropertyQuery) ([]model.PropertySummary, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	onFind := f.onFind
	f.mu.Unlock()

	if onFind != nil {
		onFind(ctx)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.properties, nil
}

func (f *fakeFinder) lastQuery() repository.PropertyQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }
