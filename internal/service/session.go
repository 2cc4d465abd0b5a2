package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/metrics"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/model"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/repository"
)

const (
	defaultResultMessage = "Here are some properties for you"
	storeFailureMessage  = "Sorry, I couldn't load properties right now. Please try again in a moment."

	defaultExtractTimeout = 8 * time.Second
	defaultQueryTimeout   = 5 * time.Second
)

// FilterExtractor turns an utterance plus history into filters
type FilterExtractor interface {
	Extract(ctx context.Context, utterance string, history model.ConversationHistory) (model.Filters, error)
}

// PropertyFinder executes a property query against the store
type PropertyFinder interface {
	FindProperties(ctx context.Context, q repository.PropertyQuery) ([]model.PropertySummary, error)
}

// SessionState is the phase a session is in
type SessionState int32

const (
	StateIdle SessionState = iota
	StateExtracting
	StateQuerying
	StateComposed
)

func (s SessionState) String() string {
	switch s {
	case StateExtracting:
		return "extracting"
	case StateQuerying:
		return "querying"
	case StateComposed:
		return "composed"
	default:
		return "idle"
	}
}

// SessionOptions bounds the work a single turn may do
type SessionOptions struct {
	ResultLimit    int
	ExtractTimeout time.Duration
	QueryTimeout   time.Duration
}

// Session runs one conversation: each utterance is extracted against the history,
// resolved against the store, and appended as a user/assistant turn pair.
// Calls are served one at a time by the session's worker goroutine in arrival order.
type Session struct {
	id           string
	extractor    FilterExtractor
	finder       PropertyFinder
	conversation *ConversationManager
	opts         SessionOptions
	logger       *zap.Logger

	history model.ConversationHistory // owned by the worker goroutine

	state      atomic.Int32
	lastActive atomic.Int64

	jobs      chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession creates a session and starts its worker
func NewSession(
	id string,
	extractor FilterExtractor,
	finder PropertyFinder,
	conversation *ConversationManager,
	opts SessionOptions,
	logger *zap.Logger,
) *Session {
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = defaultExtractTimeout
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}

	s := &Session{
		id:           id,
		extractor:    extractor,
		finder:       finder,
		conversation: conversation,
		opts:         opts,
		logger:       logger.With(zap.String("session_id", id)),
		history:      conversation.Reset(),
		jobs:         make(chan func()),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	s.touch()

	go s.run()
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// State returns the current phase
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// LastActive returns when the session last accepted a call
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			return
		case job := <-s.jobs:
			job()
		}
	}
}

// submit hands job to the worker and waits for it to finish
func (s *Session) submit(ctx context.Context, job func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		job()
	}

	select {
	case s.jobs <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrSessionClosed
	}

	// jobs bound their outbound calls to ctx, so this returns promptly on cancellation
	<-finished
	return nil
}

// Search resolves one utterance into a SearchResult.
//
// On an upstream failure the degraded result is returned together with the error.
// On cancellation only the context error is returned and history is left untouched.
func (s *Session) Search(ctx context.Context, utterance string) (*model.SearchResult, error) {
	var (
		result *model.SearchResult
		err    error
	)
	if submitErr := s.submit(ctx, func() {
		result, err = s.search(ctx, utterance)
	}); submitErr != nil {
		if errors.Is(submitErr, context.Canceled) || errors.Is(submitErr, context.DeadlineExceeded) {
			metrics.SearchRequests.WithLabelValues(metrics.OutcomeCancelled).Inc()
		}
		return nil, submitErr
	}
	return result, err
}

// Reset clears the conversation history and returns the session to idle
func (s *Session) Reset(ctx context.Context) error {
	return s.submit(ctx, func() {
		s.touch()
		s.history = s.conversation.Reset()
		s.setState(StateIdle)
		s.logger.Debug("session reset")
	})
}

// History returns a copy of the conversation so far
func (s *Session) History(ctx context.Context) (model.ConversationHistory, error) {
	var history model.ConversationHistory
	err := s.submit(ctx, func() {
		history = s.conversation.Append(s.history)
	})
	return history, err
}

// Close stops the worker after any in-flight call completes
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	<-s.done
}

func (s *Session) search(ctx context.Context, utterance string) (*model.SearchResult, error) {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
		s.setState(StateIdle)
	}()
	s.touch()

	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		metrics.SearchRequests.WithLabelValues(metrics.OutcomeInvalidTurn).Inc()
		return nil, ErrEmptyUtterance
	}
	if err := ctx.Err(); err != nil {
		return nil, s.cancelled(err)
	}

	s.setState(StateExtracting)
	extractCtx, cancel := context.WithTimeout(ctx, s.opts.ExtractTimeout)
	filters, err := s.extractor.Extract(extractCtx, utterance, s.history)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil, s.cancelled(ctx.Err())
		}
		if errors.Is(err, ErrEmptyUtterance) {
			metrics.SearchRequests.WithLabelValues(metrics.OutcomeInvalidTurn).Inc()
			return nil, err
		}
		return s.upstreamFailure(err)
	}

	s.setState(StateQuerying)
	query := repository.BuildPropertyQuery(filters, s.opts.ResultLimit)
	queryCtx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	properties, err := s.finder.FindProperties(queryCtx, query)
	cancel()

	storeFailed := false
	if err != nil {
		if ctx.Err() != nil {
			return nil, s.cancelled(ctx.Err())
		}
		s.logger.Error("property query failed", zap.Error(err))
		metrics.StoreFailures.Inc()
		storeFailed = true
		properties = nil
	}

	s.setState(StateComposed)
	result := compose(filters, properties, storeFailed)

	// a reply that is never delivered must not enter the history
	if err := ctx.Err(); err != nil {
		return nil, s.cancelled(err)
	}
	s.history = s.conversation.Append(s.history,
		model.UserTurn(utterance),
		model.AssistantTurn(result.Message),
	)

	outcome := metrics.OutcomeSuccess
	if storeFailed {
		outcome = metrics.OutcomeDegraded
	}
	metrics.SearchRequests.WithLabelValues(outcome).Inc()

	s.logger.Info("search completed",
		zap.Int("properties", len(result.Properties)),
		zap.Bool("unfiltered", filters.IsEmpty()),
		zap.Bool("store_failed", storeFailed),
		zap.Int("history_turns", len(s.history)),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

func (s *Session) upstreamFailure(err error) (*model.SearchResult, error) {
	kind := FailureKindOf(err)
	if kind == FailureNone {
		// an extractor timeout or an unclassified fault is still a provider failure
		kind = FailureUnavailable
		err = &UpstreamError{Kind: kind, Err: err}
	}

	s.logger.Warn("extraction failed", zap.String("kind", kind.String()), zap.Error(err))
	metrics.UpstreamFailures.WithLabelValues(kind.String()).Inc()
	metrics.SearchRequests.WithLabelValues(metrics.OutcomeUpstream).Inc()

	return degradedResult(kind), err
}

func (s *Session) cancelled(err error) error {
	s.logger.Debug("search cancelled", zap.Error(err))
	metrics.SearchRequests.WithLabelValues(metrics.OutcomeCancelled).Inc()
	return err
}

func (s *Session) setState(state SessionState) {
	s.state.Store(int32(state))
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func compose(filters model.Filters, properties []model.PropertySummary, storeFailed bool) *model.SearchResult {
	message := filters.ResponseMessage
	if message == "" {
		message = defaultResultMessage
	}
	if storeFailed {
		message = storeFailureMessage
	}

	suggestions := filters.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	if properties == nil {
		properties = []model.PropertySummary{}
	}

	return &model.SearchResult{
		Filters:     filters,
		Properties:  properties,
		Message:     message,
		Suggestions: suggestions,
	}
}

func degradedResult(kind FailureKind) *model.SearchResult {
	suggestions := []string{}
	if kind != FailureQuotaExhausted {
		suggestions = append(suggestions, fallbackSuggestions...)
	}
	return &model.SearchResult{
		Filters:     model.Filters{},
		Properties:  []model.PropertySummary{},
		Message:     kind.UserMessage(),
		Suggestions: suggestions,
	}
}
