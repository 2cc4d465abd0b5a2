package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/metrics"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/model"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/utils"
)

const fallbackMessage = "I'll help you find properties. Could you tell me more about what you're looking for?"

var fallbackSuggestions = []string{
	"Show me 2BHK flats under 20k",
	"Fully furnished apartments near me",
	"PG accommodation with meals",
}

// FallbackFilters is the deterministic result used when a reply cannot be interpreted
func FallbackFilters() model.Filters {
	return model.Filters{
		ResponseMessage: fallbackMessage,
		Suggestions:     append([]string(nil), fallbackSuggestions...),
	}
}

var filterSchema = mustCompileSchema(model.FilterSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid filter schema: %v", err))
	}
	return compiled
}

// Extractor turns an utterance plus conversation history into structured filters
type Extractor struct {
	backend     ChatBackend
	instruction string
	logger      *zap.Logger
}

// NewExtractor creates a new filter extractor
func NewExtractor(backend ChatBackend, logger *zap.Logger) *Extractor {
	return &Extractor{
		backend:     backend,
		instruction: buildInstruction(),
		logger:      logger,
	}
}

// Extract sends the conversation to the backend and interprets the reply.
// Backend failures propagate as *UpstreamError; an uninterpretable reply yields FallbackFilters.
func (e *Extractor) Extract(ctx context.Context, utterance string, history model.ConversationHistory) (model.Filters, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return model.Filters{}, ErrEmptyUtterance
	}

	content, err := e.backend.Complete(ctx, e.buildMessages(utterance, history))
	if err != nil {
		return model.Filters{}, err
	}

	filters, err := e.parse(content)
	if err != nil {
		e.logger.Warn("extraction payload rejected, using fallback",
			zap.Error(err),
			zap.String("payload", truncate(content, 200)),
		)
		metrics.ExtractionFallbacks.Inc()
		return FallbackFilters(), nil
	}

	e.logger.Debug("filters extracted",
		zap.Any("filters", filters),
		zap.Int("history_turns", len(history)),
	)
	return filters, nil
}

func (e *Extractor) buildMessages(utterance string, history model.ConversationHistory) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: RoleSystem, Content: e.instruction})
	for _, turn := range history {
		role := RoleUser
		if turn.Role == model.RoleAssistant {
			role = RoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Content})
	}
	return append(messages, ChatMessage{Role: RoleUser, Content: utterance})
}

// extractionPayload mirrors the wire shape of a reply; budgets may arrive as decimals
type extractionPayload struct {
	PropertyType    *string  `json:"propertyType"`
	MinBudget       *float64 `json:"minBudget"`
	MaxBudget       *float64 `json:"maxBudget"`
	City            *string  `json:"city"`
	Locality        *string  `json:"locality"`
	Furnishing      *string  `json:"furnishing"`
	Bedrooms        *float64 `json:"bedrooms"`
	Amenities       []string `json:"amenities"`
	ResponseMessage *string  `json:"responseMessage"`
	Suggestions     []string `json:"suggestions"`
}

func (e *Extractor) parse(content string) (model.Filters, error) {
	payload, err := utils.ExtractJSON(content)
	if err != nil {
		return model.Filters{}, err
	}

	result, err := filterSchema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return model.Filters{}, fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return model.Filters{}, errors.New("payload does not match filter schema: " + strings.Join(violations, "; "))
	}

	var raw extractionPayload
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return model.Filters{}, fmt.Errorf("failed to decode payload: %w", err)
	}

	return e.toFilters(raw).Normalize(), nil
}

func (e *Extractor) toFilters(raw extractionPayload) model.Filters {
	filters := model.Filters{
		City:        raw.City,
		Locality:    raw.Locality,
		Amenities:   raw.Amenities,
		Suggestions: raw.Suggestions,
		MinBudget:   roundBudget(raw.MinBudget),
		MaxBudget:   roundBudget(raw.MaxBudget),
	}

	if raw.Bedrooms != nil {
		bedrooms := int(math.Round(*raw.Bedrooms))
		filters.Bedrooms = &bedrooms
	}
	if raw.ResponseMessage != nil {
		filters.ResponseMessage = strings.TrimSpace(*raw.ResponseMessage)
	}

	// An unrecognised enum value drops only that field.
	if raw.PropertyType != nil {
		if pt, ok := model.ParsePropertyType(*raw.PropertyType); ok {
			filters.PropertyType = &pt
		} else {
			e.logger.Warn("ignoring unknown property type", zap.String("value", *raw.PropertyType))
		}
	}
	if raw.Furnishing != nil {
		if f, ok := model.ParseFurnishing(*raw.Furnishing); ok {
			filters.Furnishing = &f
		} else {
			e.logger.Warn("ignoring unknown furnishing", zap.String("value", *raw.Furnishing))
		}
	}

	return filters
}

func roundBudget(v *float64) *int64 {
	if v == nil {
		return nil
	}
	rounded := int64(math.Round(*v))
	return &rounded
}

func buildInstruction() string {
	propertyTypes := make([]string, len(model.PropertyTypes))
	for i, pt := range model.PropertyTypes {
		propertyTypes[i] = fmt.Sprintf("%q", pt)
	}
	furnishings := make([]string, len(model.Furnishings))
	for i, f := range model.Furnishings {
		furnishings[i] = fmt.Sprintf("%q", f)
	}

	return fmt.Sprintf(`You are a rental property search assistant. Read the whole conversation and extract the user's current search filters.

Return ONLY a single JSON object. No prose, no markdown, no code fences.

Fields (use null or omit the field when unknown):
- propertyType: one of %s
- minBudget: minimum monthly rent as an integer ("15k" = 15000, "1.2 lakh" = 120000)
- maxBudget: maximum monthly rent as an integer
- city: city name
- locality: neighbourhood or area name
- furnishing: one of %s
- bedrooms: number of bedrooms as an integer
- amenities: array of requested amenities, e.g. ["parking", "gym"]
- responseMessage: one or two friendly sentences describing the search you are running
- suggestions: array of at most %d short follow-up prompts the user could send to refine the search

Rules:
- Earlier user messages still apply. Keep every filter from them unless the latest message changes or removes it.
- "under X", "below X" or "max X" sets maxBudget. "above X" or "at least X" sets minBudget.
- "near X" or "in X" for a neighbourhood sets locality.
- Never invent filters the user did not ask for.

Example:
User: "Show me 2BHK under 15k near Koramangala with parking"
Response: {"propertyType": "2bhk", "maxBudget": 15000, "locality": "Koramangala", "amenities": ["parking"], "responseMessage": "Here are 2BHK homes near Koramangala under 15,000 with parking.", "suggestions": ["Only fully furnished", "Increase budget to 20k", "Show 3BHK instead"]}`,
		strings.Join(propertyTypes, ", "),
		strings.Join(furnishings, ", "),
		model.MaxSuggestions,
	)
}

// truncate truncates a string to maxLen bytes
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
