package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/model"
)

func TestExtractor_Extract(t *testing.T) {
	backend := &fakeBackend{replies: []string{
		`{"propertyType": "2BHK", "maxBudget": 15000, "locality": "Koramangala", "amenities": ["parking"],
		  "responseMessage": "Here are 2BHK homes near Koramangala.", "suggestions": ["Only furnished", "Under 12k"]}`,
	}}
	extractor := NewExtractor(backend, zaptest.NewLogger(t))

	filters, err := extractor.Extract(context.Background(), "2BHK under 15k near Koramangala with parking", nil)
	require.NoError(t, err)

	require.NotNil(t, filters.PropertyType)
	assert.Equal(t, model.PropertyType2BHK, *filters.PropertyType)
	assert.Equal(t, int64(15000), *filters.MaxBudget)
	assert.Nil(t, filters.MinBudget)
	assert.Equal(t, "Koramangala", *filters.Locality)
	assert.Equal(t, []string{"parking"}, filters.Amenities)
	assert.Equal(t, "Here are 2BHK homes near Koramangala.", filters.ResponseMessage)
	assert.Equal(t, []string{"Only furnished", "Under 12k"}, filters.Suggestions)
}

func TestExtractor_MessageOrder(t *testing.T) {
	backend := &fakeBackend{}
	extractor := NewExtractor(backend, zaptest.NewLogger(t))

	history := model.ConversationHistory{
		model.UserTurn("2BHK in Koramangala"),
		model.AssistantTurn("Here are some 2BHK homes"),
	}
	_, err := extractor.Extract(context.Background(), "  under 20k  ", history)
	require.NoError(t, err)

	messages := backend.lastRequest()
	require.Len(t, messages, 4)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "JSON")
	assert.Contains(t, messages[0].Content, `"2bhk"`)
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "2BHK in Koramangala"}, messages[1])
	assert.Equal(t, ChatMessage{Role: RoleAssistant, Content: "Here are some 2BHK homes"}, messages[2])
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "under 20k"}, messages[3])
}

func TestExtractor_Fallback(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "prose", reply: "Sure, let me look for 2BHK flats for you!"},
		{name: "empty", reply: ""},
		{name: "array", reply: `["2bhk"]`},
		{name: "budget as text", reply: `{"maxBudget": "15k"}`},
		{name: "negative bedrooms", reply: `{"bedrooms": -1}`},
		{name: "amenities not a list", reply: `{"amenities": "parking"}`},
		{name: "truncated object", reply: `{"propertyType": "2bhk", "maxBudget": 15`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewExtractor(&fakeBackend{replies: []string{tt.reply}}, zaptest.NewLogger(t))

			filters, err := extractor.Extract(context.Background(), "show me flats", nil)
			require.NoError(t, err)
			assert.Equal(t, FallbackFilters(), filters)
		})
	}
}

func TestExtractor_FallbackIsIdempotent(t *testing.T) {
	extractor := NewExtractor(&fakeBackend{replies: []string{"not json"}}, zaptest.NewLogger(t))

	first, err := extractor.Extract(context.Background(), "anything", nil)
	require.NoError(t, err)
	second, err := extractor.Extract(context.Background(), "anything else", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, fallbackMessage, first.ResponseMessage)
	assert.Len(t, first.Suggestions, 3)
	assert.True(t, first.IsEmpty())

	// callers cannot corrupt the shared fallback suggestions
	first.Suggestions[0] = "changed"
	assert.NotEqual(t, "changed", FallbackFilters().Suggestions[0])
}

func TestExtractor_UnknownEnumDropsOnlyThatField(t *testing.T) {
	backend := &fakeBackend{replies: []string{
		`{"propertyType": "castle", "furnishing": "half", "city": "Pune", "bedrooms": 2}`,
	}}
	extractor := NewExtractor(backend, zaptest.NewLogger(t))

	filters, err := extractor.Extract(context.Background(), "castle in Pune", nil)
	require.NoError(t, err)

	assert.Nil(t, filters.PropertyType)
	assert.Nil(t, filters.Furnishing)
	assert.Equal(t, "Pune", *filters.City)
	assert.Equal(t, 2, *filters.Bedrooms)
}

func TestExtractor_NormalizesPayload(t *testing.T) {
	backend := &fakeBackend{replies: []string{
		"```json\n" + `{"minBudget": 25000.4, "maxBudget": 10000, "furnishing": "Semi-Furnished", "locality": "  ",
		"bedrooms": 2.0, "amenities": ["Gym", "gym", " "], "suggestions": ["a", "b", "c", "d"], "city": null}` + "\n```",
	}}
	extractor := NewExtractor(backend, zaptest.NewLogger(t))

	filters, err := extractor.Extract(context.Background(), "semi furnished between 10k and 25k", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(10000), *filters.MinBudget)
	assert.Equal(t, int64(25000), *filters.MaxBudget)
	assert.Equal(t, model.FurnishingSemi, *filters.Furnishing)
	assert.Nil(t, filters.Locality)
	assert.Nil(t, filters.City)
	assert.Equal(t, 2, *filters.Bedrooms)
	assert.Equal(t, []string{"Gym"}, filters.Amenities)
	assert.Len(t, filters.Suggestions, model.MaxSuggestions)
}

func TestExtractor_FractionalBedroomsKeepOtherFields(t *testing.T) {
	backend := &fakeBackend{replies: []string{
		`{"propertyType": "2bhk", "maxBudget": 15000, "bedrooms": 2.5, "locality": "Koramangala"}`,
	}}
	extractor := NewExtractor(backend, zaptest.NewLogger(t))

	filters, err := extractor.Extract(context.Background(), "2bhk under 15k in Koramangala", nil)
	require.NoError(t, err)

	require.NotNil(t, filters.Bedrooms)
	assert.Equal(t, 3, *filters.Bedrooms)
	assert.Equal(t, model.PropertyType2BHK, *filters.PropertyType)
	assert.Equal(t, int64(15000), *filters.MaxBudget)
	assert.Equal(t, "Koramangala", *filters.Locality)
	assert.NotEqual(t, fallbackMessage, filters.ResponseMessage)
}

func TestExtractor_EmptyUtterance(t *testing.T) {
	backend := &fakeBackend{}
	extractor := NewExtractor(backend, zaptest.NewLogger(t))

	_, err := extractor.Extract(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyUtterance)
	assert.Nil(t, backend.lastRequest())
}

func TestExtractor_PropagatesUpstreamFailure(t *testing.T) {
	backend := &fakeBackend{err: &UpstreamError{Kind: FailureRateLimited}}
	extractor := NewExtractor(backend, zaptest.NewLogger(t))

	filters, err := extractor.Extract(context.Background(), "2bhk", nil)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, FailureRateLimited, FailureKindOf(err))
	assert.Equal(t, model.Filters{}, filters)
}
