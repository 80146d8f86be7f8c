package ai

import (
	"testing"

	legacy "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"roamly/internal/types"
)

func TestItinerarySchema_RequiredFields(t *testing.T) {
	s := ItinerarySchema(SchemaVocabulary{
		ActivityTypes: []string{"Food", "Sightseeing", "Nature", "Relaxation", "Culture", "Other"},
		MinCost:       1,
		MaxCost:       5,
	})
	require.Equal(t, legacy.TypeObject, s.Type)
	assert.ElementsMatch(t,
		[]string{"tripTitle", "destination", "duration", "summary", "days", "estimatedBudget"},
		s.Required)

	day := s.Properties["days"].Items
	require.NotNil(t, day)
	assert.ElementsMatch(t, []string{"dayNumber", "theme", "activities"}, day.Required)
	assert.Equal(t, legacy.TypeInteger, day.Properties["dayNumber"].Type)

	activity := day.Properties["activities"].Items
	require.NotNil(t, activity)
	assert.Equal(t,
		[]string{"Food", "Sightseeing", "Nature", "Relaxation", "Culture", "Other"},
		activity.Properties["type"].Enum)
	assert.Equal(t, legacy.TypeInteger, activity.Properties["costEstimate"].Type)
	assert.Contains(t, activity.Properties["costEstimate"].Description, "1 (Cheap) to 5 (Expensive)")
}

func TestChatConfig_WithoutCoordinates(t *testing.T) {
	cfg := chatConfig(ChatOptions{})
	require.Len(t, cfg.Tools, 1)
	assert.NotNil(t, cfg.Tools[0].GoogleMaps)
	assert.Nil(t, cfg.ToolConfig)
	require.NotNil(t, cfg.SystemInstruction)
	require.NotEmpty(t, cfg.SystemInstruction.Parts)
	assert.Equal(t, ChatSystemInstruction, cfg.SystemInstruction.Parts[0].Text)
}

func TestChatConfig_WithCoordinates(t *testing.T) {
	cfg := chatConfig(ChatOptions{LatLng: &types.Coordinates{Latitude: 48.8584, Longitude: 2.2945}})
	require.NotNil(t, cfg.ToolConfig)
	require.NotNil(t, cfg.ToolConfig.RetrievalConfig)
	ll := cfg.ToolConfig.RetrievalConfig.LatLng
	require.NotNil(t, ll)
	assert.Equal(t, 48.8584, *ll.Latitude)
	assert.Equal(t, 2.2945, *ll.Longitude)
}

func TestReplyFromResponse_MapsChunks(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "The Eiffel Tower "},
				nil,
				{Text: "is open until 23:45."},
			}},
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Maps: &genai.GroundingChunkMaps{URI: "https://maps/1", Title: "Eiffel Tower", PlaceID: "p1"}},
					nil,
					{Web: &genai.GroundingChunkWeb{URI: "https://example.com", Title: "Example"}},
				},
			},
		}},
	}

	reply := replyFromResponse(resp)
	assert.Equal(t, "The Eiffel Tower is open until 23:45.", reply.Text)
	require.Len(t, reply.GroundingChunks, 2)
	require.NotNil(t, reply.GroundingChunks[0].Maps)
	assert.Equal(t, "https://maps/1", reply.GroundingChunks[0].Maps.URI)
	assert.Equal(t, "Eiffel Tower", reply.GroundingChunks[0].Maps.Title)
	assert.Nil(t, reply.GroundingChunks[1].Maps)
	require.NotNil(t, reply.GroundingChunks[1].Web)
}

func TestReplyFromResponse_Empty(t *testing.T) {
	assert.Equal(t, &ChatReply{}, replyFromResponse(nil))
	assert.Equal(t, &ChatReply{}, replyFromResponse(&genai.GenerateContentResponse{}))
	assert.Equal(t, &ChatReply{}, replyFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}))
}
