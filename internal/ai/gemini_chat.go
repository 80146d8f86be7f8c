package ai

import (
	"context"
	"fmt"
	"strings"

	// The chat side uses the unified SDK: only it exposes the Google Maps tool,
	// retrieval lat/lng bias and grounding metadata.
	"google.golang.org/genai"

	"roamly/internal/types"
)

// GeminiChatProvider implements ChatProvider with Google Maps grounding.
type GeminiChatProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiChatProvider creates a chat provider for the Gemini Developer API.
func NewGeminiChatProvider(ctx context.Context, apiKey, modelName string) (*GeminiChatProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini chat client: %w", err)
	}
	return &GeminiChatProvider{client: client, model: modelName}, nil
}

// StartChat creates a new provider-side chat with an empty history.
func (p *GeminiChatProvider) StartChat(ctx context.Context, opts ChatOptions) (ChatSession, error) {
	chat, err := p.client.Chats.Create(ctx, p.model, chatConfig(opts), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: create chat: %w", err)
	}
	return &geminiChat{chat: chat}, nil
}

type geminiChat struct {
	chat *genai.Chat
}

func (c *geminiChat) SendMessage(ctx context.Context, message string) (*ChatReply, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return nil, fmt.Errorf("gemini: send message: %w", err)
	}
	return replyFromResponse(resp), nil
}

// chatConfig builds the persona, the Maps tool and, when coordinates are
// given, the retrieval bias.
func chatConfig(opts ChatOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(ChatSystemInstruction, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
	}
	if opts.LatLng != nil {
		cfg.ToolConfig = retrievalBias(*opts.LatLng)
	}
	return cfg
}

func retrievalBias(c types.Coordinates) *genai.ToolConfig {
	return &genai.ToolConfig{
		RetrievalConfig: &genai.RetrievalConfig{
			LatLng: &genai.LatLng{
				Latitude:  genai.Ptr(c.Latitude),
				Longitude: genai.Ptr(c.Longitude),
			},
		},
	}
}

// replyFromResponse narrows the first candidate into a ChatReply. Nil entries
// anywhere in the response are skipped.
func replyFromResponse(resp *genai.GenerateContentResponse) *ChatReply {
	reply := &ChatReply{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return reply
	}
	cand := resp.Candidates[0]

	if cand.Content != nil {
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text.WriteString(part.Text)
		}
		reply.Text = strings.TrimSpace(text.String())
	}

	if cand.GroundingMetadata == nil {
		return reply
	}
	for _, chunk := range cand.GroundingMetadata.GroundingChunks {
		if chunk == nil {
			continue
		}
		var gc GroundingChunk
		if chunk.Maps != nil {
			gc.Maps = &MapsSource{URI: chunk.Maps.URI, Title: chunk.Maps.Title, PlaceID: chunk.Maps.PlaceID}
		}
		if chunk.Web != nil {
			gc.Web = &WebSource{URI: chunk.Web.URI, Title: chunk.Web.Title}
		}
		reply.GroundingChunks = append(reply.GroundingChunks, gc)
	}
	return reply
}
