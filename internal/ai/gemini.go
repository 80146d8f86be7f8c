package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// SchemaVocabulary carries the closed value sets advertised by the itinerary
// schema.
type SchemaVocabulary struct {
	ActivityTypes []string
	MinCost       int
	MaxCost       int
}

// GeminiProvider implements ItineraryProvider using Gemini structured output.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client for itinerary generation.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, vocab SchemaVocabulary) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(TripGenerationInstruction))

	// Force JSON constrained by the itinerary schema.
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = ItinerarySchema(vocab)

	model.SetTemperature(0.7)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// GenerateItinerary sends prompt as a single structured-output request and
// returns the raw JSON text.
func (p *GeminiProvider) GenerateItinerary(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	return responseText.String(), nil
}

// ItinerarySchema is the strict response schema for TripItinerary.
func ItinerarySchema(vocab SchemaVocabulary) *genai.Schema {
	activityTypes := vocab.ActivityTypes

	activity := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"time":        {Type: genai.TypeString, Description: "e.g., '09:00 AM'"},
			"activity":    {Type: genai.TypeString, Description: "Name of the activity"},
			"description": {Type: genai.TypeString, Description: "Short description"},
			"location":    {Type: genai.TypeString, Description: "Name of place/area"},
			"type": {
				Type:        genai.TypeString,
				Format:      "enum",
				Enum:        activityTypes,
				Description: "Must be: " + strings.Join(activityTypes, ", "),
			},
			"costEstimate": {
				Type:        genai.TypeInteger,
				Description: fmt.Sprintf("%d (Cheap) to %d (Expensive)", vocab.MinCost, vocab.MaxCost),
			},
		},
		Required: []string{"time", "activity", "description", "location", "type", "costEstimate"},
	}

	day := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"dayNumber":  {Type: genai.TypeInteger},
			"theme":      {Type: genai.TypeString, Description: "Main focus of the day"},
			"activities": {Type: genai.TypeArray, Items: activity},
		},
		Required: []string{"dayNumber", "theme", "activities"},
	}

	budget := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category":   {Type: genai.TypeString},
			"percentage": {Type: genai.TypeNumber, Description: "Percentage of total budget"},
		},
		Required: []string{"category", "percentage"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tripTitle":       {Type: genai.TypeString, Description: "A catchy title for the trip"},
			"destination":     {Type: genai.TypeString, Description: "The main city or country"},
			"duration":        {Type: genai.TypeString, Description: "e.g., '3 Days'"},
			"summary":         {Type: genai.TypeString, Description: "A brief exciting overview of the trip"},
			"days":            {Type: genai.TypeArray, Items: day},
			"estimatedBudget": {Type: genai.TypeArray, Items: budget},
		},
		Required: []string{"tripTitle", "destination", "duration", "summary", "days", "estimatedBudget"},
	}
}
