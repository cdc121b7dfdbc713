// Package agent hosts the AI storefront identifier built on the ADK agent
// runtime and the Gemini multimodal model.
package agent

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
	"google.golang.org/genai"

	"frontsnap_backend/internal/places"
	"frontsnap_backend/platform/ai/gemini"
	"frontsnap_backend/platform/geo"
)

// identifierDeps holds the per-run result slot the tool callback writes into.
type identifierDeps struct {
	mu     sync.RWMutex
	result *places.BusinessGuess
}

func (d *identifierDeps) setResult(g *places.BusinessGuess) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.result = g
}

func (d *identifierDeps) getResult() *places.BusinessGuess {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.result
}

func (d *identifierDeps) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.result = nil
}

// StorefrontIdentifier asks a multimodal model what business a storefront
// photo shows. It satisfies the resolver's VisionAnalyzer port.
type StorefrontIdentifier struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
	appName        string
	deps           *identifierDeps
	runMu          sync.Mutex
}

// NewStorefrontIdentifier creates the identifier agent backed by Gemini.
func NewStorefrontIdentifier(ctx context.Context, apiKey, model string) (*StorefrontIdentifier, error) {
	llm, err := gemini.NewModel(ctx, gemini.Config{
		APIKey: apiKey,
		Model:  model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini model: %w", err)
	}

	deps := &identifierDeps{}

	identifier := &StorefrontIdentifier{
		appName: "storefront_identifier",
		deps:    deps,
	}

	tools, err := buildIdentifierTools(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build identifier tools: %w", err)
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "StorefrontIdentifier",
		Model:       llm,
		Description: "Identifies the business shown in a storefront photo",
		Instruction: getIdentifierPrompt(),
		Tools:       tools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create identifier agent: %w", err)
	}

	sessionService := session.InMemoryService()

	r, err := runner.New(runner.Config{
		AppName:        identifier.appName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create identifier runner: %w", err)
	}

	identifier.agent = adkAgent
	identifier.runner = r
	identifier.sessionService = sessionService

	return identifier, nil
}

var _ places.VisionAnalyzer = (*StorefrontIdentifier)(nil)

// Analyze runs the identification agent over one photo and returns its
// business guess.
func (si *StorefrontIdentifier) Analyze(ctx context.Context, image []byte, contentType string, locationHint *geo.Point) (*places.BusinessGuess, error) {
	si.runMu.Lock()
	defer si.runMu.Unlock()

	if len(image) == 0 {
		return nil, fmt.Errorf("no image provided")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	si.deps.reset()

	userContent := buildUserContent(image, contentType, locationHint)
	userID, sessionID, err := si.createSession(ctx)
	if err != nil {
		return nil, err
	}
	defer si.cleanupSession(ctx, userID, sessionID)

	if _, err := si.run(ctx, userID, sessionID, userContent); err != nil {
		return nil, err
	}

	result := si.deps.getResult()
	if result == nil {
		// The model answered in prose without calling the tool; nudge once.
		if _, err := si.run(ctx, userID, sessionID, retryContent()); err != nil {
			return nil, err
		}
		result = si.deps.getResult()
	}
	if result == nil {
		return nil, fmt.Errorf("model did not save a business identification")
	}

	return result, nil
}

func buildUserContent(image []byte, contentType string, locationHint *geo.Point) *genai.Content {
	parts := []*genai.Part{
		{
			InlineData: &genai.Blob{
				MIMEType: contentType,
				Data:     image,
			},
		},
	}

	prompt := "Identify the business shown in this storefront photo."
	if locationHint != nil {
		prompt += fmt.Sprintf(" The photo was taken near latitude %.6f, longitude %.6f.", locationHint.Lat, locationHint.Lng)
	}
	prompt += " Then call SaveBusinessIdentification with your findings."
	parts = append(parts, genai.NewPartFromText(prompt))

	return &genai.Content{
		Role:  "user",
		Parts: parts,
	}
}

func retryContent() *genai.Content {
	return &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText("You MUST call the SaveBusinessIdentification tool now with your identification."),
		},
	}
}

func (si *StorefrontIdentifier) createSession(ctx context.Context) (string, string, error) {
	userID := "storefront-identifier"
	sessionID := uuid.New().String()

	_, err := si.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   si.appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to create session: %w", err)
	}

	return userID, sessionID, nil
}

func (si *StorefrontIdentifier) cleanupSession(ctx context.Context, userID, sessionID string) {
	if deleteErr := si.sessionService.Delete(ctx, &session.DeleteRequest{
		AppName:   si.appName,
		UserID:    userID,
		SessionID: sessionID,
	}); deleteErr != nil {
		log.Printf("warning: failed to delete session: %v", deleteErr)
	}
}

func (si *StorefrontIdentifier) run(ctx context.Context, userID, sessionID string, content *genai.Content) (string, error) {
	var output string
	runConfig := agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	}

	for event, err := range si.runner.Run(ctx, userID, sessionID, content, runConfig) {
		if err != nil {
			return "", fmt.Errorf("storefront identification failed: %w", err)
		}
		output += collectContentText(event.Content)
	}

	return output, nil
}

func collectContentText(content *genai.Content) string {
	if content == nil {
		return ""
	}

	var output string
	for _, part := range content.Parts {
		output += part.Text
	}

	return output
}

// SaveBusinessIdentificationInput is the tool payload the model fills in.
type SaveBusinessIdentificationInput struct {
	BusinessName string   `json:"businessName" description:"The business name read from signage. Use 'Unknown Business' if no name is legible."`
	BusinessType string   `json:"businessType" description:"A single search-friendly business category, e.g. 'cafe', 'pharmacy', 'book store'"`
	LocationText string   `json:"locationText,omitempty" description:"Any address or neighborhood text visible in the photo"`
	Latitude     *float64 `json:"latitude,omitempty" description:"Latitude if the signage or context reveals exact coordinates, otherwise omit"`
	Longitude    *float64 `json:"longitude,omitempty" description:"Longitude if the signage or context reveals exact coordinates, otherwise omit"`
}

// SaveBusinessIdentificationOutput acknowledges the saved identification.
type SaveBusinessIdentificationOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func buildIdentifierTools(deps *identifierDeps) ([]tool.Tool, error) {
	save, err := functiontool.New(functiontool.Config{
		Name:        "SaveBusinessIdentification",
		Description: "Save the identification of the business in the photo. Call this exactly once, after examining the image.",
	}, func(ctx tool.Context, args SaveBusinessIdentificationInput) (SaveBusinessIdentificationOutput, error) {
		if args.BusinessType == "" {
			return SaveBusinessIdentificationOutput{Success: false, Message: "businessType is required"}, nil
		}

		guess := &places.BusinessGuess{
			BusinessName: args.BusinessName,
			BusinessType: args.BusinessType,
			LocationText: args.LocationText,
		}
		if args.Latitude != nil && args.Longitude != nil {
			point := geo.Point{Lat: *args.Latitude, Lng: *args.Longitude}
			if point.Valid() {
				guess.Coordinates = &point
			}
		}

		deps.setResult(guess)

		return SaveBusinessIdentificationOutput{
			Success: true,
			Message: "Business identification saved",
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return []tool.Tool{save}, nil
}

func getIdentifierPrompt() string {
	return `You are a storefront identification specialist for a place-discovery app.

Goal:
- Given one photo of a business storefront, determine what business it shows.

Rules:
- Read signage, awnings, window lettering and posted menus or price lists.
- businessName is the name as written on the signage. If no name is legible, use "Unknown Business" — never invent a name.
- businessType is a single lowercase category a maps search would accept (cafe, restaurant, bakery, pharmacy, barber shop, book store, ...). It is required even when the name is unknown.
- Include address or neighborhood text only if it is actually visible in the photo.
- Do not guess coordinates; only provide them when the photo itself reveals them.

Required action:
- After examining the photo you MUST call SaveBusinessIdentification with your findings.`
}
