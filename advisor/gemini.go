package advisor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"supply-risk/risk"

	"google.golang.org/genai"
)

// GeminiClient turns a composite risk score into a short operational
// briefing. The advisor is optional: the analytical core never depends on it
// and the transport layer degrades gracefully when no API key is configured.
type GeminiClient struct {
	client *genai.Client
	ctx    context.Context
}

const briefingSystemPrompt = `You are a logistics risk advisor for a supply chain operations team.
You receive a computed risk assessment for a shipment (composite score, risk level,
per-dimension breakdown and rule-based recommendations) and write a short briefing for
the operations manager: what drives the risk, what to do first, what to watch.

Be concrete and concise. Do not invent numbers that are not in the assessment.
Keep responses under 200 words.`

func NewGeminiClient() (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &GeminiClient{client: client, ctx: ctx}, nil
}

// GenerateBriefing produces a narrative for one risk assessment.
func (g *GeminiClient) GenerateBriefing(score risk.RiskScore) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Composite risk score: %.2f (%s)\n", score.TotalRiskScore, score.RiskLevel)
	fmt.Fprintf(&sb, "Predicted delay: %.1f hours (%s model, confidence %.2f)\n",
		score.PredictedDelay.PredictedDelayHours, score.PredictedDelay.ModelType, score.PredictedDelay.ConfidenceScore)
	sb.WriteString("Risk breakdown:\n")
	for component, contribution := range score.RiskBreakdown {
		fmt.Fprintf(&sb, "- %s: %.1f\n", component, contribution)
	}
	sb.WriteString("Rule-based recommendations:\n")
	for _, recommendation := range score.Recommendations {
		fmt.Fprintf(&sb, "- %s\n", recommendation)
	}

	systemInstruction := genai.NewContentFromText(briefingSystemPrompt, genai.RoleModel)
	userContent := genai.NewContentFromText(sb.String(), genai.RoleUser)

	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       genai.Ptr(float32(0.7)),
		TopP:              genai.Ptr(float32(0.8)),
		TopK:              genai.Ptr(float32(40)),
		MaxOutputTokens:   int32(300),
	}

	resp, err := g.client.Models.GenerateContent(
		g.ctx,
		"gemini-2.5-flash",
		[]*genai.Content{userContent},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate briefing: %v", err)
	}

	text := resp.Text()
	if text == "" {
		return "No briefing could be generated for this assessment.", nil
	}
	return strings.ReplaceAll(text, "*", ""), nil
}

func (g *GeminiClient) Close() error {
	// The genai client manages its resources automatically.
	return nil
}
