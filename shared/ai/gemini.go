package ai

import (
	"context"
	"fmt"
	"strings"

	"video-summarizer/internal/models"
	"video-summarizer/shared/config"

	"google.golang.org/genai"
)

// GeminiResponder answers follow-up questions with a Gemini model, sending
// the cached analysis, the conversation so far and the new question.
type GeminiResponder struct {
	client *genai.Client
	model  string
}

func NewGeminiResponder(ctx context.Context, cfg config.AIConfig) (*GeminiResponder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiResponder{
		client: client,
		model:  cfg.Model,
	}, nil
}

func (g *GeminiResponder) Respond(ctx context.Context, analysis *models.NormalizedAnalysis, question string, history []models.ChatTurn) (string, error) {
	contents := geminiContents(analysis, question, history)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(answerInstructions, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	answer := strings.TrimSpace(result.Text())
	if answer == "" {
		return "", fmt.Errorf("empty response from Gemini; the answer may have been filtered")
	}
	return answer, nil
}

// geminiContents lays out the analysis as the first user message, then the
// prior conversation, then the question.
func geminiContents(analysis *models.NormalizedAnalysis, question string, history []models.ChatTurn) []*genai.Content {
	contents := []*genai.Content{
		genai.NewContentFromText(buildAnalysisContext(analysis), genai.RoleUser),
	}
	for _, turn := range conversationTurns(history) {
		var role genai.Role = genai.RoleUser
		if turn.Role == models.ChatRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	return append(contents, genai.NewContentFromText(question, genai.RoleUser))
}
