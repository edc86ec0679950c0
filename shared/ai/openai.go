package ai

import (
	"context"
	"fmt"
	"strings"

	"video-summarizer/internal/models"
	"video-summarizer/shared/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAIResponder answers follow-up questions through the Responses API.
type OpenAIResponder struct {
	client *openai.Client
	model  string
}

func NewOpenAIResponder(cfg config.AIConfig, opts ...option.RequestOption) *OpenAIResponder {
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIResponder{
		client: &client,
		model:  cfg.OpenAIModel,
	}
}

func (o *OpenAIResponder) Respond(ctx context.Context, analysis *models.NormalizedAnalysis, question string, history []models.ChatTurn) (string, error) {
	params := responses.ResponseNewParams{
		Model:        o.model,
		Instructions: openai.String(answerInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: openAIInput(analysis, question, history),
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	answer := strings.TrimSpace(resp.OutputText())
	if answer == "" {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return answer, nil
}

func openAIInput(analysis *models.NormalizedAnalysis, question string, history []models.ChatTurn) []responses.ResponseInputItemUnionParam {
	input := []responses.ResponseInputItemUnionParam{
		responses.ResponseInputItemParamOfMessage(buildAnalysisContext(analysis), responses.EasyInputMessageRoleUser),
	}
	for _, turn := range conversationTurns(history) {
		role := responses.EasyInputMessageRoleUser
		if turn.Role == models.ChatRoleAssistant {
			role = responses.EasyInputMessageRoleAssistant
		}
		input = append(input, responses.ResponseInputItemParamOfMessage(turn.Content, role))
	}
	return append(input, responses.ResponseInputItemParamOfMessage(question, responses.EasyInputMessageRoleUser))
}
