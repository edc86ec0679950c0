// Package chat answers follow-up questions about cached analyses.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"video-summarizer/internal/models"
	"video-summarizer/shared/storage"
)

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("question is empty")

// Responder produces an answer about one analysis. Implementations may call
// out to a language model; history is the conversation so far, oldest first.
type Responder interface {
	Respond(ctx context.Context, analysis *models.NormalizedAnalysis, question string, history []models.ChatTurn) (string, error)
}

// Answerer resolves the context ID and delegates to a Responder.
type Answerer struct {
	store     *storage.ResultStore
	responder Responder
}

// NewAnswerer uses TemplateResponder when responder is nil.
func NewAnswerer(store *storage.ResultStore, responder Responder) *Answerer {
	if responder == nil {
		responder = TemplateResponder{}
	}
	return &Answerer{store: store, responder: responder}
}

// Answer fails with *storage.ContextNotFoundError when contextID is unknown.
func (a *Answerer) Answer(ctx context.Context, contextID, question string, history []models.ChatTurn) (string, error) {
	analysis, err := a.store.Lookup(contextID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	answer, err := a.responder.Respond(ctx, analysis, question, history)
	if err != nil {
		return "", fmt.Errorf("failed to process question: %w", err)
	}
	return answer, nil
}
