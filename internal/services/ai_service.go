package services

import (
	"context"
	"time"

	"queens/internal/metrics"
	"queens/internal/models"
)

// AIService exposes raw LLM completions.
type AIService struct {
	llm     Completer
	metrics metrics.Recorder
}

// NewAIService creates a new AIService.
func NewAIService(llm Completer, rec metrics.Recorder) *AIService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AIService{llm: llm, metrics: rec}
}

// Complete sends prompt to the model as-is.
func (s *AIService) Complete(ctx context.Context, prompt string) (*models.CompletionResponse, error) {
	content, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.metrics.RecordCollaboratorFailure("llm")
		return nil, err
	}
	return &models.CompletionResponse{
		Response:  content,
		Timestamp: time.Now().UTC(),
		Model:     s.llm.Model(),
	}, nil
}
