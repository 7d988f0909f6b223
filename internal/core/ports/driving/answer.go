package driving

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// AnswerService answers questions with retrieved context.
type AnswerService interface {
	// Ask retrieves relevant chunks and generates an answer.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)
}
