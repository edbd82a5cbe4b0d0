package email

import (
	"context"

	"go.uber.org/zap"

	"mailreply/internal/domain/email"
)

// SuggestReplyUseCase runs the responder and records the outcome.
type SuggestReplyUseCase struct {
	responder *Responder
	repo      SuggestionRepository
	logger    *zap.Logger
}

// NewSuggestReplyUseCase builds the use case. repo may be nil, in which case
// suggestions are not recorded.
func NewSuggestReplyUseCase(responder *Responder, repo SuggestionRepository, logger *zap.Logger) *SuggestReplyUseCase {
	return &SuggestReplyUseCase{
		responder: responder,
		repo:      repo,
		logger:    logger,
	}
}

// Execute suggests a reply for text. A non-empty id replaces the generated
// suggestion id, so asynchronous callers can look results up by their own key.
func (uc *SuggestReplyUseCase) Execute(ctx context.Context, source email.Source, id, text string) (*email.Suggestion, error) {
	s, err := uc.responder.Suggest(ctx, text)
	if err != nil {
		return nil, err
	}

	s.Source = source
	if id != "" {
		s.ID = id
	}

	if uc.repo != nil {
		if err := uc.repo.Save(ctx, s); err != nil {
			uc.logger.Error("Failed to save suggestion",
				zap.Error(err),
				zap.String("suggestion_id", s.ID))
		}
	}

	uc.logger.Info("Suggestion ready",
		zap.String("suggestion_id", s.ID),
		zap.String("source", string(s.Source)),
		zap.String("category", s.Category.String()),
		zap.Bool("fallback", s.Fallback))

	return s, nil
}
