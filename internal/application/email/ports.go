package email

import (
	"context"

	"mailreply/internal/domain/email"
)

// ZeroShotClassifier ranks text against a closed set of candidate labels.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string, multiLabel bool) ([]email.LabelScore, error)
}

type ReplyGenerator interface {
	GenerateReply(ctx context.Context, body string) (string, error)
}

type SuggestionRepository interface {
	Save(ctx context.Context, s *email.Suggestion) error
	GetByID(ctx context.Context, id string) (*email.Suggestion, error)
	Stats(ctx context.Context) (*email.Stats, error)
}
