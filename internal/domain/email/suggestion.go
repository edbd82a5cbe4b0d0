package email

import (
	"time"

	"github.com/google/uuid"
)

type Source string

const (
	SourceText   Source = "text"
	SourceFile   Source = "file"
	SourcePubSub Source = "pubsub"
	SourceCLI    Source = "cli"
)

// Draft is the sentence placed inside a reply template. Fallback is set when
// generation failed and Text holds the canned sentence instead; Cause keeps
// the recovered error.
type Draft struct {
	Text     string
	Fallback bool
	Cause    error
}

// Suggestion is the outcome of one classify-and-reply run. The email text
// itself is never kept.
type Suggestion struct {
	ID        string
	Source    Source
	Category  Category
	Reply     string
	Fallback  bool
	CreatedAt time.Time

	// FallbackCause is the generation error behind a fallback reply. It is
	// not persisted.
	FallbackCause error
}

func NewSuggestion(category Category, reply string, draft Draft) *Suggestion {
	return &Suggestion{
		ID:            uuid.NewString(),
		Category:      category,
		Reply:         reply,
		Fallback:      draft.Fallback,
		CreatedAt:     time.Now(),
		FallbackCause: draft.Cause,
	}
}

// Stats summarises recorded suggestions.
type Stats struct {
	ByCategory map[Category]int
	Fallbacks  int
}
