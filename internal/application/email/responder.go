package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mailreply/internal/domain/email"
)

// FallbackSentence replaces the generated draft when the chat model is unavailable.
const FallbackSentence = "Não foi possível gerar uma resposta automática no momento. " +
	"Sua mensagem foi encaminhada para nossa equipe, que retornará em breve."

type Responder struct {
	classifier *Classifier
	generator  ReplyGenerator
	logger     *zap.Logger
}

func NewResponder(classifier *Classifier, generator ReplyGenerator, logger *zap.Logger) *Responder {
	return &Responder{
		classifier: classifier,
		generator:  generator,
		logger:     logger,
	}
}

// Suggest classifies text and drafts a templated reply. Generation failures
// never surface: the fallback sentence is used instead. Classification
// failures are returned.
func (r *Responder) Suggest(ctx context.Context, text string) (*email.Suggestion, error) {
	category, err := r.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	draft := r.draft(ctx, text)

	reply, err := email.RenderReply(category, draft.Text)
	if err != nil {
		return nil, fmt.Errorf("render reply: %w", err)
	}

	return email.NewSuggestion(category, reply, draft), nil
}

func (r *Responder) draft(ctx context.Context, text string) email.Draft {
	generated, err := r.generator.GenerateReply(ctx, text)
	if err != nil {
		r.logger.Warn("Reply generation failed, using fallback sentence", zap.Error(err))
		return email.Draft{Text: FallbackSentence, Fallback: true, Cause: err}
	}
	return email.Draft{Text: generated}
}
