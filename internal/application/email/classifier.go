package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mailreply/internal/domain/email"
)

var ErrClassification = errors.New("classification failed")

type Classifier struct {
	zeroShot ZeroShotClassifier
	labels   *email.LabelMap
	logger   *zap.Logger
}

func NewClassifier(zeroShot ZeroShotClassifier, labels *email.LabelMap, logger *zap.Logger) *Classifier {
	return &Classifier{
		zeroShot: zeroShot,
		labels:   labels,
		logger:   logger,
	}
}

// Classify maps text to a category. Blank text is Unproductive without a
// remote call, and so is a top label that belongs to no bucket.
func (c *Classifier) Classify(ctx context.Context, text string) (email.Category, error) {
	if strings.TrimSpace(text) == "" {
		return email.CategoryUnproductive, nil
	}

	scores, err := c.zeroShot.Classify(ctx, text, c.labels.Candidates(), false)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrClassification, err)
	}

	if len(scores) == 0 {
		c.logger.Warn("Zero-shot returned no labels, defaulting category",
			zap.String("category", email.CategoryUnproductive.String()))
		return email.CategoryUnproductive, nil
	}

	category, ok := c.labels.CategoryOf(scores[0].Label)
	if !ok {
		c.logger.Warn("Zero-shot label matches no category, defaulting",
			zap.String("label", scores[0].Label),
			zap.String("category", email.CategoryUnproductive.String()))
		return email.CategoryUnproductive, nil
	}

	return category, nil
}
