package email

import (
	"context"
	"errors"
	"sync"

	"mailreply/internal/domain/email"
)

type fakeZeroShot struct {
	mu     sync.Mutex
	calls  int
	labels []string
	scores []email.LabelScore
	err    error
}

func (f *fakeZeroShot) Classify(_ context.Context, _ string, labels []string, multiLabel bool) ([]email.LabelScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.labels = labels
	if multiLabel {
		return nil, errors.New("multi-label not expected")
	}
	return f.scores, f.err
}

func (f *fakeZeroShot) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// top returns a zero-shot fake whose best label is label.
func top(label string) *fakeZeroShot {
	return &fakeZeroShot{scores: []email.LabelScore{{Label: label, Score: 0.9}, {Label: "other", Score: 0.1}}}
}

type fakeGenerator struct {
	reply string
	err   error
	input string
}

func (f *fakeGenerator) GenerateReply(_ context.Context, body string) (string, error) {
	f.input = body
	return f.reply, f.err
}

type fakeRepo struct {
	saved []*email.Suggestion
	err   error
}

func (f *fakeRepo) Save(_ context.Context, s *email.Suggestion) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*email.Suggestion, error) {
	for _, s := range f.saved {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRepo) Stats(context.Context) (*email.Stats, error) {
	return &email.Stats{ByCategory: map[email.Category]int{}}, nil
}
