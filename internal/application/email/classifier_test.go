package email

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"

	"mailreply/internal/domain/email"
)

func labelMap(t *testing.T) *email.LabelMap {
	t.Helper()
	m, err := email.NewLabelMap(email.DefaultLabels)
	if err != nil {
		t.Fatalf("NewLabelMap: %v", err)
	}
	return m
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		zs   *fakeZeroShot
		want email.Category
	}{
		{"support request", top("support request"), email.CategoryProductive},
		{"status update", top("status update"), email.CategoryProductive},
		{"technical question", top("technical question"), email.CategoryProductive},
		{"greetings", top("greetings"), email.CategoryUnproductive},
		{"thank you", top("thank you"), email.CategoryUnproductive},
		{"non-urgent", top("non-urgent"), email.CategoryUnproductive},
		{"unknown label", top("weather report"), email.CategoryUnproductive},
		{"no predictions", &fakeZeroShot{}, email.CategoryUnproductive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.zs, labelMap(t), zap.NewNop())

			got, err := c.Classify(context.Background(), "Preciso de ajuda com meu acesso")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if tt.zs.Calls() != 1 {
				t.Errorf("zero-shot called %d times, want 1", tt.zs.Calls())
			}
		})
	}
}

func TestClassifySendsFlattenedCandidates(t *testing.T) {
	zs := top("greetings")
	c := NewClassifier(zs, labelMap(t), zap.NewNop())

	if _, err := c.Classify(context.Background(), "Bom dia!"); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	want := []string{
		"support request", "status update", "technical question",
		"greetings", "thank you", "non-urgent",
	}
	if !reflect.DeepEqual(zs.labels, want) {
		t.Errorf("candidates = %v, want %v", zs.labels, want)
	}
}

func TestClassifyPropagatesProviderError(t *testing.T) {
	boom := errors.New("model unavailable")
	c := NewClassifier(&fakeZeroShot{err: boom}, labelMap(t), zap.NewNop())

	_, err := c.Classify(context.Background(), "Qual o status do chamado?")
	if !errors.Is(err, ErrClassification) || !errors.Is(err, boom) {
		t.Errorf("got %v, want ErrClassification wrapping the provider error", err)
	}
}

func TestProperty_BlankTextSkipsRemoteCall(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	whitespace := gen.SliceOf(gen.OneConstOf(' ', '\t', '\n', '\r', '\v', '\f', '\u00a0', '\u2003')).
		Map(func(rs []rune) string {
			return string(rs)
		})

	properties.Property("blank_text_is_unproductive_without_call", prop.ForAll(
		func(text string) bool {
			zs := top("support request")
			c := NewClassifier(zs, labelMap(t), zap.NewNop())

			got, err := c.Classify(context.Background(), text)
			return err == nil && got == email.CategoryUnproductive && zs.Calls() == 0
		},
		whitespace,
	))

	properties.TestingRun(t)
}

func TestProperty_UnknownLabelDefaultsToUnproductive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	m := labelMap(t)

	properties.Property("label_outside_map_is_unproductive", prop.ForAll(
		func(label string) bool {
			c := NewClassifier(top(label), m, zap.NewNop())
			got, err := c.Classify(context.Background(), "texto")
			return err == nil && got == email.CategoryUnproductive
		},
		gen.Identifier().SuchThat(func(s string) bool {
			_, known := m.CategoryOf(s)
			return !known
		}),
	))

	properties.TestingRun(t)
}
