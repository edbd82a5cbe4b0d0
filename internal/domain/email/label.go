package email

import (
	"fmt"
	"strings"
)

// LabelMap holds the zero-shot candidate phrases of each category. It is
// built once at startup and only read afterwards.
type LabelMap struct {
	buckets    map[Category][]string
	owner      map[string]Category
	candidates []string
}

// DefaultLabels are the candidate phrases used when no label file is configured.
var DefaultLabels = map[Category][]string{
	CategoryProductive: {
		"support request",
		"status update",
		"technical question",
	},
	CategoryUnproductive: {
		"greetings",
		"thank you",
		"non-urgent",
	},
}

// NewLabelMap validates buckets and returns a LabelMap. Every category needs
// at least one label and a label may belong to a single category only.
func NewLabelMap(buckets map[Category][]string) (*LabelMap, error) {
	m := &LabelMap{
		buckets: make(map[Category][]string, len(Categories)),
		owner:   make(map[string]Category),
	}

	for c := range buckets {
		if !c.IsValid() {
			return nil, fmt.Errorf("unknown category %q in label map", c)
		}
	}

	for _, c := range Categories {
		labels := buckets[c]
		if len(labels) == 0 {
			return nil, fmt.Errorf("category %q has no labels", c)
		}

		for _, l := range labels {
			l = strings.TrimSpace(l)
			if l == "" {
				return nil, fmt.Errorf("category %q has a blank label", c)
			}
			if other, ok := m.owner[l]; ok {
				return nil, fmt.Errorf("label %q belongs to both %q and %q", l, other, c)
			}
			m.owner[l] = c
			m.buckets[c] = append(m.buckets[c], l)
			m.candidates = append(m.candidates, l)
		}
	}

	return m, nil
}

// Candidates returns all labels flattened, productive bucket first.
func (m *LabelMap) Candidates() []string {
	out := make([]string, len(m.candidates))
	copy(out, m.candidates)
	return out
}

func (m *LabelMap) Labels(c Category) []string {
	out := make([]string, len(m.buckets[c]))
	copy(out, m.buckets[c])
	return out
}

// CategoryOf maps a label back to the category owning it.
func (m *LabelMap) CategoryOf(label string) (Category, bool) {
	c, ok := m.owner[strings.TrimSpace(label)]
	return c, ok
}

// LabelScore is one ranked zero-shot prediction.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
