package zeroshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"mailreply/internal/domain/email"
)

const defaultTimeout = 60 * time.Second

var ErrInvalidResponse = errors.New("invalid zero-shot response")

// Client calls a zero-shot classification endpoint that follows the Hugging
// Face Inference API contract.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

func NewClient(url, token string) *Client {
	return &Client{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// legacyResponse is the {sequence, labels, scores} shape.
type legacyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type apiError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Classify scores text against labels and returns the predictions ranked
// from most to least likely.
func (c *Client) Classify(ctx context.Context, text string, labels []string, multiLabel bool) ([]email.LabelScore, error) {
	body, err := json.Marshal(request{
		Inputs: text,
		Parameters: parameters{
			CandidateLabels: labels,
			MultiLabel:      multiLabel,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zero-shot request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("zero-shot api status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("zero-shot api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	scores, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}

// parseResponse accepts both the list-of-pairs and the parallel-arrays shapes.
func parseResponse(raw []byte) ([]email.LabelScore, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '[' {
		var scores []email.LabelScore
		if err := json.Unmarshal(raw, &scores); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return scores, nil
	}

	var legacy legacyResponse
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(legacy.Labels) != len(legacy.Scores) {
		return nil, fmt.Errorf("%w: %d labels for %d scores", ErrInvalidResponse, len(legacy.Labels), len(legacy.Scores))
	}

	scores := make([]email.LabelScore, len(legacy.Labels))
	for i, l := range legacy.Labels {
		scores[i] = email.LabelScore{Label: l, Score: legacy.Scores[i]}
	}
	return scores, nil
}
