package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mailreply/internal/interfaces/worker"
)

// Payload is the JSON body expected on the subscription.
type Payload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// seenLimit bounds the ids remembered between enqueue and save.
const seenLimit = 10000

// ProcessedChecker reports whether a suggestion was already recorded for id.
type ProcessedChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	pool      *worker.Pool
	processed ProcessedChecker
	logger    *zap.Logger

	mu        sync.Mutex
	seen      map[string]struct{}
	order     []string
	seenLimit int
}

// NewHandler builds the Pub/Sub handler. processed may be nil, in which case
// only ids seen by this process are skipped.
func NewHandler(pool *worker.Pool, processed ProcessedChecker, logger *zap.Logger) *Handler {
	return &Handler{
		pool:      pool,
		processed: processed,
		logger:    logger,
		seen:      make(map[string]struct{}),
		seenLimit: seenLimit,
	}
}

// HandleMessage queues the email carried by data. Malformed payloads and
// already seen ids are dropped without error so they get acked.
func (h *Handler) HandleMessage(ctx context.Context, messageID string, data []byte) error {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		h.logger.Warn("Dropping malformed Pub/Sub payload",
			zap.String("message_id", messageID),
			zap.Error(err))
		return nil
	}

	if p.ID == "" {
		p.ID = messageID
	}
	if strings.TrimSpace(p.Text) == "" {
		h.logger.Warn("Dropping Pub/Sub payload without text", zap.String("id", p.ID))
		return nil
	}

	if h.alreadyProcessed(ctx, p.ID) {
		h.logger.Debug("Email already processed, skipping", zap.String("id", p.ID))
		return nil
	}

	if !h.markSeen(p.ID) {
		h.logger.Debug("Email already queued, skipping", zap.String("id", p.ID))
		return nil
	}

	if !h.pool.Submit(ctx, worker.EmailJob{ID: p.ID, Text: p.Text}) {
		h.forget(p.ID)
		return fmt.Errorf("queue email %s: %w", p.ID, ctx.Err())
	}

	return nil
}

func (h *Handler) alreadyProcessed(ctx context.Context, id string) bool {
	if h.processed == nil {
		return false
	}
	ok, err := h.processed.Exists(ctx, id)
	if err != nil {
		h.logger.Warn("Failed to check processed emails", zap.String("id", id), zap.Error(err))
		return false
	}
	return ok
}

// markSeen records id and reports whether it was new. The oldest ids are
// evicted once seenLimit is reached.
func (h *Handler) markSeen(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.seen[id]; ok {
		return false
	}
	h.seen[id] = struct{}{}
	h.order = append(h.order, id)

	for len(h.order) > h.seenLimit {
		delete(h.seen, h.order[0])
		h.order = h.order[1:]
	}
	return true
}

func (h *Handler) forget(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.seen, id)
	for i := len(h.order) - 1; i >= 0; i-- {
		if h.order[i] == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}
