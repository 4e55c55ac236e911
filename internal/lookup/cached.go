package lookup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/sirupsen/logrus"
)

// Cache stores evaluated lookup choices.
type Cache interface {
	GetChoices(ctx context.Context, key string) ([]string, bool, error)
	SetChoices(ctx context.Context, key string, choices []string, ttl time.Duration) error
}

var _ Evaluator = (*CachedEvaluator)(nil)

// CachedEvaluator serves Choices from a cache, evaluating on a miss.
// Cache failures are logged and fall through to evaluation.
type CachedEvaluator struct {
	next  Evaluator
	cache Cache
	ttl   time.Duration
}

func NewCachedEvaluator(next Evaluator, cache Cache, ttl time.Duration) *CachedEvaluator {
	return &CachedEvaluator{next: next, cache: cache, ttl: ttl}
}

func choicesKey(template string) string {
	sum := sha256.Sum256([]byte(template))
	return "lookup:choices:" + hex.EncodeToString(sum[:])
}

func (c *CachedEvaluator) Choices(ctx context.Context, template string) ([]string, error) {
	key := choicesKey(template)
	choices, ok, err := c.cache.GetChoices(ctx, key)
	if err != nil {
		logrus.Warnf("lookup cache get failed: %v", err)
	}
	if ok {
		return choices, nil
	}

	return c.Refresh(ctx, template)
}

// Refresh evaluates the template and overwrites the cached choices.
func (c *CachedEvaluator) Refresh(ctx context.Context, template string) ([]string, error) {
	choices, err := c.next.Choices(ctx, template)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetChoices(ctx, choicesKey(template), choices, c.ttl); err != nil {
		logrus.Warnf("lookup cache set failed: %v", err)
	}

	return choices, nil
}

func (c *CachedEvaluator) Value(ctx context.Context, template string) (string, error) {
	return c.next.Value(ctx, template)
}

func (c *CachedEvaluator) Check(template string) error {
	return c.next.Check(template)
}
