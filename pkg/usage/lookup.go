package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/benefitsys/rules-api/pkg/common/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2/clientcredentials"
)

// PassthroughLookup reuses the event's own id as processing id. It is the
// terminal fallback in the production chain so migration keeps working
// through a lookup-service outage; the idempotent insert makes a later
// replay with a resolved id harmless.
type PassthroughLookup struct{}

func (PassthroughLookup) ProcessingID(_ context.Context, event V1) (string, error) {
	return event.ID, nil
}

// HTTPLookup resolves the processing id from the decision registry,
// authenticated with OAuth2 client credentials.
type HTTPLookup struct {
	baseURL string
	client  *http.Client
}

func NewHTTPLookup(baseURL string, creds clientcredentials.Config, timeout time.Duration) *HTTPLookup {
	var client *http.Client
	if creds.TokenURL != "" {
		client = creds.Client(context.Background())
	} else {
		client = &http.Client{}
	}
	client.Timeout = timeout
	return &HTTPLookup{baseURL: baseURL, client: client}
}

func (l *HTTPLookup) ProcessingID(ctx context.Context, event V1) (string, error) {
	url := fmt.Sprintf("%s/processing-id/%d", l.baseURL, event.ExternalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var body struct {
		ProcessingID string `json:"processingId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding lookup response: %w", err)
	}
	return body.ProcessingID, nil
}

// CachedLookup fronts another lookup with Redis. Cache failures are treated
// as misses; a successful resolution is written back best effort.
type CachedLookup struct {
	client *redis.Client
	next   ProcessingIDLookup
	ttl    time.Duration
}

func NewCachedLookup(client *redis.Client, next ProcessingIDLookup, ttl time.Duration) *CachedLookup {
	return &CachedLookup{client: client, next: next, ttl: ttl}
}

func (l *CachedLookup) cacheKey(event V1) string {
	return fmt.Sprintf("processing-id:%d", event.ExternalID)
}

func (l *CachedLookup) ProcessingID(ctx context.Context, event V1) (string, error) {
	if cached, err := l.client.Get(ctx, l.cacheKey(event)).Result(); err == nil && cached != "" {
		return cached, nil
	}

	processingID, err := l.next.ProcessingID(ctx, event)
	if err != nil {
		return "", err
	}

	if err := l.client.Set(ctx, l.cacheKey(event), processingID, l.ttl).Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to cache processing id")
	}
	return processingID, nil
}

// ChainLookup tries each lookup in order, falling through on error.
type ChainLookup []ProcessingIDLookup

func (c ChainLookup) ProcessingID(ctx context.Context, event V1) (string, error) {
	var lastErr error
	for _, lookup := range c {
		processingID, err := lookup.ProcessingID(ctx, event)
		if err == nil && processingID != "" {
			return processingID, nil
		}
		if err != nil {
			logger.Log.WithError(err).WithField("event_id", event.ID).Debug("processing-id lookup failed, trying next")
			lastErr = err
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("no lookup resolved a processing id for %s", event.ID)
}
