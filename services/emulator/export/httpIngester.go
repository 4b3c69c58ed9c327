package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/virtbmc/idrac-emulator/services/emulator/common"
)

type httpIngester struct {
	endpoint  string
	apiKey    string
	namespace string
	client    *http.Client
}

// NewHTTPIngester creates a new ingester that pushes metric batches to the configured HTTP endpoint
func NewHTTPIngester(endpoint string, apiKey string, namespace string, timeout time.Duration) *httpIngester {
	return &httpIngester{
		endpoint:  endpoint,
		apiKey:    apiKey,
		namespace: namespace,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Submit sends one batch of metric points wrapped in the namespaced ingest payload
func (i *httpIngester) Submit(ctx context.Context, points []common.MetricPoint) error {
	payload := common.IngestPayload{
		Namespace:  i.namespace,
		MetricData: points,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal ingest payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create ingest request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", i.apiKey)

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error sending metrics batch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingestion endpoint rejected the batch with status code: %d", resp.StatusCode)
	}

	log.Debug("successfully sent metrics batch", "endpoint", i.endpoint, "points", len(points))

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (i *httpIngester) IsInterfaceNil() bool {
	return i == nil
}
