package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/contractcheck/packages/http"
)

const (
	defaultTimeout = 10 * time.Second
	footer         = "contractcheck"
)

func newClient(timeout time.Duration) *http.Client {
	return http.NewClient(http.WithTimeout(timeout))
}

// postJSON posts payload to a webhook and treats any non-2xx reply as an
// error carrying the body.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	resp, err := client.Post(ctx, url, data, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, resp.BodyString())
	}
	return nil
}
