package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gitanomongolomon/gmm-site/internal/events"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

// Watch reads the admin change stream and calls fn for every change until ctx is cancelled
// or the server closes the stream.
func (c *Client) Watch(ctx context.Context, fn func(events.ChangeEvent)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/admin/stream", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// The stream outlives the client timeout.
	streamClient := &http.Client{Transport: c.client.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.NewUpstreamError("site API unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &apperrors.DomainError{Code: codeForStatus(resp.StatusCode), Message: "change stream refused: " + resp.Status, HTTPStatus: resp.StatusCode}
	}

	scanner := bufio.NewScanner(resp.Body)
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				var event events.ChangeEvent
				if err := json.Unmarshal([]byte(data.String()), &event); err == nil {
					fn(event)
				}
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return scanner.Err()
}
