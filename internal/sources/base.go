// Package sources holds one adapter per data provider. Every adapter
// canonicalizes its provider payload into the shared field vocabulary and
// reports failures as *models.SourceError, which callers treat as "no data
// from this source".
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"FinSight/internal/domain/models"
	xhttp "FinSight/pkg/http"
)

// httpBase centralizes request handling and error classification for the
// HTTP-backed adapters.
type httpBase struct {
	source  string
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

func newHTTPBase(source, baseURL, apiKey string, timeout time.Duration) httpBase {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return httpBase{
		source:  source,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// do sends the request and decodes the JSON body into dest, classifying
// failures into the source error taxonomy.
func (b *httpBase) do(ctx context.Context, method, path string, params map[string][]string, body any, dest any) error {
	headers := map[string]string{"Content-Type": "application/json"}
	if b.apiKey != "" {
		headers["Authorization"] = "Bearer " + b.apiKey
	}

	resp, err := b.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      method,
		URL:         b.baseURL + path,
		Headers:     headers,
		QueryParams: params,
		Body:        body,
	})
	if err != nil {
		kind := models.SourceErrNetwork
		if ctx.Err() == context.DeadlineExceeded {
			kind = models.SourceErrTimeout
		}
		return models.NewSourceError(b.source, kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return models.NewSourceError(b.source, models.SourceErrRateLimited, fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.NewSourceError(b.source, models.SourceErrNetwork, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return models.NewSourceError(b.source, models.SourceErrParse, err)
	}
	return nil
}
