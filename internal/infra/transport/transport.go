// Package transport implements the HTTP transport contract (spec §6): given
// an UpdateRequest, produce an UpdateResult honouring conditional-request
// headers, following redirects, and reporting the effective post-redirect
// URL.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"feedcore/internal/domain/entity"
)

// HTTP adapts net/http to the feed-parser-independent transport contract.
// It is the "any other scheme://..." job kind's network handler (spec
// §4.B.4).
type HTTP struct {
	client    *http.Client
	userAgent string
}

// New returns an HTTP transport with the given timeout. A zero timeout
// disables the client-level deadline (per-request contexts still apply).
func New(timeout time.Duration, userAgent string) *HTTP {
	return &HTTP{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Fetch executes req and produces an UpdateResult (spec §4.B.4, §6).
//
// MUST honour lastModified/etag as conditional inputs (done here via
// request headers), MUST update them from the response, MUST follow 3xx
// redirects and report the effective URL (net/http's default
// CheckRedirect does the following; Request.URL on the final response
// reports the effective URL), MUST NOT treat 304 as an error.
func (t *HTTP) Fetch(ctx context.Context, req *entity.UpdateRequest) (*entity.UpdateResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Source, nil)
	if err != nil {
		return nil, err
	}
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}
	if req.State.ETag != "" {
		httpReq.Header.Set("If-None-Match", req.State.ETag)
	}
	if req.State.LastModified != "" {
		httpReq.Header.Set("If-Modified-Since", req.State.LastModified)
	}
	if req.AuthHeaderValue != "" {
		httpReq.Header.Set("Authorization", req.AuthHeaderValue)
	}
	if req.State.Cookies != "" {
		httpReq.Header.Set("Cookie", req.State.Cookies)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &entity.UpdateResult{
		Source:       resp.Request.URL.String(),
		HTTPStatus:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		UpdatedState: req.State,
	}

	if resp.StatusCode == http.StatusNotModified {
		// Size-0 body with status 304 is a valid "not modified" result
		// (spec §6) — etag/lastModified carry forward unchanged.
		return result, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	result.Data = body
	result.Size = len(body)

	if etag := resp.Header.Get("ETag"); etag != "" {
		result.UpdatedState.ETag = etag
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		result.UpdatedState.LastModified = lm
	}

	return result, nil
}
