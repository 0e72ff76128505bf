package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// rateLimitScanLimit bounds the textual scan over unparseable bodies. Rate
// limit pages are short; anything larger is some other failure.
const rateLimitScanLimit = 4000

// ResponseError is the error block the finance endpoints embed in an
// otherwise well-formed JSON envelope.
type ResponseError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// authedResponse is implemented by envelope types returned from the
// crumb-authenticated endpoints. embeddedError reports the application-level
// error block when the envelope carries no usable result.
type authedResponse interface {
	embeddedError() *ResponseError
}

// fetch performs a GET against fullURL and returns the body of a 200
// response. Transport failures wrap ErrConnection; HTTP 429 becomes a
// RateLimitError; any other non-200 status becomes a StatusError.
func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{Context: fullURL}
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: fullURL}
	}

	return body, nil
}

// decode unmarshals a 200 body. When the body is not the expected JSON, a
// short body mentioning a rate limit is reported as such; anything else is a
// DeserializeError.
func decode(body []byte, result any) error {
	if err := json.Unmarshal(body, result); err != nil {
		trimmed := strings.TrimSpace(string(body))
		if len(trimmed) <= rateLimitScanLimit &&
			strings.Contains(strings.ToLower(trimmed), "too many requests") {
			return &RateLimitError{Context: trimmed}
		}
		return &DeserializeError{Err: err}
	}
	return nil
}

// getJSON performs an unauthenticated GET and decodes the response.
func (c *Client) getJSON(ctx context.Context, fullURL string, result any) error {
	body, err := c.fetch(ctx, fullURL)
	if err != nil {
		return err
	}
	return decode(body, result)
}

// getWithCrumb performs a crumb-authenticated GET. When the endpoint rejects
// the session it refreshes the stale piece (cookie or crumb) and retries,
// bounded by the configured retry budget. Transport and status failures are
// never retried.
func (c *Client) getWithCrumb(ctx context.Context, baseURL string, query url.Values, result authedResponse) error {
	for attempt := 0; ; attempt++ {
		if err := c.ensureSession(ctx); err != nil {
			return err
		}

		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("crumb", c.currentCrumb())

		body, err := c.fetch(ctx, baseURL+"?"+q.Encode())
		if err != nil {
			return err
		}
		if err := decode(body, result); err != nil {
			return err
		}

		respErr := result.embeddedError()
		if respErr == nil {
			return nil
		}

		var stale error
		switch {
		case strings.Contains(respErr.Description, "Invalid Cookie"):
			c.invalidateCookie()
			stale = ErrInvalidCookie
		case strings.Contains(respErr.Description, "Invalid Crumb"),
			respErr.Code == "Unauthorized":
			c.invalidateCrumb()
			stale = ErrInvalidCrumb
		default:
			return &APIError{Code: respErr.Code, Description: respErr.Description}
		}

		if attempt < c.authRetries {
			c.logger.Debug("session rejected, refreshing",
				"code", respErr.Code,
				"description", respErr.Description,
				"attempt", attempt+1,
			)
			continue
		}
		return fmt.Errorf("%w: %s", stale, respErr.Description)
	}
}
