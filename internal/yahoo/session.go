package yahoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// session holds the cookie/crumb pair required by the authenticated
// endpoints. The zero value is an empty session; both pieces are established
// lazily on first use.
type session struct {
	mu     sync.Mutex
	cookie string
	crumb  string
}

// ensureSession establishes the cookie and crumb if either is missing.
func (c *Client) ensureSession(ctx context.Context) error {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	if c.session.cookie == "" {
		if err := c.refreshCookieLocked(ctx); err != nil {
			return err
		}
		// A new cookie invalidates whatever crumb we had.
		c.session.crumb = ""
	}
	if c.session.crumb == "" {
		err := c.refreshCrumbLocked(ctx)
		if errors.Is(err, ErrInvalidCookie) {
			// The crumb endpoint rejected our cookie. Establish a fresh
			// one and try again, once.
			if err = c.refreshCookieLocked(ctx); err != nil {
				return err
			}
			err = c.refreshCrumbLocked(ctx)
		}
		// The endpoint occasionally answers an empty body; fetch again
		// within the retry budget before giving up.
		for n := 0; errors.Is(err, ErrInvalidCrumb) && n < c.authRetries; n++ {
			err = c.refreshCrumbLocked(ctx)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// invalidateCookie drops the session entirely so the next call establishes a
// fresh cookie and crumb.
func (c *Client) invalidateCookie() {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	c.session.cookie = ""
	c.session.crumb = ""
}

// invalidateCrumb drops the crumb but keeps the cookie.
func (c *Client) invalidateCrumb() {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	c.session.crumb = ""
}

func (c *Client) currentCrumb() string {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	return c.session.crumb
}

// refreshCookieLocked fetches a fresh session cookie. The cookie itself is
// stored in the HTTP client's jar; the raw header value is kept only for
// validation.
func (c *Client) refreshCookieLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Cookie, nil)
	if err != nil {
		return fmt.Errorf("build cookie request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	raw := resp.Header.Get("Set-Cookie")
	if raw == "" {
		return ErrNoCookies
	}
	for _, r := range raw {
		if r < 0x20 || r > 0x7e {
			return ErrInvisibleASCIIInCookies
		}
	}

	c.session.cookie = raw
	c.logger.Debug("refreshed session cookie")
	return nil
}

// refreshCrumbLocked fetches the crumb that accompanies the current cookie.
// The endpoint answers with the bare crumb as plain text.
func (c *Client) refreshCrumbLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Crumb, nil)
	if err != nil {
		return fmt.Errorf("build crumb request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Context: "crumb"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	crumb := strings.TrimSpace(string(body))
	if strings.Contains(crumb, "Too Many Requests") {
		return &RateLimitError{Context: "crumb"}
	}
	if strings.Contains(crumb, "Invalid Cookie") {
		return ErrInvalidCookie
	}
	if resp.StatusCode != http.StatusOK {
		return ErrUnauthorized
	}
	if crumb == "" {
		return ErrInvalidCrumb
	}

	c.session.crumb = crumb
	c.logger.Debug("refreshed session crumb")
	return nil
}
