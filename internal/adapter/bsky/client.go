// Package bsky implements the AppView fetch collaborator: an XRPC client
// for the notification feed and batched post resolution.
package bsky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skylens/skylens-backend/internal/config"
	"github.com/skylens/skylens-backend/internal/domain"
)

// MaxPostsPerRequest is the app.bsky.feed.getPosts batch limit.
const MaxPostsPerRequest = 25

// sessionSlack refreshes the access token this long before it expires.
const sessionSlack = time.Minute

// Client talks XRPC to a Bluesky AppView/PDS on behalf of one account.
// It is safe for concurrent use; session state is guarded internally.
type Client struct {
	baseURL     string
	identifier  string
	appPassword string
	httpClient  *http.Client
	log         *slog.Logger

	mu         sync.Mutex
	did        string
	accessJWT  string
	refreshJWT string
	expiresAt  time.Time
}

// NewClient creates a Client from BlueskyConfig. No network calls happen
// until the first request needs a session.
func NewClient(cfg config.BlueskyConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     cfg.ServiceURL,
		identifier:  cfg.Identifier,
		appPassword: cfg.AppPassword,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         logger.With("adapter", "bsky"),
	}
}

// DID returns the session account DID, or empty before the first login.
func (c *Client) DID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.did
}

// Login ensures an authenticated session and returns the account DID.
// Requests authenticate lazily on their own; Login is for callers that
// need the DID before their first request.
func (c *Client) Login(ctx context.Context) (string, error) {
	if _, err := c.ensureSession(ctx); err != nil {
		return "", err
	}
	return c.DID(), nil
}

// ListNotifications fetches one page of the account's notification feed.
// An empty cursor starts from the head.
func (c *Client) ListNotifications(ctx context.Context, cursor string, limit int) (*domain.NotificationPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var resp listNotificationsResponse
	if err := c.get(ctx, "app.bsky.notification.listNotifications", q, &resp); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	page := &domain.NotificationPage{Cursor: resp.Cursor}
	for _, n := range resp.Notifications {
		page.Notifications = append(page.Notifications, n.toDomain())
	}

	c.log.DebugContext(ctx, "notifications page fetched",
		slog.Int("count", len(page.Notifications)),
		slog.Bool("has_more", page.Cursor != ""),
	)

	return page, nil
}

// GetPosts resolves up to MaxPostsPerRequest post bodies by AT-URI. Posts
// the AppView cannot return (deleted, blocked) are silently absent from
// the result; callers must not assume positional correspondence.
func (c *Client) GetPosts(ctx context.Context, uris []string) ([]*domain.Post, error) {
	if len(uris) == 0 {
		return nil, nil
	}
	if len(uris) > MaxPostsPerRequest {
		return nil, domain.NewValidationError("uris", fmt.Sprintf("max %d per request", MaxPostsPerRequest))
	}

	q := url.Values{}
	for _, uri := range uris {
		q.Add("uris", uri)
	}

	var resp getPostsResponse
	if err := c.get(ctx, "app.bsky.feed.getPosts", q, &resp); err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}

	posts := make([]*domain.Post, 0, len(resp.Posts))
	for _, p := range resp.Posts {
		posts = append(posts, p.toDomain())
	}

	c.log.DebugContext(ctx, "posts fetched",
		slog.Int("requested", len(uris)),
		slog.Int("returned", len(posts)),
	)

	return posts, nil
}

// UpdateSeen tells the AppView the account has seen its notifications up
// to seenAt.
func (c *Client) UpdateSeen(ctx context.Context, seenAt time.Time) error {
	body := map[string]string{"seenAt": seenAt.UTC().Format(time.RFC3339)}
	if err := c.post(ctx, "app.bsky.notification.updateSeen", body, nil); err != nil {
		return fmt.Errorf("update seen: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Session management
// ---------------------------------------------------------------------------

// ensureSession logs in or refreshes so a valid access token is available.
func (c *Client) ensureSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessJWT != "" && time.Now().Before(c.expiresAt.Add(-sessionSlack)) {
		return c.accessJWT, nil
	}

	if c.refreshJWT != "" {
		if err := c.refreshSessionLocked(ctx); err == nil {
			return c.accessJWT, nil
		} else {
			c.log.WarnContext(ctx, "session refresh failed, re-authenticating",
				slog.String("error", err.Error()))
		}
	}

	if err := c.createSessionLocked(ctx); err != nil {
		return "", err
	}
	return c.accessJWT, nil
}

func (c *Client) createSessionLocked(ctx context.Context) error {
	body := map[string]string{
		"identifier": c.identifier,
		"password":   c.appPassword,
	}

	var resp sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "com.atproto.server.createSession", nil, body, "", &resp); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	c.adoptSessionLocked(resp)
	c.log.InfoContext(ctx, "session created", slog.String("did", c.did))
	return nil
}

func (c *Client) refreshSessionLocked(ctx context.Context) error {
	var resp sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "com.atproto.server.refreshSession", nil, nil, c.refreshJWT, &resp); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	c.adoptSessionLocked(resp)
	c.log.DebugContext(ctx, "session refreshed", slog.String("did", c.did))
	return nil
}

func (c *Client) adoptSessionLocked(s sessionResponse) {
	c.did = s.DID
	c.accessJWT = s.AccessJWT
	c.refreshJWT = s.RefreshJWT
	c.expiresAt = accessTokenExpiry(s.AccessJWT)
}

// accessTokenExpiry reads the exp claim without verifying the signature —
// the token is opaque credential material here, not something we trust
// claims from. A token we cannot parse is treated as already expired so
// the next call re-authenticates.
func accessTokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

func (c *Client) get(ctx context.Context, nsid string, q url.Values, out any) error {
	token, err := c.ensureSession(ctx)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodGet, nsid, q, nil, token, out)
}

func (c *Client) post(ctx context.Context, nsid string, body, out any) error {
	token, err := c.ensureSession(ctx)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, nsid, nil, body, token, out)
}

// doJSON executes one XRPC call with a single retry on 5xx or network
// errors.
func (c *Client) doJSON(ctx context.Context, method, nsid string, q url.Values, body any, token string, out any) error {
	reqURL := c.baseURL + "/xrpc/" + nsid
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	build := func() (*http.Request, error) {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("marshal body: %w", err)
			}
			reader = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	}

	req, err := build()
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if shouldRetry && ctx.Err() == nil {
		reason := "network error"
		if err == nil {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
			resp.Body.Close()
		}
		c.log.WarnContext(ctx, "xrpc retry", slog.String("nsid", nsid), slog.String("reason", reason))

		time.Sleep(500 * time.Millisecond)
		if req, err = build(); err != nil {
			return err
		}
		resp, err = c.httpClient.Do(req)
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %w", nsid, domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Expire the session so the next call re-authenticates.
		c.mu.Lock()
		c.expiresAt = time.Time{}
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", nsid, domain.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", nsid, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", nsid, err)
	}
	return nil
}
