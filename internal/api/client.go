// Package api provides the HTTP client for the Ember panel setup API.
//
// The wizard is a pure client of this API: every operation maps to one
// backend endpoint, carries a context for cancellation, and performs no
// automatic retries. Failures surface the backend-provided message when
// one is present.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ResetConfirmationPhrase is the literal confirmation token the backend
// requires for the reset mutation.
const ResetConfirmationPhrase = "RESET EMBER SETUP"

// Client talks to the panel backend's setup endpoints.
type Client struct {
	opts Options
	http *http.Client
}

// New creates a new Client with the given options.
func New(opts Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	opts = opts.withDefaults()
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &Client{
		opts: opts,
		http: opts.HTTPClient,
	}, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.opts.BaseURL
}

// Status fetches the current setup status snapshot.
func (c *Client) Status(ctx context.Context) (*SetupStatus, error) {
	var status SetupStatus
	if err := c.do(ctx, http.MethodGet, "/api/setup/status", nil, nil, "", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ConfigureDomains submits the panel's web and API domains. Both must be
// valid absolute URLs; the backend validates them again.
func (c *Client) ConfigureDomains(ctx context.Context, webDomain, apiDomain string) error {
	body := configureDomainsRequest{WebDomain: webDomain, APIDomain: apiDomain}
	return c.do(ctx, http.MethodPost, "/api/setup/configure-domains", nil, body, "", nil)
}

// AuthURL fetches a fresh Discord authorization URL from the backend.
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	var resp authURLResponse
	if err := c.do(ctx, http.MethodGet, "/api/setup/discord/auth-url", nil, nil, "", &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// ExchangeCallback exchanges an OAuth authorization code for a session
// token. The code is single-use at the backend; callers must guarantee
// at most one exchange per code.
func (c *Client) ExchangeCallback(ctx context.Context, code, state, guildID string) (*CallbackResponse, error) {
	query := url.Values{}
	query.Set("code", code)
	query.Set("state", state)
	if guildID != "" {
		query.Set("guild_id", guildID)
	}

	var resp CallbackResponse
	if err := c.do(ctx, http.MethodGet, "/api/setup/discord/callback", query, nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListGuilds lists the guilds the authenticated user administers. The
// POST is idempotent by backend contract. 429 responses carry a
// RetryAfter wait time.
func (c *Client) ListGuilds(ctx context.Context, sessionToken string) ([]Guild, error) {
	body := listGuildsRequest{SessionToken: sessionToken}

	var resp guildListResponse
	if err := c.do(ctx, http.MethodPost, "/api/setup/discord/guilds", nil, body, "", &resp); err != nil {
		return nil, err
	}
	return resp.Guilds, nil
}

// SelectGuild records the guild the panel will manage.
func (c *Client) SelectGuild(ctx context.Context, guildID, installerDiscordID string) error {
	body := selectGuildRequest{GuildID: guildID, InstallerDiscordID: installerDiscordID}
	return c.do(ctx, http.MethodPost, "/api/setup/select-guild", nil, body, "", nil)
}

// GuildRoles fetches the roles of the selected guild. The session token
// authorizes the call via a bearer header.
func (c *Client) GuildRoles(ctx context.Context, sessionToken, guildID string) (*GuildRolesResponse, error) {
	path := fmt.Sprintf("/api/setup/guild/%s/roles", url.PathEscape(guildID))

	var resp GuildRolesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, nil, sessionToken, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfigureRoles submits the role permission matrix for the guild.
func (c *Client) ConfigureRoles(ctx context.Context, guildID string, perms []RolePermission) error {
	body := configureRolesRequest{GuildID: guildID, RolePermissions: perms}
	return c.do(ctx, http.MethodPost, "/api/setup/configure-roles", nil, body, "", nil)
}

// Complete finalizes setup. This is the terminal mutation.
func (c *Client) Complete(ctx context.Context, orgName string, perms []RolePermission) error {
	body := completeRequest{OrgName: orgName, RolePermissions: perms}
	return c.do(ctx, http.MethodPost, "/api/setup/complete", nil, body, "", nil)
}

// Reset asks the backend to re-open setup. The confirmation token must
// equal ResetConfirmationPhrase.
func (c *Client) Reset(ctx context.Context, confirmationToken string) error {
	body := resetRequest{ConfirmationToken: confirmationToken}
	return c.do(ctx, http.MethodPost, "/api/setup/reset", nil, body, "", nil)
}

// do performs one request. bearer, when non-empty, becomes an
// Authorization header. Non-2xx responses are decoded into *Error;
// transport errors (including context cancellation) pass through so
// callers can distinguish cancellation from failure.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, bearer string, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	target := c.opts.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if reqCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("request timed out after %s: %w", c.opts.Timeout, err)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// decodeError builds an *Error from a non-2xx response.
func (c *Client) decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(data) > 0 {
		var body errorBody
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.message()
			apiErr.RetryAfter = body.RetryAfter
		}
	}

	return apiErr
}
