// Package roster talks to the team backend: attending players, the player
// and match listings, and team generation.
package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/lineup/internal/domain/dedupe"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// Backend endpoints.
const (
	PathAttendingPlayers = "/attending_players"
	PathPlayers          = "/players"
	PathMatches          = "/matches"
	PathGenerateTeams    = "/generate_teams"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client issues one GET per call and never retries.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	log        logger.Logger
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		userAgent:  "lineup/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AttendingPlayers loads the roster for src. Tokens keep the server order;
// a name repeated later in the list is dropped.
func (c *Client) AttendingPlayers(ctx context.Context, src model.Source) ([]model.PlayerToken, error) {
	const op = "attending_players"
	if err := src.Validate(); err != nil {
		return nil, err
	}

	tokens, err := c.attending(ctx, op, src)
	if err != nil {
		metrics.RecordRosterLoad("failed")
		return nil, err
	}
	metrics.RecordRosterLoad("ok")
	return tokens, nil
}

func (c *Client) attending(ctx context.Context, op string, src model.Source) ([]model.PlayerToken, error) {
	raw, err := c.get(ctx, op, PathAttendingPlayers, src.Query())
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &LoadFailure{Op: op, Reason: "malformed roster payload", Err: err}
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if n := strings.TrimSpace(r.Name); n != "" {
			names = append(names, n)
		}
	}
	unique := dedupe.Unique(names, dedupe.WithCapacity(len(names)))
	if dropped := len(names) - len(unique); dropped > 0 && c.log != nil {
		c.log.Warn(ctx, "dropped repeated roster names", logger.Int("dropped", dropped))
	}
	return model.TokensFromNames(unique), nil
}

// Players returns the active player listing for display.
func (c *Client) Players(ctx context.Context) ([]model.Record, error) {
	return c.records(ctx, "players", PathPlayers)
}

// Matches returns the open match listing for display.
func (c *Client) Matches(ctx context.Context) ([]model.Record, error) {
	return c.records(ctx, "matches", PathMatches)
}

func (c *Client) records(ctx context.Context, op, path string) ([]model.Record, error) {
	raw, err := c.get(ctx, op, path, nil)
	if err != nil {
		return nil, err
	}
	var out []model.Record
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &LoadFailure{Op: op, Reason: "malformed listing payload", Err: err}
	}
	return out, nil
}

// GenerateTeams asks the backend for an assignment.
func (c *Client) GenerateTeams(ctx context.Context, src model.Source) (*model.Assignment, error) {
	const op = "generate_teams"
	if err := src.Validate(); err != nil {
		return nil, err
	}

	raw, err := c.get(ctx, op, PathGenerateTeams, src.Query())
	if err != nil {
		return nil, err
	}
	var a model.Assignment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, &LoadFailure{Op: op, Reason: "malformed assignment payload", Err: err}
	}
	// names are trimmed like roster names so tokens and entries match
	for _, bucket := range [][]model.PlayerEntry{a.TeamA, a.TeamB, a.Bench} {
		for i := range bucket {
			bucket[i].Name = strings.TrimSpace(bucket[i].Name)
		}
	}
	return &a, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// get performs the request and returns the body once it is known to be a
// successful, non-error payload.
func (c *Client) get(ctx context.Context, op, path string, q url.Values) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	outcome := "failed"
	defer func() {
		metrics.RecordUpstreamLatency(path, outcome, float64(time.Since(start).Milliseconds()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, q), nil)
	if err != nil {
		return nil, &LoadFailure{Op: op, Reason: "creating request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LoadFailure{Op: op, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &LoadFailure{Op: op, Status: resp.StatusCode, Reason: "reading body", Err: err}
	}

	if reason, ok := errorPayload(body); ok {
		return nil, &LoadFailure{Op: op, Status: statusIfFailed(resp.StatusCode), Reason: reason}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadFailure{Op: op, Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	outcome = "ok"
	if c.log != nil {
		c.log.Debug(ctx, "backend request", logger.String("op", op), logger.Int("bytes", len(body)),
			logger.Duration("took", time.Since(start)))
	}
	return body, nil
}

func statusIfFailed(status int) int {
	if status >= 200 && status <= 299 {
		return 0
	}
	return status
}

// errorPayload reports whether body is an object carrying an "error" field.
func errorPayload(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return "", false
	}
	switch string(envelope.Error) {
	case "", "null", "false", `""`:
		return "", false
	}
	var msg string
	if err := json.Unmarshal(envelope.Error, &msg); err == nil {
		return msg, true
	}
	return string(envelope.Error), true
}
