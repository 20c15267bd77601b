package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DataWorkbench/glog"
	"github.com/google/uuid"
	"github.com/valyala/fastjson"

	"github.com/DataWorkbench/paimonweb/qerror"
	"github.com/DataWorkbench/paimonweb/utils"
)

const (
	DefaultAPIVersion   = "v2"
	DefaultPollInterval = 1000 * time.Millisecond
)

// Client talks to one Flink SQL Gateway. It holds no locks: a session or
// operation must not be driven by concurrent callers without external
// synchronization.
type Client struct {
	address string
	port    int
	server  string
	client  *http.Client
	poll    utils.PollOptions
	logger  *glog.Logger
}

type Option func(c *Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.server = fmt.Sprintf("http://%s:%d/%s", c.address, c.port, strings.Trim(version, "/"))
	}
}

// WithPollInterval sets the wait between NOT_READY fetches.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.poll.Interval = d }
}

// WithPollTimeout bounds FetchResults. Zero keeps polling until a result arrives.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Client) { c.poll.Timeout = d }
}

// WithMaxPollAttempts bounds FetchResults by attempt count. Zero is unbounded.
func WithMaxPollAttempts(n int) Option {
	return func(c *Client) { c.poll.MaxAttempts = n }
}

func WithLogger(l *glog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(address string, port int, opts ...Option) *Client {
	c := &Client{
		address: address,
		port:    port,
		server:  fmt.Sprintf("http://%s:%d/%s", address, port, DefaultAPIVersion),
		client:  &http.Client{Timeout: time.Second * 60},
		poll:    utils.PollOptions{Interval: DefaultPollInterval},
		logger:  glog.NewDefault(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Address() string {
	return fmt.Sprintf("%s:%d", c.address, c.port)
}

// OpenSession opens a session and loads its negotiated configuration.
// A blank name is replaced by DefaultSessionNamePrefix plus a random UUID.
func (c *Client) OpenSession(ctx context.Context, name string) (*Session, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultSessionNamePrefix + "_" + uuid.New().String()
	}

	rep, err := c.doRequest(ctx, http.MethodPost, "/sessions", &openSessionRequest{
		SessionName: name,
		Properties:  map[string]string{},
	})
	if err != nil {
		return nil, err
	}
	sessionID := string(rep.GetStringBytes("sessionHandle"))
	if _, err = uuid.Parse(sessionID); err != nil {
		return nil, qerror.InvalidHandle.Format("session", sessionID)
	}

	properties, err := c.GetSessionConfig(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	c.logger.Info().Msg("open sql gateway session").String("session_id", sessionID).String("session_name", name).Fire()
	return &Session{
		ID:         sessionID,
		Name:       name,
		Address:    c.address,
		Port:       c.port,
		Properties: properties,
		Status:     SessionActive,
	}, nil
}

func (c *Client) GetSessionConfig(ctx context.Context, sessionID string) (map[string]string, error) {
	if err := checkHandle("session", sessionID); err != nil {
		return nil, err
	}
	rep, err := c.doRequest(ctx, http.MethodGet, sessionAPI(sessionID), nil)
	if err != nil {
		if isNotFound(err, sessionID) {
			return nil, qerror.SessionNotFound.Format(sessionID)
		}
		return nil, err
	}

	properties := map[string]string{}
	if obj := rep.GetObject("properties"); obj != nil {
		obj.Visit(func(key []byte, v *fastjson.Value) {
			if b := v.GetStringBytes(); b != nil {
				properties[string(key)] = string(b)
			} else {
				properties[string(key)] = v.String()
			}
		})
	}
	return properties, nil
}

// ConfigureSession runs a session-scoped statement such as USE CATALOG or SET.
// The gateway gives no ordering guarantee, so callers must wait for it to
// return before submitting statements that depend on it.
func (c *Client) ConfigureSession(ctx context.Context, sessionID string, statement string, timeout time.Duration) error {
	if err := checkHandle("session", sessionID); err != nil {
		return err
	}
	body := &configureSessionRequest{Statement: statement}
	if timeout > 0 {
		ms := timeout.Milliseconds()
		body.ExecutionTimeout = &ms
	}
	_, err := c.doRequest(ctx, http.MethodPost, sessionAPI(sessionID)+"/configure-session", body)
	if err != nil && isNotFound(err, sessionID) {
		return qerror.SessionNotFound.Format(sessionID)
	}
	return err
}

func (c *Client) CloseSession(ctx context.Context, sessionID string) CleanupResult {
	err := checkHandle("session", sessionID)
	if err == nil {
		_, err = c.doRequest(ctx, http.MethodDelete, sessionAPI(sessionID), nil)
	}
	if err != nil {
		c.logger.Warn().Msg("close sql gateway session failed").String("session_id", sessionID).String("reason", err.Error()).Fire()
	}
	return CleanupResult{Err: err}
}

// TriggerSessionHeartbeat is a liveness probe: any failure, including an
// expired session, reports SessionInactive.
func (c *Client) TriggerSessionHeartbeat(ctx context.Context, sessionID string) SessionStatus {
	err := checkHandle("session", sessionID)
	if err == nil {
		_, err = c.doRequest(ctx, http.MethodPost, sessionAPI(sessionID)+"/heartbeat", nil)
	}
	if err != nil {
		c.logger.Debug().Msg("sql gateway session heartbeat failed").String("session_id", sessionID).String("reason", err.Error()).Fire()
		return SessionInactive
	}
	return SessionActive
}

func (c *Client) GetInfo(ctx context.Context) (*Info, error) {
	rep, err := c.doRequest(ctx, http.MethodGet, "/info", nil)
	if err != nil {
		return nil, err
	}
	return &Info{
		ProductName: string(rep.GetStringBytes("productName")),
		Version:     string(rep.GetStringBytes("version")),
	}, nil
}

func checkHandle(kind string, handle string) error {
	if _, err := uuid.Parse(handle); err != nil {
		return qerror.InvalidHandle.Format(kind, handle)
	}
	return nil
}
