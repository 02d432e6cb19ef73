package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"instagraph/pkg/errors"
	"instagraph/pkg/feed"
	"instagraph/pkg/logger"
	"instagraph/pkg/ratelimit"
	"instagraph/pkg/session"
)

// Credentials selects how the client authenticates. Exactly one of Cookie,
// SessionString or Username+Password must be set.
type Credentials struct {
	// Cookie is a browser cookie holding at least csrftoken and sessionid
	Cookie map[string]string

	// SessionString is the output of a previous ExportSession
	SessionString string

	// Username and Password log in through the web login form
	Username string
	Password string
}

func (c Credentials) hasLogin() bool {
	return c.Username != "" || c.Password != ""
}

// validate enforces the one-source rule before anything touches the network
func (c Credentials) validate() error {
	sources := 0
	if c.Cookie != nil {
		sources++
	}
	if c.SessionString != "" {
		sources++
	}
	if c.hasLogin() {
		sources++
	}

	switch {
	case sources == 0:
		return errors.Configuration("at least one form of authentication should be provided: username/password, session or cookie")
	case sources > 1:
		return errors.Configuration("only one form of authentication may be provided: username/password, session or cookie")
	case c.hasLogin() && (c.Username == "" || c.Password == ""):
		return errors.Configuration("username and password must both be provided")
	}
	return nil
}

// Client talks to Instagram's web API on behalf of one session
type Client struct {
	store  *session.Store
	net    *network
	auth   *authenticator
	logger logger.Logger
	creds  Credentials
}

type options struct {
	transport  Transport
	httpClient *http.Client
	timeout    time.Duration
	limiter    ratelimit.Limiter
	logger     logger.Logger
	userAgent  string
	now        func() time.Time
}

// Option customizes a Client
type Option func(*options)

// WithTransport replaces the HTTP transport entirely
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithHTTPClient sets the http.Client used by the default transport.
// Its Jar is ignored: requests run with a per-call jar (see NewHTTPTransport).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the request timeout of the default transport
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLimiter paces requests made by the default transport
func WithLimiter(l ratelimit.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithLogger sets the logger; see logger.NewSinkLogger for a plain line sink
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithUserAgent overrides the browser user agent
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithClock sets the time source used for the login timestamp
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a client from creds. A cookie or session string is trusted as
// is; a username and password are used to log in right away. A failed login
// does not fail construction: check Phase or call Login again.
func New(ctx context.Context, creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}

	o := options{
		timeout:   30 * time.Second,
		userAgent: DefaultUserAgent,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewSinkLogger(logger.PrintSink)
	}
	if o.transport == nil {
		o.transport = NewHTTPTransport(o.httpClient, o.timeout, o.limiter, o.logger)
	}

	store := session.NewStore()
	net := &network{
		transport: o.transport,
		store:     store,
		userAgent: o.userAgent,
		logger:    o.logger,
	}
	c := &Client{
		store:  store,
		net:    net,
		logger: o.logger,
		creds:  creds,
		auth: &authenticator{
			net:    net,
			store:  store,
			logger: o.logger,
			now:    o.now,
		},
	}

	switch {
	case creds.Cookie != nil:
		if err := store.Set(creds.Cookie); err != nil {
			return nil, err
		}
		c.auth.setPhase(PhaseAuthenticated)
	case creds.SessionString != "":
		if err := store.Import(creds.SessionString); err != nil {
			return nil, err
		}
		c.auth.setPhase(PhaseAuthenticated)
	default:
		c.auth.login(ctx, creds.Username, creds.Password)
	}

	return c, nil
}

// Phase reports the authentication phase
func (c *Client) Phase() Phase {
	return c.auth.Phase()
}

// Login runs the username/password login again. It returns false when the
// client was built from a cookie or session string.
func (c *Client) Login(ctx context.Context) bool {
	if !c.creds.hasLogin() {
		c.logger.Warn("Login needs a username and password")
		return false
	}
	return c.auth.login(ctx, c.creds.Username, c.creds.Password)
}

// IsLoggedIn asks the site root whether the session is live
func (c *Client) IsLoggedIn(ctx context.Context) bool {
	return c.auth.isLoggedIn(ctx)
}

// Session exposes the cookie store
func (c *Client) Session() *session.Store {
	return c.store
}

// ExportSession encodes the session so it can be passed back as Credentials.SessionString
func (c *Client) ExportSession() (string, error) {
	return c.store.Export()
}

// TimelineFeed returns the first timeline page as decoded JSON, or an empty map on failure
func (c *Client) TimelineFeed(ctx context.Context) map[string]interface{} {
	return c.loadFeed(ctx, TimelineURL(""))
}

// UserFeed returns the first media page of userID as decoded JSON, or an empty map on failure
func (c *Client) UserFeed(ctx context.Context, userID string) map[string]interface{} {
	return c.loadFeed(ctx, UserFeedURL(userID, ""))
}

// PostsFromTimeline collects at least count timeline posts, fewer if the timeline runs out
func (c *Client) PostsFromTimeline(ctx context.Context, count int) []Post {
	fetch := func(ctx context.Context, cursor string) ([]byte, error) {
		return c.net.get(ctx, TimelineURL(cursor), fetchOptions{json: true})
	}
	return feed.Collect[Post](ctx, count, fetch, extractTimeline, c.logger.WithField("feed", "timeline"))
}

// PostsFromUserID collects at least count posts of userID, fewer if the account runs out
func (c *Client) PostsFromUserID(ctx context.Context, userID string, count int) []Post {
	fetch := func(ctx context.Context, cursor string) ([]byte, error) {
		return c.net.get(ctx, UserFeedURL(userID, cursor), fetchOptions{json: true})
	}
	return feed.Collect[Post](ctx, count, fetch, extractUserFeed, c.logger.WithField("user_id", userID))
}

// PostsFromUser resolves username and collects at least count of its posts.
// Resolution failures are returned.
func (c *Client) PostsFromUser(ctx context.Context, username string, count int) ([]Post, error) {
	userID, err := c.ResolveUserID(ctx, username)
	if err != nil {
		return nil, err
	}
	return c.PostsFromUserID(ctx, userID, count), nil
}

// ResolveUserID reads the numeric account id from the profile page of username
func (c *Client) ResolveUserID(ctx context.Context, username string) (string, error) {
	body, err := c.net.get(ctx, ProfileURL(username), fetchOptions{})
	if err != nil {
		return "", err
	}

	id, err := userIDFromProfile(body)
	if err != nil {
		c.logger.WithError(err).WarnWithFields("Could not resolve user id", map[string]interface{}{
			"username": username,
		})
		return "", err
	}

	c.logger.DebugWithFields("resolved user id", map[string]interface{}{
		"username": username,
		"user_id":  id,
	})
	return id, nil
}

func (c *Client) loadFeed(ctx context.Context, rawURL string) map[string]interface{} {
	body, err := c.net.get(ctx, rawURL, fetchOptions{json: true})
	if err != nil {
		c.logger.WithError(err).Error("Feed request failed")
		return map[string]interface{}{}
	}

	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil || out == nil {
		c.logger.Error("Feed response is not a JSON object")
		return map[string]interface{}{}
	}
	return out
}
