package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"instagraph/pkg/logger"
	"instagraph/pkg/session"
)

// Phase is where the client stands in the login flow
type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhaseTokenAcquired
	PhaseAuthenticated
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseTokenAcquired:
		return "token_acquired"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// loginResponse is the part of the ajax login answer that matters
type loginResponse struct {
	Authenticated *bool  `json:"authenticated"`
	User          bool   `json:"user"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// authenticator drives the browser-style login. Every step is attempted once.
type authenticator struct {
	net    *network
	store  *session.Store
	logger logger.Logger
	now    func() time.Time

	mu    sync.Mutex
	phase Phase
}

func (a *authenticator) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

func (a *authenticator) setPhase(p Phase) {
	a.mu.Lock()
	a.phase = p
	a.mu.Unlock()
}

// acquireToken visits the site root so the csrftoken cookie gets set
func (a *authenticator) acquireToken(ctx context.Context) bool {
	if _, err := a.net.get(ctx, MainURL, fetchOptions{capture: true}); err != nil {
		a.logger.WithError(err).Error("Failed to acquire csrf token")
		a.setPhase(PhaseFailed)
		return false
	}

	if _, err := a.store.Param(session.CSRFTokenKey); err != nil {
		a.logger.Error("Site root did not set a csrf token")
		a.setPhase(PhaseFailed)
		return false
	}

	a.logger.Debug("csrf token acquired")
	a.setPhase(PhaseTokenAcquired)
	return true
}

// login posts the credentials and reports whether Instagram accepted them
func (a *authenticator) login(ctx context.Context, username, password string) bool {
	if _, err := a.store.Param(session.CSRFTokenKey); err != nil {
		if !a.acquireToken(ctx) {
			return false
		}
	}

	body, err := a.net.post(ctx, LoginURL, a.loginForm(username, password), fetchOptions{
		xhr:     true,
		json:    true,
		capture: true,
	})
	if err != nil {
		a.fail(err.Error())
		return false
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		a.fail(err.Error())
		return false
	}
	if resp.Authenticated == nil {
		a.fail("response has no authenticated field")
		return false
	}
	if !*resp.Authenticated {
		reason := resp.Message
		if reason == "" && !resp.User {
			reason = "unknown user"
		}
		if reason == "" {
			reason = "wrong password"
		}
		a.fail(reason)
		return false
	}

	a.logger.InfoWithFields("Login successful", map[string]interface{}{
		"username": username,
	})
	a.setPhase(PhaseAuthenticated)
	return true
}

func (a *authenticator) fail(reason string) {
	a.logger.WarnWithFields("Login failed", map[string]interface{}{
		"reason": reason,
	})
	a.setPhase(PhaseFailed)
}

// loginForm builds the payload the web login form submits
func (a *authenticator) loginForm(username, password string) url.Values {
	form := url.Values{}
	form.Set("username", username)
	form.Set("enc_password", fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", a.now().Unix(), password))
	form.Set("queryParams", "{}")
	form.Set("optIntoOneTap", "false")
	return form
}

// isLoggedIn probes the site root. Any failure reads as logged out.
func (a *authenticator) isLoggedIn(ctx context.Context) bool {
	body, err := a.net.get(ctx, MainURL, fetchOptions{})
	if err != nil {
		a.logger.WithError(err).Warn("Login probe failed")
		return false
	}
	return loggedInFromHTML(body, a.logger)
}
