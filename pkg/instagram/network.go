package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"instagraph/pkg/errors"
	"instagraph/pkg/logger"
	"instagraph/pkg/session"
)

// DefaultUserAgent is the browser the requests present themselves as
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 5.1; rv:52.0) Gecko/20100101 Firefox/52.0"

// fetchOptions selects how a single call is made and interpreted
type fetchOptions struct {
	// xhr adds the ajax headers, including the csrf token from the session
	xhr bool
	// json requires the body to be a JSON document
	json bool
	// capture stores cookies set by the response in the session
	capture bool
}

// network ties a Transport to one session store
type network struct {
	transport Transport
	store     *session.Store
	userAgent string
	logger    logger.Logger
}

func (n *network) get(ctx context.Context, rawURL string, opts fetchOptions) ([]byte, error) {
	return n.fetch(ctx, http.MethodGet, rawURL, nil, opts)
}

func (n *network) post(ctx context.Context, rawURL string, form url.Values, opts fetchOptions) ([]byte, error) {
	return n.fetch(ctx, http.MethodPost, rawURL, form, opts)
}

// fetch sends one request carrying the session cookies and returns the body
func (n *network) fetch(ctx context.Context, method, rawURL string, form url.Values, opts fetchOptions) ([]byte, error) {
	resp, err := n.transport.Do(ctx, &Request{
		Method:  method,
		URL:     rawURL,
		Form:    form,
		Header:  n.headers(opts.xhr),
		Cookies: n.store.RequestCookies(),
	})
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeRequest) {
			return nil, err
		}
		return nil, errors.Request(0, err, "%s %s failed", method, rawURL)
	}

	if opts.capture && len(resp.Cookies) > 0 {
		n.capture(resp.Cookies)
	}

	if opts.json && !json.Valid(resp.Body) {
		return nil, errors.Request(resp.StatusCode, nil, "%s %s: response is not JSON (%s)", method, rawURL, preview(resp.Body))
	}

	return resp.Body, nil
}

// headers builds the browser-like header set for one request
func (n *network) headers(xhr bool) http.Header {
	h := http.Header{}
	h.Set("User-Agent", n.userAgent)
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", "en-US")
	h.Set("Accept-Encoding", "gzip, deflate")
	h.Set("Connection", "close")
	h.Set("Referer", BaseURL)

	if xhr {
		if token, err := n.store.Param(session.CSRFTokenKey); err == nil {
			h.Set("X-CSRFToken", token)
		} else {
			n.logger.Debug("no csrf token available for ajax request")
		}
		h.Set("X-Requested-With", "XMLHttpRequest")
		h.Set("Authority", "www.instagram.com")
		h.Set("Origin", BaseURL)
		h.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return h
}

// capture merges response cookies over the current ones. A complete set
// becomes the session; anything less is kept as handshake cookies.
func (n *network) capture(set map[string]string) {
	merged := n.store.RequestCookies()
	for k, v := range set {
		merged[k] = v
	}

	if err := n.store.Set(merged); err != nil {
		n.store.Stage(merged)
		n.logger.DebugWithFields("staged handshake cookies", map[string]interface{}{
			"cookies": len(merged),
		})
		return
	}
	n.logger.Debug("session cookies updated")
}

func preview(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
