package instagram

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"instagraph/pkg/errors"
	"instagraph/pkg/logger"
	"instagraph/pkg/ratelimit"
)

// Request is a single call across the transport boundary
type Request struct {
	Method  string
	URL     string
	Form    url.Values
	Header  http.Header
	Cookies map[string]string
}

// Response is what the transport hands back to the client
type Response struct {
	StatusCode int
	Body       []byte
	// Cookies set by the server while answering, including redirects
	Cookies map[string]string
}

// Transport sends requests to Instagram
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPTransport is the net/http Transport
type HTTPTransport struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewHTTPTransport creates a transport around httpClient.
// A nil httpClient gets a client with the given timeout; a nil limiter disables pacing.
// Each Do runs on a copy of httpClient with its own cookie jar, so a Jar set
// on httpClient is neither read nor written; cookies live in the session store.
func NewHTTPTransport(httpClient *http.Client, timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *HTTPTransport {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &HTTPTransport{
		httpClient: httpClient,
		limiter:    limiter,
		logger:     log,
	}
}

// NewProxyHTTPClient returns an http.Client that routes through proxyURL
func NewProxyHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfiguration, err, "invalid proxy %q", proxyURL)
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = http.ProxyURL(u)

	return &http.Client{Transport: tr, Timeout: timeout}, nil
}

// Do performs the request once. Any status outside 2xx is an error.
func (t *HTTPTransport) Do(ctx context.Context, r *Request) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, errors.Request(0, err, "rate limiter wait")
		}
	}

	req, err := t.newRequest(ctx, r)
	if err != nil {
		return nil, errors.Request(0, err, "failed to create request")
	}

	// a fresh jar per call collects cookies set anywhere along the redirect chain
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Request(0, err, "failed to create cookie jar")
	}
	client := *t.httpClient
	client.Jar = jar

	start := time.Now()
	t.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := client.Do(req)
	duration := time.Since(start)
	if err != nil {
		t.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Request(0, err, "network error")
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, errors.Request(resp.StatusCode, err, "failed to read response body")
	}

	t.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
		"bytes":    len(body),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Request(resp.StatusCode, nil, "%s", statusMessage(resp.StatusCode))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Cookies:    responseCookies(jar, req.URL, resp),
	}, nil
}

func (t *HTTPTransport) newRequest(ctx context.Context, r *Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(r.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, err
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for name, value := range r.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	return req, nil
}

// responseCookies merges what the jar holds for the final URL with the
// final response's own Set-Cookie headers. Deleted cookies are skipped.
func responseCookies(jar http.CookieJar, reqURL *url.URL, resp *http.Response) map[string]string {
	final := reqURL
	if resp.Request != nil {
		final = resp.Request.URL
	}

	cookies := make(map[string]string)
	for _, c := range jar.Cookies(final) {
		cookies[c.Name] = c.Value
	}
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(cookies, c.Name)
			continue
		}
		cookies[c.Name] = c.Value
	}
	return cookies
}

// readBody undoes the content encoding. net/http only does this itself when
// it chose Accept-Encoding, and requests here set their own.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	return io.ReadAll(r)
}

// statusMessage describes an unsuccessful status the way Instagram usually means it
func statusMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "bad request (often a missing or stale csrf token)"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "authentication required"
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return "server error"
	default:
		return fmt.Sprintf("unexpected status code: %d", code)
	}
}
