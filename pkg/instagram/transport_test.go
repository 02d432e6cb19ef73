package instagram

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"instagraph/pkg/errors"
	"instagraph/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newMockHTTPClient(handler func(req *http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{
		Transport: &mockRoundTripper{handler: handler},
		Timeout:   30 * time.Second,
	}
}

func newResponse(req *http.Request, statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
		Request:    req,
	}
}

type countingLimiter struct {
	waits int
	err   error
}

func (l *countingLimiter) Allow() bool { return true }

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.waits++
	return l.err
}

func TestHTTPTransportSendsRequest(t *testing.T) {
	var got *http.Request
	var gotBody string
	client := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		got = req
		if req.Body != nil {
			b, _ := io.ReadAll(req.Body)
			gotBody = string(b)
		}
		return newResponse(req, http.StatusOK, `{"ok":true}`), nil
	})
	tr := NewHTTPTransport(client, 0, nil, logger.NewTestLogger())

	form := url.Values{}
	form.Set("username", "someone")
	header := http.Header{}
	header.Set("User-Agent", DefaultUserAgent)

	resp, err := tr.Do(context.Background(), &Request{
		Method:  http.MethodPost,
		URL:     LoginURL,
		Form:    form,
		Header:  header,
		Cookies: map[string]string{"csrftoken": "tok"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, DefaultUserAgent, got.Header.Get("User-Agent"))
	assert.Equal(t, "username=someone", gotBody)

	c, err := got.Cookie("csrftoken")
	require.NoError(t, err)
	assert.Equal(t, "tok", c.Value)
}

func TestHTTPTransportDefaultsToGet(t *testing.T) {
	var method string
	client := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		method = req.Method
		return newResponse(req, http.StatusOK, ""), nil
	})

	_, err := NewHTTPTransport(client, 0, nil, nil).Do(context.Background(), &Request{URL: MainURL})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, method)
}

func TestHTTPTransportStatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{http.StatusBadRequest, "csrf"},
		{http.StatusForbidden, "authentication required"},
		{http.StatusNotFound, "resource not found"},
		{http.StatusTooManyRequests, "rate limit exceeded"},
		{http.StatusBadGateway, "server error"},
		{http.StatusTeapot, "unexpected status code: 418"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
				return newResponse(req, tt.status, `{"status":"fail"}`), nil
			})

			resp, err := NewHTTPTransport(client, 0, nil, nil).Do(context.Background(), &Request{URL: MainURL})

			assert.Nil(t, resp)
			require.Error(t, err)

			var igErr *errors.Error
			require.ErrorAs(t, err, &igErr)
			assert.Equal(t, errors.ErrorTypeRequest, igErr.Type)
			assert.Equal(t, tt.status, igErr.Code)
			assert.Contains(t, igErr.Message, tt.message)
		})
	}
}

func TestHTTPTransportNetworkError(t *testing.T) {
	log := logger.NewTestLogger()
	client := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	})

	_, err := NewHTTPTransport(client, 0, nil, log).Do(context.Background(), &Request{URL: MainURL})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeRequest))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, log.HasMessage("HTTP request failed"))
}

func TestHTTPTransportCapturesCookiesAcrossRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "anon", Path: "/"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("csrftoken")
		if assert.NoError(t, err, "cookie follows the redirect") {
			assert.Equal(t, "anon", c.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: "mid", Value: "m1", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "stale", Value: "", MaxAge: -1})
		w.Write([]byte("<html></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tr := NewHTTPTransport(nil, 5*time.Second, nil, nil)
	resp, err := tr.Do(context.Background(), &Request{
		URL:     server.URL + "/",
		Cookies: map[string]string{"stale": "old"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"csrftoken": "anon", "mid": "m1"}, resp.Cookies)
}

func TestHTTPTransportIgnoresCallerJar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie("leftover")
		assert.ErrorIs(t, err, http.ErrNoCookie, "caller jar cookies are not sent")
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "anon", Path: "/"})
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	callerJar, err := cookiejar.New(nil)
	require.NoError(t, err)
	callerJar.SetCookies(u, []*http.Cookie{{Name: "leftover", Value: "x", Path: "/"}})
	httpClient := &http.Client{Jar: callerJar, Timeout: 5 * time.Second}

	resp, err := NewHTTPTransport(httpClient, 0, nil, nil).Do(context.Background(), &Request{URL: server.URL})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"csrftoken": "anon"}, resp.Cookies)
	assert.Same(t, callerJar, httpClient.Jar)
	cookies := callerJar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "leftover", cookies[0].Name)
}

func TestHTTPTransportDecodesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip, deflate", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte(`{"data":{}}`))
		gz.Close()
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Accept-Encoding", "gzip, deflate")

	resp, err := NewHTTPTransport(nil, 5*time.Second, nil, nil).Do(context.Background(), &Request{
		URL:    server.URL,
		Header: header,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"data":{}}`, string(resp.Body))
}

func TestHTTPTransportWaitsForLimiter(t *testing.T) {
	client := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, ""), nil
	})

	t.Run("paced", func(t *testing.T) {
		limiter := &countingLimiter{}
		tr := NewHTTPTransport(client, 0, limiter, nil)

		for i := 0; i < 3; i++ {
			_, err := tr.Do(context.Background(), &Request{URL: MainURL})
			require.NoError(t, err)
		}
		assert.Equal(t, 3, limiter.waits)
	})

	t.Run("cancelled wait", func(t *testing.T) {
		limiter := &countingLimiter{err: context.Canceled}
		tr := NewHTTPTransport(client, 0, limiter, nil)

		_, err := tr.Do(context.Background(), &Request{URL: MainURL})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPTransportThroughClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.Equal(t, "tok", r.Header.Get("X-CSRFToken"))
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c, err := New(context.Background(), Credentials{Cookie: validCookie},
		WithTimeout(5*time.Second), WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	_, err = c.net.post(context.Background(), server.URL, url.Values{}, fetchOptions{xhr: true, json: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response is not JSON (not json)")
}

func TestNewProxyHTTPClient(t *testing.T) {
	client, err := NewProxyHTTPClient("http://127.0.0.1:3128", time.Second)
	require.NoError(t, err)

	tr, ok := client.Transport.(*http.Transport)
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodGet, MainURL, nil)
	proxy, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3128", proxy.Host)

	_, err = NewProxyHTTPClient("://bad", time.Second)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
}
