// Package webtest issues in-process requests against an http.Handler
// without standing up a listener. It exists for testing trellis apps but
// accepts any handler.
package webtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
)

// Client drives a handler with synthetic requests. The zero value is not
// usable; build one with New.
type Client struct {
	handler http.Handler
	headers http.Header
}

// New wraps a handler, typically a *server.App, for in-process testing.
func New(handler http.Handler) *Client {
	return &Client{handler: handler}
}

// WithHeaders returns a Client that applies the headers to every request
// it issues. The receiver is unchanged.
func (c *Client) WithHeaders(headers http.Header) *Client {
	merged := c.headers.Clone()
	if merged == nil {
		merged = http.Header{}
	}
	for key, values := range headers {
		for _, value := range values {
			merged.Add(key, value)
		}
	}
	return &Client{handler: c.handler, headers: merged}
}

// Do dispatches an arbitrary request and returns the recorded response.
func (c *Client) Do(req *http.Request) *httptest.ResponseRecorder {
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	return rr
}

func (c *Client) request(method, path string, body io.Reader) *httptest.ResponseRecorder {
	return c.Do(httptest.NewRequest(method, path, body))
}

// Get issues a GET request against the path.
func (c *Client) Get(path string) *httptest.ResponseRecorder {
	return c.request(http.MethodGet, path, nil)
}

// Post issues a POST request with the given body.
func (c *Client) Post(path string, body io.Reader) *httptest.ResponseRecorder {
	return c.request(http.MethodPost, path, body)
}

// PostString issues a POST request with a string body.
func (c *Client) PostString(path, body string) *httptest.ResponseRecorder {
	return c.request(http.MethodPost, path, strings.NewReader(body))
}

// Put issues a PUT request with the given body.
func (c *Client) Put(path string, body io.Reader) *httptest.ResponseRecorder {
	return c.request(http.MethodPut, path, body)
}

// Patch issues a PATCH request with the given body.
func (c *Client) Patch(path string, body io.Reader) *httptest.ResponseRecorder {
	return c.request(http.MethodPatch, path, body)
}

// Delete issues a DELETE request against the path.
func (c *Client) Delete(path string) *httptest.ResponseRecorder {
	return c.request(http.MethodDelete, path, nil)
}

// Head issues a HEAD request against the path.
func (c *Client) Head(path string) *httptest.ResponseRecorder {
	return c.request(http.MethodHead, path, nil)
}

// Options issues an OPTIONS request against the path.
func (c *Client) Options(path string) *httptest.ResponseRecorder {
	return c.request(http.MethodOptions, path, nil)
}

// Trace issues a TRACE request against the path.
func (c *Client) Trace(path string) *httptest.ResponseRecorder {
	return c.request(http.MethodTrace, path, nil)
}
