package chain

import "net/http"

// Response is the response value a chain builds up. It is a plain value
// rather than a live http.ResponseWriter so that a later step can replace
// or amend what an earlier step produced; the dispatcher renders the final
// Response onto the wire after the chain completes.
type Response struct {
	// StatusCode is the HTTP status. Zero is rendered as 200 OK.
	StatusCode int

	// Header holds the response headers. May be nil when no step set any.
	Header http.Header

	// Body is the response body.
	Body []byte
}

// NewResponse returns an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{StatusCode: status, Header: make(http.Header)}
}

// Text returns a response with the given status and a plain-text body.
func Text(status int, body string) *Response {
	r := NewResponse(status)
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	r.Body = []byte(body)
	return r
}

// SetHeader sets a header, allocating the map if needed, and returns the
// response for chaining.
func (r *Response) SetHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
	return r
}

// Render writes the response to w. Used by the dispatcher; exposed for
// test harnesses.
func (r *Response) Render(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}
