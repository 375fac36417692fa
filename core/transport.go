package core

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Transport is an http.RoundTripper that answers requests for the
// interceptor's host locally and hands all others to Next.
type Transport struct {
	interceptor *Interceptor
	Next        http.RoundTripper
}

// NewTransport wraps next, which defaults to http.DefaultTransport.
func NewTransport(interceptor *Interceptor, next http.RoundTripper) *Transport {
	return &Transport{
		interceptor: interceptor,
		Next:        next,
	}
}

func (t *Transport) next() http.RoundTripper {
	if t.Next == nil {
		return http.DefaultTransport
	}

	return t.Next
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ex := &roundTripExchange{req: req, next: t.next()}

	if err := t.interceptor.Handle(ex); err != nil {
		return nil, err
	}

	return ex.resp, nil
}

type roundTripExchange struct {
	req  *http.Request
	next http.RoundTripper
	resp *http.Response
}

func (e *roundTripExchange) URL() string {
	return e.req.URL.String()
}

func (e *roundTripExchange) Method() string {
	return e.req.Method
}

func (e *roundTripExchange) Body() ([]byte, error) {
	if e.req.Body == nil {
		return []byte{}, nil
	}
	defer e.req.Body.Close()

	return io.ReadAll(e.req.Body)
}

// Fulfill answers locally, so the request body is closed here as the
// RoundTripper contract asks. Passthrough leaves that to next.
func (e *roundTripExchange) Fulfill(reply *Reply) error {
	if e.req.Body != nil {
		_ = e.req.Body.Close()
	}

	e.resp = &http.Response{
		Status:        fmt.Sprintf("%d %s", reply.Status, http.StatusText(reply.Status)),
		StatusCode:    reply.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        reply.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(reply.Body)),
		ContentLength: int64(len(reply.Body)),
		Request:       e.req,
	}

	return nil
}

func (e *roundTripExchange) Passthrough() error {
	resp, err := e.next.RoundTrip(e.req)
	if err != nil {
		return err
	}

	e.resp = resp
	return nil
}
