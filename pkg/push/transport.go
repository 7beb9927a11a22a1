package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Transport performs the HTTP exchange with the gateway.
type Transport interface {
	Post(url string) RequestBuilder
	Send(ctx context.Context, req *Request) (Response, error)
}

// RequestBuilder collects the parts of one outbound request.
type RequestBuilder interface {
	Header(name, value string) RequestBuilder
	Body(payload []byte) RequestBuilder
	Build() (*Request, error)
}

// Response is the gateway's answer to one request.
type Response interface {
	StatusCode() int
	Bytes() ([]byte, error)
}

// Request is a built, validated outbound request.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

var ErrEmptyBody = errors.New("request body is empty")

// NewRequestBuilder returns the default RequestBuilder, shared by transports
// that have no special needs.
func NewRequestBuilder(method, rawURL string) RequestBuilder {
	return &requestBuilder{
		method: method,
		rawURL: rawURL,
		header: make(http.Header),
	}
}

type requestBuilder struct {
	method string
	rawURL string
	header http.Header
	body   []byte
}

func (b *requestBuilder) Header(name, value string) RequestBuilder {
	b.header.Set(name, value)
	return b
}

func (b *requestBuilder) Body(payload []byte) RequestBuilder {
	b.body = payload
	return b
}

func (b *requestBuilder) Build() (*Request, error) {
	u, err := url.Parse(b.rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if len(b.body) == 0 {
		return nil, ErrEmptyBody
	}

	return &Request{
		Method: b.method,
		URL:    u,
		Header: b.header.Clone(),
		Body:   b.body,
	}, nil
}
