package mobpush

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/eachchat/mob-push/pkg/push"
	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
)

var _ push.Transport = (*HTTPTransport)(nil)

// HTTPTransport sends requests through go-kit http client endpoints, one per
// target url, sharing a single http.Client and its connection pool.
type HTTPTransport struct {
	client *http.Client

	locker    sync.Mutex
	endpoints map[string]endpoint.Endpoint
}

// NewHTTPTransport returns a transport using client, or a client with
// timeout if client is nil.
func NewHTTPTransport(client *http.Client, timeout time.Duration) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPTransport{
		client:    client,
		endpoints: make(map[string]endpoint.Endpoint),
	}
}

func (t *HTTPTransport) Post(url string) push.RequestBuilder {
	return push.NewRequestBuilder(http.MethodPost, url)
}

func (t *HTTPTransport) Send(ctx context.Context, req *push.Request) (push.Response, error) {
	resp, err := t.endpoint(req)(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.(*httpResponse), nil
}

func (t *HTTPTransport) endpoint(req *push.Request) endpoint.Endpoint {
	key := req.Method + " " + req.URL.String()

	t.locker.Lock()
	defer t.locker.Unlock()

	if ep, ok := t.endpoints[key]; ok {
		return ep
	}
	ep := httptransport.NewClient(req.Method, req.URL, encodeRequest, decodeResponseBody,
		httptransport.SetClient(t.client),
	).Endpoint()
	t.endpoints[key] = ep
	return ep
}

func encodeRequest(_ context.Context, r *http.Request, request interface{}) error {
	req, ok := request.(*push.Request)
	if !ok {
		return fmt.Errorf("unexpected request type %T", request)
	}

	for name, values := range req.Header {
		r.Header[name] = values
	}
	r.Body = io.NopCloser(bytes.NewReader(req.Body))
	r.ContentLength = int64(len(req.Body))
	return nil
}

func decodeResponseBody(_ context.Context, resp *http.Response) (interface{}, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed read response body: %w", err)
	}
	return &httpResponse{status: resp.StatusCode, body: body}, nil
}

type httpResponse struct {
	status int
	body   []byte
}

func (r *httpResponse) StatusCode() int { return r.status }

func (r *httpResponse) Bytes() ([]byte, error) { return r.body, nil }
