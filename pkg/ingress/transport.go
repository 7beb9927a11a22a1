package ingress

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	httptransport "github.com/go-kit/kit/transport/http"
)

// httpError carries the status and client-facing message of a failed request.
type httpError struct {
	code    int
	message string
	err     error
}

func (e *httpError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.message + ": " + e.err.Error()
}

func (e *httpError) Unwrap() error { return e.err }

func (e *httpError) StatusCode() int { return e.code }

func badRequest(err error) error {
	return &httpError{code: http.StatusBadRequest, message: err.Error()}
}

func storeFailure(err error) error {
	return &httpError{code: http.StatusInternalServerError, message: "subscription store failed", err: err}
}

func (s *Service) readBody(r *http.Request) ([]byte, error) {
	body, err := readLimited(r, s.cfg.MaxBodySize)
	if errors.Is(err, errBodyTooLarge) {
		return nil, &httpError{code: http.StatusRequestEntityTooLarge, message: "body too large"}
	}
	if err != nil {
		return nil, &httpError{code: http.StatusBadRequest, message: "fail read body", err: err}
	}
	if len(body) == 0 {
		return nil, &httpError{code: http.StatusBadRequest, message: "body is missing"}
	}
	return body, nil
}

func (s *Service) decodePushRequest(_ context.Context, r *http.Request) (interface{}, error) {
	body, err := s.readBody(r)
	if err != nil {
		return nil, err
	}

	req := new(pushRequest)
	if err := json.Unmarshal(body, req); err != nil {
		return nil, &httpError{code: http.StatusBadRequest, message: "fail unmarshal request body", err: err}
	}
	return req, nil
}

func (s *Service) decodeSubscriptionRequest(_ context.Context, r *http.Request) (interface{}, error) {
	body, err := s.readBody(r)
	if err != nil {
		return nil, err
	}

	req := new(subscriptionRequest)
	if err := json.Unmarshal(body, req); err != nil {
		return nil, &httpError{code: http.StatusBadRequest, message: "fail unmarshal request body", err: err}
	}
	if err := req.validate(); err != nil {
		return nil, badRequest(err)
	}
	return req, nil
}

func decodeSubscriptionQuery(_ context.Context, r *http.Request) (interface{}, error) {
	q := r.URL.Query()
	req := &subscriptionRequest{Resource: q.Get("resource"), Rid: q.Get("rid")}
	if err := req.validate(); err != nil {
		return nil, badRequest(err)
	}
	return req, nil
}

func encodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	code := http.StatusOK
	if sc, ok := response.(httptransport.StatusCoder); ok {
		code = sc.StatusCode()
	}
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(response)
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	var he *httpError
	switch {
	case errors.As(err, &he):
		errorW(w, he.code, he.message)
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrClosed):
		errorW(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		errorW(w, http.StatusServiceUnavailable, "request canceled")
	default:
		errorW(w, http.StatusInternalServerError, "internal error")
	}
}

func errorW(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

var errBodyTooLarge = errors.New("request body too large")

// readLimited reads at most maxBodySize bytes of the body, a negative
// maxBodySize reads it whole. A larger body is errBodyTooLarge.
func readLimited(req *http.Request, maxBodySize int64) ([]byte, error) {
	if req.Body == nil || req.ContentLength == 0 {
		return nil, nil
	}
	if maxBodySize < 0 {
		return io.ReadAll(req.Body)
	}

	// read one byte past the limit to tell a full body from a truncated one
	body := make([]byte, maxBodySize+1)
	n, err := io.ReadFull(req.Body, body)
	switch {
	case err == nil:
		return nil, errBodyTooLarge
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return body[:n], nil
	default:
		return nil, err
	}
}
