package mobpush

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eachchat/mob-push/pkg/metrics"
	"github.com/eachchat/mob-push/pkg/push"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeStore struct {
	subscribers map[string][]push.AudienceMember
	err         error
}

func (s *fakeStore) FetchAllSubscribers(_ context.Context, resource string) ([]push.AudienceMember, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.subscribers[resource], nil
}

type sent struct {
	at      time.Time
	request *push.Request
}

type fakeResponse struct {
	status int
	body   string
}

func (r fakeResponse) StatusCode() int         { return r.status }
func (r fakeResponse) Bytes() ([]byte, error) { return []byte(r.body), nil }

type fakeTransport struct {
	mu      sync.Mutex
	sent    []sent
	respond func(n int) (push.Response, error)
}

func (t *fakeTransport) Post(url string) push.RequestBuilder {
	return push.NewRequestBuilder("POST", url)
}

func (t *fakeTransport) Send(_ context.Context, req *push.Request) (push.Response, error) {
	t.mu.Lock()
	t.sent = append(t.sent, sent{at: time.Now(), request: req})
	n := len(t.sent)
	t.mu.Unlock()

	if t.respond != nil {
		return t.respond(n)
	}
	return fakeResponse{status: 200, body: `{"status":200,"res":{"batchId":"b"}}`}, nil
}

func (t *fakeTransport) requests() []sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sent(nil), t.sent...)
}

func newTestPusher(t *testing.T, cfg *Config, store push.SubscriptionStore[string], tr push.Transport, opts ...Option) (
	*Pusher[string], chan<- push.PushData[string], <-chan *push.PushError,
) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}
	opts = append([]Option{WithLimiter(rate.NewLimiter(rate.Inf, 1))}, opts...)
	return New[string](cfg, store, tr, 8, opts...)
}

func runPusher(p *Pusher[string]) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- p.Run(context.Background())
	}()
	return done
}

func rids(t *testing.T, req *push.Request) []string {
	t.Helper()

	var body struct {
		PushTarget struct {
			Rids []string `json:"rids"`
		} `json:"pushTarget"`
	}
	require.NoError(t, json.Unmarshal(req.Body, &body))
	return body.PushTarget.Rids
}

func TestPusherSplitsAudience(t *testing.T) {
	t.Parallel()

	store := &fakeStore{subscribers: map[string][]push.AudienceMember{"room": members(2500)}}
	tr := &fakeTransport{}
	p, income, errs := newTestPusher(t, nil, store, tr)
	done := runPusher(p)

	income <- push.NewMessage("room", "hello")
	close(income)
	require.NoError(t, <-done)

	_, open := <-errs
	assert.False(t, open, "error channel is closed after Run")

	reqs := tr.requests()
	require.Len(t, reqs, 3)

	next := 0
	for i, want := range []int{1000, 1000, 500} {
		got := rids(t, reqs[i].request)
		require.Len(t, got, want)
		assert.Equal(t, members(2500)[next].MobID(), got[0])
		next += want
	}

	for _, r := range reqs {
		assert.Equal(t, "appkey", r.request.Header.Get("key"))
		assert.Equal(t, Sign(r.request.Body, "secret"), r.request.Header.Get("sign"))
		assert.Equal(t, "application/json", r.request.Header.Get("content-type"))
		assert.Equal(t, DefaultEndpoint, r.request.URL.String())
	}
}

func TestPusherPacesBatches(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.BatchInterval = 200 * time.Millisecond

	store := &fakeStore{subscribers: map[string][]push.AudienceMember{"room": members(2500)}}
	tr := &fakeTransport{}
	p, income, _ := New[string](cfg, store, tr, 8)
	done := runPusher(p)

	income <- push.NewMessage("room", "hello")
	close(income)
	require.NoError(t, <-done)

	reqs := tr.requests()
	require.Len(t, reqs, 3)
	for i := 1; i < len(reqs); i++ {
		gap := reqs[i].at.Sub(reqs[i-1].at)
		assert.GreaterOrEqual(t, gap, 180*time.Millisecond, "gap between batch %d and %d", i-1, i)
	}
}

func TestPusherGatewayRejection(t *testing.T) {
	t.Parallel()

	store := &fakeStore{subscribers: map[string][]push.AudienceMember{"room": members(2500)}}
	tr := &fakeTransport{respond: func(int) (push.Response, error) {
		return fakeResponse{status: 200, body: `{"status":400,"error":"bad key"}`}, nil
	}}
	p, income, errs := newTestPusher(t, nil, store, tr)
	done := runPusher(p)

	income <- push.NewMessage("room", "hello")
	close(income)
	require.NoError(t, <-done)

	var got []*push.PushError
	for perr := range errs {
		got = append(got, perr)
	}
	require.Len(t, got, 1)
	assert.Equal(t, push.KindGateway, got[0].Kind)
	assert.Equal(t, 400, got[0].Status)
	assert.Equal(t, "bad key", got[0].Message)
	assert.Equal(t, "room", got[0].Resource)
	assert.NotEmpty(t, got[0].PushID)

	assert.Len(t, tr.requests(), 1, "later batches of a failed item are abandoned")
}

func TestPusherStoreFailure(t *testing.T) {
	t.Parallel()

	errDown := errors.New("store down")
	tr := &fakeTransport{}
	p, income, errs := newTestPusher(t, nil, &fakeStore{err: errDown}, tr)
	done := runPusher(p)

	income <- push.NewMessage("room", "hello")
	close(income)
	require.NoError(t, <-done)

	perr := <-errs
	require.NotNil(t, perr)
	assert.Equal(t, push.KindStore, perr.Kind)
	assert.ErrorIs(t, perr, errDown)
	assert.Empty(t, tr.requests())
}

func TestPusherTransportFailure(t *testing.T) {
	t.Parallel()

	errConn := errors.New("connection refused")
	store := &fakeStore{subscribers: map[string][]push.AudienceMember{"room": members(10)}}
	tr := &fakeTransport{respond: func(int) (push.Response, error) { return nil, errConn }}
	p, income, errs := newTestPusher(t, nil, store, tr)
	done := runPusher(p)

	income <- push.NewMessage("room", "hello")
	close(income)
	require.NoError(t, <-done)

	perr := <-errs
	require.NotNil(t, perr)
	assert.Equal(t, push.KindTransport, perr.Kind)
	assert.ErrorIs(t, perr, errConn)
}

func TestPusherBadEndpoint(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Endpoint = "ftp://api.push.mob.com"
	store := &fakeStore{subscribers: map[string][]push.AudienceMember{"room": members(1)}}
	tr := &fakeTransport{}
	p, income, errs := newTestPusher(t, cfg, store, tr)
	done := runPusher(p)

	income <- push.NewMessage("room", "hello")
	close(income)
	require.NoError(t, <-done)

	perr := <-errs
	require.NotNil(t, perr)
	assert.Equal(t, push.KindTransport, perr.Kind)
	assert.Empty(t, tr.requests())
}

func TestPusherEmptyAudience(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	p, income, errs := newTestPusher(t, nil, &fakeStore{}, tr)
	done := runPusher(p)

	income <- push.NewMessage("nobody", "hello")
	close(income)
	require.NoError(t, <-done)

	_, open := <-errs
	assert.False(t, open)
	assert.Empty(t, tr.requests())
}

func TestPusherDrainsIncome(t *testing.T) {
	t.Parallel()

	store := &fakeStore{subscribers: map[string][]push.AudienceMember{"room": members(1)}}
	tr := &fakeTransport{}
	p, income, _ := newTestPusher(t, nil, store, tr)

	for i := 0; i < 5; i++ {
		income <- push.NewMessage("room", "hello")
	}
	close(income)

	require.NoError(t, p.Run(context.Background()))
	assert.Len(t, tr.requests(), 5)
}

func TestPusherKeepsOrder(t *testing.T) {
	t.Parallel()

	store := &fakeStore{subscribers: map[string][]push.AudienceMember{
		"a": {push.RegistrationID("rid-a")},
		"b": {push.RegistrationID("rid-b")},
		"c": {push.RegistrationID("rid-c")},
	}}
	tr := &fakeTransport{}
	p, income, _ := newTestPusher(t, nil, store, tr)

	for _, r := range []string{"a", "b", "c"} {
		income <- push.NewMessage(r, "hello")
	}
	close(income)
	require.NoError(t, p.Run(context.Background()))

	reqs := tr.requests()
	require.Len(t, reqs, 3)
	for i, want := range []string{"rid-a", "rid-b", "rid-c"} {
		assert.Equal(t, []string{want}, rids(t, reqs[i].request))
	}
}

func TestPusherReportBlocked(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.ReportTimeout = 50 * time.Millisecond

	p, income, errs := New[string](cfg, &fakeStore{err: errors.New("down")}, &fakeTransport{}, ErrorChannelSize+1,
		WithLimiter(rate.NewLimiter(rate.Inf, 1)))
	for i := 0; i < ErrorChannelSize+1; i++ {
		income <- push.NewMessage("room", "hello")
	}

	assert.ErrorIs(t, p.Run(context.Background()), ErrReportBlocked)

	n := 0
	for range errs {
		n++
	}
	assert.Equal(t, ErrorChannelSize, n)
}

func TestPusherContextCanceled(t *testing.T) {
	t.Parallel()

	p, _, errs := newTestPusher(t, nil, &fakeStore{}, &fakeTransport{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Run(ctx), context.Canceled)

	_, open := <-errs
	assert.False(t, open)
}

func TestPusherRunOnce(t *testing.T) {
	t.Parallel()

	p, income, _ := newTestPusher(t, nil, &fakeStore{}, &fakeTransport{})
	close(income)

	require.NoError(t, p.Run(context.Background()))
	assert.ErrorIs(t, p.Run(context.Background()), ErrAlreadyRunning)
}

func TestPusherMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	store := &fakeStore{subscribers: map[string][]push.AudienceMember{"room": members(1500)}}
	tr := &fakeTransport{}
	p, income, _ := newTestPusher(t, nil, store, tr, WithMetrics(metrics.New(reg)))

	income <- push.NewMessage("room", "hello")
	income <- push.NewMessage("empty", "hello")
	close(income)
	require.NoError(t, p.Run(context.Background()))

	count, err := testutil.GatherAndCount(reg, "mobpush_batch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() != nil {
				values[mf.GetName()] += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), values["mobpush_items_total"])
	assert.Equal(t, float64(2), values["mobpush_batches_total"])
	assert.Equal(t, float64(1500), values["mobpush_recipients_total"])
}

func TestPusherKeepsPushID(t *testing.T) {
	t.Parallel()

	p, income, errs := newTestPusher(t, nil, &fakeStore{err: errors.New("down")}, &fakeTransport{})
	income <- push.NewMessage("room", "hello").WithID("push-1")
	income <- push.NewMessage("room", "hello")
	close(income)
	require.NoError(t, p.Run(context.Background()))

	first, second := <-errs, <-errs
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, "push-1", first.PushID)
	assert.NotEmpty(t, second.PushID)
	assert.NotEqual(t, "push-1", second.PushID)
}

func TestPusherInvalidUTF8(t *testing.T) {
	t.Parallel()

	store := &fakeStore{subscribers: map[string][]push.AudienceMember{"room": members(3)}}
	tr := &fakeTransport{}
	p, income, errs := newTestPusher(t, nil, store, tr)
	done := runPusher(p)

	income <- push.NewMessage("room", "bad \xff")
	close(income)
	require.NoError(t, <-done)

	perr := <-errs
	require.NotNil(t, perr)
	assert.Equal(t, push.KindSerialize, perr.Kind)
	assert.Empty(t, tr.requests())
}
