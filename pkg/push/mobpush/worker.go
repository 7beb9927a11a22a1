package mobpush

import (
	"context"
	"fmt"
	"time"

	"github.com/eachchat/mob-push/pkg/metrics"
	"github.com/eachchat/mob-push/pkg/push"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
)

// deliver pushes data to every subscriber of its resource, batch after batch.
// The first failing batch abandons the rest of the item.
func (p *Pusher[K]) deliver(ctx context.Context, data push.PushData[K]) *push.PushError {
	pushID := pushIDOf(data)
	logger := log.With(p.logger, "pushID", pushID, "resource", fmt.Sprint(data.Resource()))

	perr := p.pushing(ctx, logger, data)
	if perr == nil {
		p.metrics.ObserveItem(metrics.ResultOK)
		return nil
	}

	perr.PushID = pushID
	perr.Resource = data.Resource()
	p.metrics.ObserveItem(perr.Kind.String())
	level.Error(logger).Log("msg", "fail push", "kind", perr.Kind, "err", perr)
	return perr
}

func pushIDOf(data any) string {
	if id, ok := data.(push.Identified); ok && id.PushID() != "" {
		return id.PushID()
	}
	return uuid.New().String()
}

func (p *Pusher[K]) pushing(ctx context.Context, logger log.Logger, data push.PushData[K]) *push.PushError {
	subscribers, err := p.store.FetchAllSubscribers(ctx, data.Resource())
	if err != nil {
		return push.StoreError(err)
	}
	level.Debug(logger).Log("msg", "fetch subscribers", "count", len(subscribers))

	it := SliceIterator(subscribers)
	for seq := 1; ; seq++ {
		batch := NextBatch(it, p.cfg.BatchSize)
		if batch == nil {
			return nil
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return push.TransportError(fmt.Errorf("failed wait for batch %d: %w", seq, err))
		}

		if perr := p.sendBatch(ctx, log.With(logger, "batch", seq), data, batch); perr != nil {
			return perr
		}
	}
}

func (p *Pusher[K]) sendBatch(ctx context.Context, logger log.Logger, data push.PushData[K], batch Batch) *push.PushError {
	payload, err := encodePayload(p.cfg, data, batch)
	if err != nil {
		return push.SerializeError(err)
	}

	req, err := p.transport.Post(p.cfg.Endpoint).
		Header("content-type", "application/json").
		Header("key", p.cfg.AppKey).
		Header("sign", Sign(payload, p.cfg.AppSecret)).
		Body(payload).
		Build()
	if err != nil {
		return push.TransportError(fmt.Errorf("failed build request: %w", err))
	}

	start := time.Now()
	resp, perr := p.exchange(ctx, req)
	took := time.Since(start)
	if perr != nil {
		p.metrics.ObserveBatch(perr.Kind.String(), len(batch), took)
		return perr
	}

	p.metrics.ObserveBatch(metrics.ResultOK, len(batch), took)
	level.Info(logger).Log("msg", "batch accepted", "size", len(batch), "batchID", resp.batchID(), "took", took)
	return nil
}

func (p *Pusher[K]) exchange(ctx context.Context, req *push.Request) (*Response, *push.PushError) {
	resp, err := p.transport.Send(ctx, req)
	if err != nil {
		return nil, push.TransportError(fmt.Errorf("failed send request: %w", err))
	}

	body, err := resp.Bytes()
	if err != nil {
		return nil, push.TransportError(fmt.Errorf("failed read response: %w", err))
	}

	return decodeResponse(resp.StatusCode(), body)
}

// report hands perr to the error channel, waiting at most ReportTimeout for
// room in it.
func (p *Pusher[K]) report(ctx context.Context, perr *push.PushError) error {
	select {
	case p.errs <- perr:
		return nil
	default:
	}

	level.Warn(p.logger).Log("msg", "error channel full, wait for reader", "timeout", p.cfg.ReportTimeout)

	timer := time.NewTimer(p.cfg.ReportTimeout)
	defer timer.Stop()

	select {
	case p.errs <- perr:
		return nil
	case <-timer.C:
		level.Error(p.logger).Log("msg", "stop pusher, error channel stayed full", "err", perr)
		return ErrReportBlocked
	case <-ctx.Done():
		return ctx.Err()
	}
}
