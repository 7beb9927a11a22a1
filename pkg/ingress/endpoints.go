package ingress

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
)

type pushResponse struct {
	PushID string `json:"pushID"`
}

func (pushResponse) StatusCode() int { return http.StatusAccepted }

type checkResponse struct {
	Subscribed bool `json:"subscribed"`
}

type noContent struct{}

func (noContent) StatusCode() int { return http.StatusNoContent }

func makePushEndpoint(s *Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(*pushRequest)

		msg, err := req.message(&s.cfg.Content)
		if err != nil {
			return nil, badRequest(err)
		}

		pushID := uuid.New().String()
		msg.WithID(pushID)

		if err := s.Enqueue(ctx, msg); err != nil {
			level.Error(s.logger).Log("msg", "fail enqueue push", "pushID", pushID, "resource", req.Resource, "err", err)
			return nil, err
		}

		level.Info(s.logger).Log("msg", "enqueue push", "pushID", pushID, "resource", req.Resource)
		return pushResponse{PushID: pushID}, nil
	}
}

func makeSubscribeEndpoint(s *Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(*subscriptionRequest)
		logger := log.With(s.logger, "resource", req.Resource, "rid", req.Rid)

		if err := s.registry.Subscribe(ctx, req.Resource, req.Rid); err != nil {
			level.Error(logger).Log("msg", "fail subscribe", "err", err)
			return nil, storeFailure(err)
		}
		level.Info(logger).Log("msg", "subscribe")
		return noContent{}, nil
	}
}

func makeUnsubscribeEndpoint(s *Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(*subscriptionRequest)
		logger := log.With(s.logger, "resource", req.Resource, "rid", req.Rid)

		if err := s.registry.Unsubscribe(ctx, req.Resource, req.Rid); err != nil {
			level.Error(logger).Log("msg", "fail unsubscribe", "err", err)
			return nil, storeFailure(err)
		}
		level.Info(logger).Log("msg", "unsubscribe")
		return noContent{}, nil
	}
}

func makeCheckEndpoint(s *Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(*subscriptionRequest)

		ok, err := s.registry.IsSubscribed(ctx, req.Resource, req.Rid)
		if err != nil {
			level.Error(s.logger).Log("msg", "fail check subscription", "resource", req.Resource, "rid", req.Rid, "err", err)
			return nil, storeFailure(err)
		}
		return checkResponse{Subscribed: ok}, nil
	}
}
