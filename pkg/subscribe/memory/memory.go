// Package memory keeps subscriptions in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/eachchat/mob-push/pkg/push"
)

var _ push.SubscriptionRegistry[string] = (*Store[string])(nil)

// Store is an in-memory subscription registry. Subscribers of a resource are
// returned in the order they subscribed.
type Store[K comparable] struct {
	locker    sync.RWMutex
	resources map[K]*subscribers
}

type subscribers struct {
	order []string
	index map[string]int
}

func New[K comparable]() *Store[K] {
	return &Store[K]{resources: make(map[K]*subscribers)}
}

func (s *Store[K]) FetchAllSubscribers(_ context.Context, resource K) ([]push.AudienceMember, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()

	subs, ok := s.resources[resource]
	if !ok {
		return nil, nil
	}

	members := make([]push.AudienceMember, len(subs.order))
	for i, rid := range subs.order {
		members[i] = push.RegistrationID(rid)
	}
	return members, nil
}

func (s *Store[K]) Subscribe(_ context.Context, resource K, rid string) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	subs, ok := s.resources[resource]
	if !ok {
		subs = &subscribers{index: make(map[string]int)}
		s.resources[resource] = subs
	}
	if _, ok := subs.index[rid]; ok {
		return nil
	}
	subs.index[rid] = len(subs.order)
	subs.order = append(subs.order, rid)
	return nil
}

func (s *Store[K]) Unsubscribe(_ context.Context, resource K, rid string) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	subs, ok := s.resources[resource]
	if !ok {
		return nil
	}
	pos, ok := subs.index[rid]
	if !ok {
		return nil
	}

	subs.order = append(subs.order[:pos], subs.order[pos+1:]...)
	delete(subs.index, rid)
	for i := pos; i < len(subs.order); i++ {
		subs.index[subs.order[i]] = i
	}
	if len(subs.order) == 0 {
		delete(s.resources, resource)
	}
	return nil
}

func (s *Store[K]) IsSubscribed(_ context.Context, resource K, rid string) (bool, error) {
	s.locker.RLock()
	defer s.locker.RUnlock()

	subs, ok := s.resources[resource]
	if !ok {
		return false, nil
	}
	_, ok = subs.index[rid]
	return ok, nil
}
