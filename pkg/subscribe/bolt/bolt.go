// Package bolt keeps subscriptions in a bbolt database file.
//
// Every resource owns a bucket under the root bucket with two nested buckets:
// order maps a sequence number to a registration id, index maps the
// registration id back to its sequence number. Iterating order yields the
// subscribers in the order they subscribed.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/eachchat/mob-push/pkg/push"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.etcd.io/bbolt"
)

const (
	rootBucket  = "subscriptions"
	openTimeout = time.Second
)

var (
	orderBucket = []byte("order")
	indexBucket = []byte("index")
)

var _ push.SubscriptionRegistry[string] = (*Store)(nil)

// NoDbError is returned by a Store without a database.
type NoDbError struct{}

func (e NoDbError) Error() string {
	return "bbolt db is nil"
}

// NoBucketError is returned when a bucket expected to exist is missing.
type NoBucketError struct {
	bucketName string
}

func (e NoBucketError) Error() string {
	return fmt.Sprintf("%s bucket does not exist", e.bucketName)
}

type Store struct {
	logger log.Logger
	db     *bbolt.DB
}

// Open opens or creates the database file at path.
func Open(logger log.Logger, path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed open bbolt db %s: %w", path, err)
	}

	s, err := New(logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New returns a store on db, creating the root bucket if needed.
func New(logger log.Logger, db *bbolt.DB) (*Store, error) {
	if db == nil {
		return nil, NoDbError{}
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(rootBucket)); err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &Store{
		logger: log.With(logger, "store", "bbolt", "path", db.Path()),
		db:     db,
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return NoDbError{}
	}
	return s.db.Close()
}

func (s *Store) FetchAllSubscribers(_ context.Context, resource string) ([]push.AudienceMember, error) {
	if s == nil || s.db == nil {
		return nil, NoDbError{}
	}

	var members []push.AudienceMember
	err := s.db.View(func(tx *bbolt.Tx) error {
		res, err := resourceBucket(tx, resource)
		if err != nil || res == nil {
			return err
		}

		order := res.Bucket(orderBucket)
		if order == nil {
			return NoBucketError{bucketName: resource + "/order"}
		}

		return order.ForEach(func(_, rid []byte) error {
			members = append(members, push.RegistrationID(rid))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *Store) Subscribe(_ context.Context, resource, rid string) error {
	if s == nil || s.db == nil {
		return NoDbError{}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return NoBucketError{bucketName: rootBucket}
		}

		res, err := root.CreateBucketIfNotExists([]byte(resource))
		if err != nil {
			return fmt.Errorf("creating bucket %s: %w", resource, err)
		}
		order, err := res.CreateBucketIfNotExists(orderBucket)
		if err != nil {
			return fmt.Errorf("creating order bucket of %s: %w", resource, err)
		}
		index, err := res.CreateBucketIfNotExists(indexBucket)
		if err != nil {
			return fmt.Errorf("creating index bucket of %s: %w", resource, err)
		}

		if index.Get([]byte(rid)) != nil {
			return nil
		}

		seq, err := order.NextSequence()
		if err != nil {
			return fmt.Errorf("error allocating sequence for %s: %w", rid, err)
		}
		key := seqKey(seq)
		if err := order.Put(key, []byte(rid)); err != nil {
			return fmt.Errorf("error setting %s key: %w", rid, err)
		}
		if err := index.Put([]byte(rid), key); err != nil {
			return fmt.Errorf("error indexing %s key: %w", rid, err)
		}

		level.Debug(s.logger).Log("msg", "subscribe", "resource", resource, "rid", rid, "seq", seq)
		return nil
	})
}

func (s *Store) Unsubscribe(_ context.Context, resource, rid string) error {
	if s == nil || s.db == nil {
		return NoDbError{}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		res, err := resourceBucket(tx, resource)
		if err != nil || res == nil {
			return err
		}

		order, index := res.Bucket(orderBucket), res.Bucket(indexBucket)
		if order == nil || index == nil {
			return NoBucketError{bucketName: resource}
		}

		key := index.Get([]byte(rid))
		if key == nil {
			return nil
		}
		if err := order.Delete(key); err != nil {
			return fmt.Errorf("error deleting %s key: %w", rid, err)
		}
		if err := index.Delete([]byte(rid)); err != nil {
			return fmt.Errorf("error deleting %s index: %w", rid, err)
		}

		level.Debug(s.logger).Log("msg", "unsubscribe", "resource", resource, "rid", rid)
		return nil
	})
}

func (s *Store) IsSubscribed(_ context.Context, resource, rid string) (bool, error) {
	if s == nil || s.db == nil {
		return false, NoDbError{}
	}

	var subscribed bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		res, err := resourceBucket(tx, resource)
		if err != nil || res == nil {
			return err
		}

		index := res.Bucket(indexBucket)
		if index == nil {
			return NoBucketError{bucketName: resource + "/index"}
		}
		subscribed = index.Get([]byte(rid)) != nil
		return nil
	})
	return subscribed, err
}

// resourceBucket returns the bucket of resource, nil if nobody ever
// subscribed to it.
func resourceBucket(tx *bbolt.Tx, resource string) (*bbolt.Bucket, error) {
	root := tx.Bucket([]byte(rootBucket))
	if root == nil {
		return nil, NoBucketError{bucketName: rootBucket}
	}
	return root.Bucket([]byte(resource)), nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
