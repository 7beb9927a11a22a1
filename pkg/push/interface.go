package push

import (
	"context"

	"github.com/eachchat/mob-push/pkg/notify"
)

// PushData is one logical push: what to say and which audience gets it.
// Optional extensions may be nil.
type PushData[K comparable] interface {
	// Resource identifies the audience group.
	Resource() K
	Content() string
	// Title may be empty, the pusher then uses its default title.
	Title() string
	AndroidNotify() notify.Fields
	IosNotify() notify.Fields
	Forward() notify.Fields
}

// Identified is implemented by push data that already carries an id. The
// pusher assigns a fresh one to push data without.
type Identified interface {
	PushID() string
}

// AudienceMember is a device that can be targeted by the gateway.
type AudienceMember interface {
	// MobID is the gateway's registration id of the device.
	MobID() string
}

// SubscriptionStore resolves a resource into its subscribed devices.
type SubscriptionStore[K comparable] interface {
	FetchAllSubscribers(ctx context.Context, resource K) ([]AudienceMember, error)
}

// SubscriptionRegistry is a SubscriptionStore that can also be modified.
type SubscriptionRegistry[K comparable] interface {
	SubscriptionStore[K]
	Subscribe(ctx context.Context, resource K, rid string) error
	Unsubscribe(ctx context.Context, resource K, rid string) error
	IsSubscribed(ctx context.Context, resource K, rid string) (bool, error)
}

// RegistrationID is the plain gateway registration id of a device.
type RegistrationID string

func (r RegistrationID) MobID() string { return string(r) }
