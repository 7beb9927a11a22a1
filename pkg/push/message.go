package push

import (
	"github.com/eachchat/mob-push/pkg/notify"
	"github.com/eachchat/mob-push/pkg/notify/android"
	"github.com/eachchat/mob-push/pkg/notify/forward"
	"github.com/eachchat/mob-push/pkg/notify/ios"
)

var (
	_ PushData[string] = (*Message[string])(nil)
	_ Identified       = (*Message[string])(nil)
)

// Message is a ready-made PushData. Nil extensions are left out of the push.
type Message[K comparable] struct {
	ID      string
	Key     K
	Body    string
	Heading string

	Android *android.Notify
	Ios     *ios.Notify
	Action  forward.Action
}

// NewMessage returns a message about resource with the given content.
func NewMessage[K comparable](resource K, content string) *Message[K] {
	return &Message[K]{Key: resource, Body: content}
}

func (m *Message[K]) PushID() string  { return m.ID }
func (m *Message[K]) Resource() K     { return m.Key }
func (m *Message[K]) Content() string { return m.Body }
func (m *Message[K]) Title() string   { return m.Heading }

func (m *Message[K]) AndroidNotify() notify.Fields {
	if m.Android == nil {
		return nil
	}
	return m.Android
}

func (m *Message[K]) IosNotify() notify.Fields {
	if m.Ios == nil {
		return nil
	}
	return m.Ios
}

func (m *Message[K]) Forward() notify.Fields { return m.Action }

func (m *Message[K]) WithID(id string) *Message[K] {
	m.ID = id
	return m
}

func (m *Message[K]) WithTitle(title string) *Message[K] {
	m.Heading = title
	return m
}

func (m *Message[K]) WithAndroid(n *android.Notify) *Message[K] {
	m.Android = n
	return m
}

func (m *Message[K]) WithIos(n *ios.Notify) *Message[K] {
	m.Ios = n
	return m
}

func (m *Message[K]) WithForward(a forward.Action) *Message[K] {
	m.Action = a
	return m
}
