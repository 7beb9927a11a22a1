// Package android holds the androidNotify extension of a push.
package android

import (
	"github.com/eachchat/mob-push/pkg/notify"
)

var _ notify.Fields = (*Notify)(nil)

// Notify customizes how the notification is shown on Android devices.
// The zero value has nothing to say and is left out of the push.
type Notify struct {
	Style Style
	Badge Badge
	Image Image
	Sound Sound
	Warn  Warn
}

func (n *Notify) parts() []notify.Fields {
	return []notify.Fields{n.Style, n.Badge, n.Image, n.Sound, n.Warn}
}

func (n *Notify) FieldCount() int {
	if n == nil {
		return 0
	}
	count := 0
	for _, p := range n.parts() {
		count += p.FieldCount()
	}
	return count
}

func (n *Notify) WriteFields(w *notify.ObjectWriter) error {
	if n == nil {
		return nil
	}
	for _, p := range n.parts() {
		if err := notify.Write(w, p); err != nil {
			return err
		}
	}
	return nil
}

// Image is the url of a picture shown in the notification.
type Image string

func (i Image) FieldCount() int {
	if i == "" {
		return 0
	}
	return 1
}

func (i Image) WriteFields(w *notify.ObjectWriter) error {
	if i == "" {
		return nil
	}
	return w.Field("image", string(i))
}

// Sound is the name of a custom sound resource bundled with the app.
type Sound string

func (s Sound) FieldCount() int {
	if s == "" {
		return 0
	}
	return 1
}

func (s Sound) WriteFields(w *notify.ObjectWriter) error {
	if s == "" {
		return nil
	}
	return w.Field("sound", string(s))
}
