// Package ios holds the iosNotify extension of a push.
package ios

import (
	"github.com/eachchat/mob-push/pkg/notify"
)

var _ notify.Fields = (*Notify)(nil)

// Notify customizes how the notification is delivered through APNs.
// The zero value has nothing to say and is left out of the push.
type Notify struct {
	Badge            Badge
	Category         string
	Sound            Sound
	Subtitle         string
	ContentAvailable bool
	Rich             Rich
}

func (n *Notify) parts() []notify.Fields {
	parts := []notify.Fields{n.Badge}
	if n.Category != "" {
		parts = append(parts, notify.KV{Name: "category", Value: n.Category})
	}
	parts = append(parts, n.Sound)
	if n.Subtitle != "" {
		parts = append(parts, notify.KV{Name: "subtitle", Value: n.Subtitle})
	}
	if n.ContentAvailable {
		parts = append(parts, notify.KV{Name: "contentAvailable", Value: 1})
	}
	return append(parts, n.Rich)
}

func (n *Notify) FieldCount() int {
	if n == nil {
		return 0
	}
	return notify.Join(n.parts()...).FieldCount()
}

func (n *Notify) WriteFields(w *notify.ObjectWriter) error {
	if n == nil {
		return nil
	}
	return notify.Write(w, notify.Join(n.parts()...))
}

type badgeType int

const (
	badgeNone badgeType = iota
	badgeAbs
	badgeAdd
)

// Badge changes the app icon badge. The zero value leaves it alone.
type Badge struct {
	typ   badgeType
	value int
}

// BadgeAbs sets the badge to n.
func BadgeAbs(n uint32) Badge { return Badge{typ: badgeAbs, value: int(n)} }

// BadgeAdd adds n, which may be negative, to the current badge.
func BadgeAdd(n int32) Badge { return Badge{typ: badgeAdd, value: int(n)} }

func (b Badge) FieldCount() int {
	if b.typ == badgeNone {
		return 0
	}
	return 2
}

func (b Badge) WriteFields(w *notify.ObjectWriter) error {
	if b.typ == badgeNone {
		return nil
	}
	if err := w.Field("badge", b.value); err != nil {
		return err
	}
	return w.Field("badgeType", int(b.typ))
}

type soundKind int

const (
	soundUnset soundKind = iota
	soundDefault
	soundSilent
	soundCustom
)

// Sound is the APNs alert sound. The zero value leaves it to the gateway.
type Sound struct {
	kind soundKind
	name string
}

var (
	SoundDefault = Sound{kind: soundDefault}
	SoundSilent  = Sound{kind: soundSilent}
)

// SoundCustom plays a sound file bundled with the app.
func SoundCustom(name string) Sound { return Sound{kind: soundCustom, name: name} }

func (s Sound) FieldCount() int {
	if s.kind == soundUnset {
		return 0
	}
	return 1
}

func (s Sound) WriteFields(w *notify.ObjectWriter) error {
	switch s.kind {
	case soundDefault:
		return w.Field("sound", "default")
	case soundSilent:
		return w.Field("sound", nil)
	case soundCustom:
		return w.Field("sound", s.name)
	}
	return nil
}
