package android

import "github.com/eachchat/mob-push/pkg/notify"

type badgeType int

const (
	badgeNone badgeType = iota
	badgeSet
	badgeAdd
)

// Badge changes the app icon badge. The zero value leaves it alone.
type Badge struct {
	typ   badgeType
	value int
}

// BadgeSet sets the badge to n.
func BadgeSet(n int) Badge { return Badge{typ: badgeSet, value: n} }

// BadgeAdd adds n to the current badge.
func BadgeAdd(n int) Badge { return Badge{typ: badgeAdd, value: n} }

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
	if err := w.Field("androidBadgeType", int(b.typ)); err != nil {
		return err
	}
	return w.Field("androidBadge", b.value)
}
