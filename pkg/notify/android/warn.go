package android

import (
	"strings"

	"github.com/eachchat/mob-push/pkg/notify"
)

// Warn is the set of ways a device calls attention to the notification.
type Warn uint8

const (
	WarnPrompt Warn = 1 << iota
	WarnVibration
	WarnIndicatorLight
)

// String renders the set the way the gateway expects it, e.g. "13".
func (w Warn) String() string {
	var sb strings.Builder
	if w&WarnPrompt != 0 {
		sb.WriteByte('1')
	}
	if w&WarnVibration != 0 {
		sb.WriteByte('2')
	}
	if w&WarnIndicatorLight != 0 {
		sb.WriteByte('3')
	}
	return sb.String()
}

func (w Warn) FieldCount() int {
	if w.String() == "" {
		return 0
	}
	return 1
}

func (w Warn) WriteFields(ow *notify.ObjectWriter) error {
	s := w.String()
	if s == "" {
		return nil
	}
	return ow.Field("warn", s)
}
