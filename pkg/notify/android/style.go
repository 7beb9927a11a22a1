package android

import (
	"github.com/eachchat/mob-push/pkg/notify"
)

type styleKind int

// gateway style codes
const (
	styleNormal     styleKind = 0
	styleBigText    styleKind = 1
	styleBigPicture styleKind = 2
	styleBanner     styleKind = 3
	styleCustom     styleKind = 4
)

// Style is the layout of the notification. The zero value is the normal layout
// and adds nothing to the push.
type Style struct {
	kind    styleKind
	content []string
	custom  CustomStyle
}

// BigText replaces the content with multiple lines of text.
func BigText(lines ...string) Style {
	return Style{kind: styleBigText, content: lines}
}

// BigPicture keeps the content and shows one large picture under it.
func BigPicture(url string) Style {
	return Style{kind: styleBigPicture, content: []string{url}}
}

// Banner hides the content and shows every line as its own row.
func Banner(lines ...string) Style {
	return Style{kind: styleBanner, content: lines}
}

// Custom uses one of the layouts registered with the gateway.
func Custom(cs CustomStyle) Style {
	return Style{kind: styleCustom, custom: cs}
}

func (s Style) FieldCount() int {
	if s.kind == styleNormal {
		return 0
	}
	return 2
}

func (s Style) WriteFields(w *notify.ObjectWriter) error {
	switch s.kind {
	case styleNormal:
		return nil
	case styleCustom:
		if err := w.Nested("customStyle", s.custom); err != nil {
			return err
		}
	default:
		content := s.content
		if content == nil {
			content = []string{}
		}
		if err := w.Field("content", content); err != nil {
			return err
		}
	}
	return w.Field("style", int(s.kind))
}

// StyleID picks a layout registered with the gateway.
type StyleID int

const (
	StyleOne StyleID = iota + 1
	StyleTwo
	StyleThree
)

// CustomStyle describes a gateway-side layout with an optional button.
type CustomStyle struct {
	Style         StyleID
	ButtonCopy    string
	ButtonJumpURL string
}

func (cs CustomStyle) FieldCount() int {
	count := 1
	if cs.ButtonCopy != "" {
		count++
	}
	if cs.ButtonJumpURL != "" {
		count++
	}
	return count
}

func (cs CustomStyle) WriteFields(w *notify.ObjectWriter) error {
	if err := w.Field("styleNo", int(cs.Style)); err != nil {
		return err
	}
	if cs.ButtonCopy != "" {
		if err := w.Field("buttonCopy", cs.ButtonCopy); err != nil {
			return err
		}
	}
	if cs.ButtonJumpURL != "" {
		if err := w.Field("buttonJumpUrl", cs.ButtonJumpURL); err != nil {
			return err
		}
	}
	return nil
}
