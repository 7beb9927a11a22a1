package ios

import "github.com/eachchat/mob-push/pkg/notify"

type attachmentType int

const (
	attachmentNone attachmentType = iota
	attachmentPicture
	attachmentVideo
	attachmentVoice
)

// Rich marks the notification as mutable and optionally attaches media.
// The zero value adds nothing.
type Rich struct {
	set        bool
	attachment attachmentType
	url        string
}

// RichNone marks the notification mutable without attaching media.
var RichNone = Rich{set: true}

func RichPicture(url string) Rich { return Rich{set: true, attachment: attachmentPicture, url: url} }

func RichVideo(url string) Rich { return Rich{set: true, attachment: attachmentVideo, url: url} }

func RichVoice(url string) Rich { return Rich{set: true, attachment: attachmentVoice, url: url} }

func (r Rich) FieldCount() int {
	switch {
	case !r.set:
		return 0
	case r.attachment == attachmentNone:
		return 1
	default:
		return 3
	}
}

func (r Rich) WriteFields(w *notify.ObjectWriter) error {
	if !r.set {
		return nil
	}
	if err := w.Field("mutableContent", 1); err != nil {
		return err
	}
	if r.attachment == attachmentNone {
		return nil
	}
	if err := w.Field("attachmentType", int(r.attachment)); err != nil {
		return err
	}
	return w.Field("attachment", r.url)
}
