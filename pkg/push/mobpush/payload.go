package mobpush

import (
	"github.com/eachchat/mob-push/pkg/notify"
	"github.com/eachchat/mob-push/pkg/push"
)

// gateway constants of a create-push request
const (
	source         = "webapi"
	targetRids     = 4
	platAndroid    = 1
	platIos        = 2
	notifyTypeText = 1
)

// createPush is the body of one batch request.
type createPush struct {
	appKey  string
	target  Batch
	notify  pushNotify
	forward notify.Fields
}

func (c *createPush) FieldCount() int { return 5 }

func (c *createPush) WriteFields(w *notify.ObjectWriter) error {
	if err := w.Field("source", source); err != nil {
		return err
	}
	if err := w.Field("appkey", c.appKey); err != nil {
		return err
	}
	if err := w.Object("pushTarget", 2, func(t *notify.ObjectWriter) error {
		if err := t.Field("target", targetRids); err != nil {
			return err
		}
		return t.Field("rids", []string(c.target))
	}); err != nil {
		return err
	}
	if err := w.Nested("pushNotify", c.notify); err != nil {
		return err
	}
	return w.Nested("pushForward", c.forward)
}

type pushNotify struct {
	content string
	title   string
	android notify.Fields
	ios     notify.Fields
	sandbox bool
}

func (n pushNotify) FieldCount() int {
	count := 4
	if notify.Count(n.android) > 0 {
		count++
	}
	if notify.Count(n.ios) > 0 {
		count++
	}
	if n.sandbox {
		count++
	}
	return count
}

func (n pushNotify) WriteFields(w *notify.ObjectWriter) error {
	if err := w.Field("plats", []int{platAndroid, platIos}); err != nil {
		return err
	}
	if err := w.Field("content", n.content); err != nil {
		return err
	}
	if err := w.Field("type", notifyTypeText); err != nil {
		return err
	}
	if err := w.Field("title", n.title); err != nil {
		return err
	}
	if notify.Count(n.android) > 0 {
		if err := w.Nested("androidNotify", n.android); err != nil {
			return err
		}
	}
	if notify.Count(n.ios) > 0 {
		if err := w.Nested("iosNotify", n.ios); err != nil {
			return err
		}
	}
	if n.sandbox {
		if err := w.Field("iosProduction", 0); err != nil {
			return err
		}
	}
	return nil
}

// encodePayload serializes the request body of one batch of data.
func encodePayload[K comparable](cfg *Config, data push.PushData[K], batch Batch) ([]byte, error) {
	title := data.Title()
	if title == "" {
		title = cfg.DefaultTitle
	}

	return notify.Encode(&createPush{
		appKey: cfg.AppKey,
		target: batch,
		notify: pushNotify{
			content: data.Content(),
			title:   title,
			android: data.AndroidNotify(),
			ios:     data.IosNotify(),
			sandbox: cfg.IosSandbox,
		},
		forward: data.Forward(),
	})
}
