package ingress

import (
	"fmt"
	"math"

	"github.com/eachchat/mob-push/pkg/notify/android"
	"github.com/eachchat/mob-push/pkg/notify/forward"
	"github.com/eachchat/mob-push/pkg/notify/ios"
	"github.com/eachchat/mob-push/pkg/push"
)

type pushRequest struct {
	Resource string          `json:"resource"`
	Kind     string          `json:"kind"`
	Content  string          `json:"content"`
	Title    string          `json:"title"`
	Android  *androidRequest `json:"android"`
	Ios      *iosRequest     `json:"ios"`
	Forward  *forwardRequest `json:"forward"`
}

func (r *pushRequest) message(cfg *ContentConfig) (*push.Message[string], error) {
	if r.Resource == "" {
		return nil, fmt.Errorf("resource is required")
	}

	content, err := cfg.render(r.Kind, r.Content)
	if err != nil {
		return nil, err
	}
	msg := push.NewMessage(r.Resource, content).WithTitle(r.Title)

	if r.Android != nil {
		n, err := r.Android.notify()
		if err != nil {
			return nil, fmt.Errorf("android: %w", err)
		}
		msg.WithAndroid(n)
	}
	if r.Ios != nil {
		n, err := r.Ios.notify()
		if err != nil {
			return nil, fmt.Errorf("ios: %w", err)
		}
		msg.WithIos(n)
	}
	if r.Forward != nil {
		action, err := r.Forward.action()
		if err != nil {
			return nil, fmt.Errorf("forward: %w", err)
		}
		msg.WithForward(action)
	}
	return msg, nil
}

type androidRequest struct {
	Style *styleRequest `json:"style"`
	Badge *badgeRequest `json:"badge"`
	Image string        `json:"image"`
	Sound string        `json:"sound"`
	Warn  []string      `json:"warn"`
}

type styleRequest struct {
	Type          string   `json:"type"`
	Content       []string `json:"content"`
	URL           string   `json:"url"`
	StyleNo       int      `json:"style_no"`
	ButtonCopy    string   `json:"button_copy"`
	ButtonJumpURL string   `json:"button_jump_url"`
}

type badgeRequest struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

func (r *androidRequest) notify() (*android.Notify, error) {
	n := &android.Notify{
		Image: android.Image(r.Image),
		Sound: android.Sound(r.Sound),
	}

	if r.Style != nil {
		switch r.Style.Type {
		case "", "normal":
		case "big_text":
			n.Style = android.BigText(r.Style.Content...)
		case "big_picture":
			n.Style = android.BigPicture(r.Style.URL)
		case "banner":
			n.Style = android.Banner(r.Style.Content...)
		case "custom":
			if r.Style.StyleNo < int(android.StyleOne) || r.Style.StyleNo > int(android.StyleThree) {
				return nil, fmt.Errorf("custom style_no must be 1, 2 or 3, got %d", r.Style.StyleNo)
			}
			n.Style = android.Custom(android.CustomStyle{
				Style:         android.StyleID(r.Style.StyleNo),
				ButtonCopy:    r.Style.ButtonCopy,
				ButtonJumpURL: r.Style.ButtonJumpURL,
			})
		default:
			return nil, fmt.Errorf("unknown style %q", r.Style.Type)
		}
	}

	if r.Badge != nil {
		switch r.Badge.Type {
		case "set":
			n.Badge = android.BadgeSet(r.Badge.Value)
		case "add":
			n.Badge = android.BadgeAdd(r.Badge.Value)
		default:
			return nil, fmt.Errorf("unknown badge type %q", r.Badge.Type)
		}
	}

	for _, w := range r.Warn {
		switch w {
		case "prompt":
			n.Warn |= android.WarnPrompt
		case "vibration":
			n.Warn |= android.WarnVibration
		case "indicator_light":
			n.Warn |= android.WarnIndicatorLight
		default:
			return nil, fmt.Errorf("unknown warn %q", w)
		}
	}
	return n, nil
}

type iosRequest struct {
	Badge            *badgeRequest `json:"badge"`
	Category         string        `json:"category"`
	Sound            *soundRequest `json:"sound"`
	Subtitle         string        `json:"subtitle"`
	ContentAvailable bool          `json:"content_available"`
	Rich             *richRequest  `json:"rich"`
}

type soundRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type richRequest struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (r *iosRequest) notify() (*ios.Notify, error) {
	n := &ios.Notify{
		Category:         r.Category,
		Subtitle:         r.Subtitle,
		ContentAvailable: r.ContentAvailable,
	}

	if r.Badge != nil {
		switch r.Badge.Type {
		case "abs":
			if r.Badge.Value < 0 {
				return nil, fmt.Errorf("absolute badge must not be negative")
			}
			if int64(r.Badge.Value) > math.MaxUint32 {
				return nil, fmt.Errorf("absolute badge %d out of range", r.Badge.Value)
			}
			n.Badge = ios.BadgeAbs(uint32(r.Badge.Value))
		case "add":
			if v := int64(r.Badge.Value); v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("badge increment %d out of range", r.Badge.Value)
			}
			n.Badge = ios.BadgeAdd(int32(r.Badge.Value))
		default:
			return nil, fmt.Errorf("unknown badge type %q", r.Badge.Type)
		}
	}

	if r.Sound != nil {
		switch r.Sound.Type {
		case "default":
			n.Sound = ios.SoundDefault
		case "silent":
			n.Sound = ios.SoundSilent
		case "custom":
			n.Sound = ios.SoundCustom(r.Sound.Name)
		default:
			return nil, fmt.Errorf("unknown sound type %q", r.Sound.Type)
		}
	}

	if r.Rich != nil {
		switch r.Rich.Type {
		case "none":
			n.Rich = ios.RichNone
		case "picture":
			n.Rich = ios.RichPicture(r.Rich.URL)
		case "video":
			n.Rich = ios.RichVideo(r.Rich.URL)
		case "voice":
			n.Rich = ios.RichVoice(r.Rich.URL)
		default:
			return nil, fmt.Errorf("unknown rich type %q", r.Rich.Type)
		}
	}
	return n, nil
}

type forwardRequest struct {
	Type   string         `json:"type"`
	URL    string         `json:"url"`
	Scheme string         `json:"scheme"`
	Data   map[string]any `json:"data"`
}

func (r *forwardRequest) action() (forward.Action, error) {
	switch r.Type {
	case "home":
		return forward.Home(), nil
	case "link":
		if r.URL == "" {
			return forward.Action{}, fmt.Errorf("link needs an url")
		}
		return forward.Link(r.URL), nil
	case "scheme":
		if r.Scheme == "" {
			return forward.Action{}, fmt.Errorf("scheme is required")
		}
		return forward.Scheme(r.Scheme, r.Data), nil
	default:
		return forward.Action{}, fmt.Errorf("unknown forward type %q", r.Type)
	}
}

type subscriptionRequest struct {
	Resource string `json:"resource"`
	Rid      string `json:"rid"`
}

func (r *subscriptionRequest) validate() error {
	if r.Resource == "" {
		return fmt.Errorf("resource is required")
	}
	if r.Rid == "" {
		return fmt.Errorf("rid is required")
	}
	return nil
}
