package ingress

import (
	"fmt"
	"unicode/utf8"
)

// ContentConfig turns the kind and body of a push request into the text shown
// on the device.
type ContentConfig struct {
	// DefaultContent replaces an empty text body.
	DefaultContent string `yaml:"default_content"`
	ImageContent   string `yaml:"image_content"`
	FileContent    string `yaml:"file_content"`

	// MaxWidth bounds the weight of a text body, ASCII runes weigh 2 and
	// every other rune 5. Longer bodies are cut and end with "...".
	// Default: 70
	MaxWidth int `yaml:"max_width"`
}

func (c *ContentConfig) Validate() error {
	if c.DefaultContent == "" {
		c.DefaultContent = "You have a new message"
	}
	if c.ImageContent == "" {
		c.ImageContent = "[image]"
	}
	if c.FileContent == "" {
		c.FileContent = "[file]"
	}
	if c.MaxWidth < 0 {
		return fmt.Errorf("max width must not be negative")
	}
	if c.MaxWidth == 0 {
		c.MaxWidth = 35 * 2
	}
	return nil
}

const (
	kindText  = "text"
	kindImage = "image"
	kindFile  = "file"
)

func (c *ContentConfig) render(kind, body string) (string, error) {
	switch kind {
	case "", kindText:
		if body == "" {
			return c.DefaultContent, nil
		}
		return prune(body, c.MaxWidth), nil
	case kindImage:
		return c.ImageContent, nil
	case kindFile:
		return c.FileContent, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", kind)
	}
}

// prune cuts body at the first rune that takes its weight over max. A cut
// that would drop less than 4 bytes keeps the whole body.
func prune(body string, max int) string {
	weight := 0
	for i, r := range body {
		if r < utf8.RuneSelf {
			weight += 2
		} else {
			weight += 5
		}

		if weight > max {
			if len(body)-i < 4 {
				return body
			}
			return body[:i] + "..."
		}
	}
	return body
}
