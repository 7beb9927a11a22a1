// Package forward describes where a tapped notification leads.
package forward

import (
	"sort"

	"github.com/eachchat/mob-push/pkg/notify"
)

type nextType int

const (
	nextHome nextType = iota
	nextLink
	nextScheme
)

// Action is the pushForward of a push. The zero value adds no fields, the
// gateway then opens the app as it sees fit.
type Action struct {
	set    bool
	next   nextType
	target string
	data   map[string]any
}

// Home opens the app's main screen.
func Home() Action { return Action{set: true, next: nextHome} }

// Link opens url in a browser.
func Link(url string) Action { return Action{set: true, next: nextLink, target: url} }

// Scheme opens an in-app page through uri, passing data as key/value pairs.
func Scheme(uri string, data map[string]any) Action {
	return Action{set: true, next: nextScheme, target: uri, data: data}
}

func (a Action) FieldCount() int {
	switch {
	case !a.set:
		return 0
	case a.next == nextHome:
		return 1
	case a.next == nextScheme && len(a.data) > 0:
		return 3
	default:
		return 2
	}
}

func (a Action) WriteFields(w *notify.ObjectWriter) error {
	if !a.set {
		return nil
	}
	if err := w.Field("nextType", int(a.next)); err != nil {
		return err
	}

	switch a.next {
	case nextLink:
		return w.Field("url", a.target)
	case nextScheme:
		if err := w.Field("scheme", a.target); err != nil {
			return err
		}
		if len(a.data) > 0 {
			return w.Field("schemeDataList", schemeData(a.data))
		}
	}
	return nil
}

type schemeItem struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// schemeData lists data sorted by key.
func schemeData(data map[string]any) []schemeItem {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]schemeItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, schemeItem{Key: k, Value: data[k]})
	}
	return items
}
