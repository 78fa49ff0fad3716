package view

import (
	"maps"

	"github.com/moasq/nanogen/internal/materialize"
)

// Event is an input to Reduce.
type Event interface {
	event()
}

// SwitchTab makes Tab the active view.
type SwitchTab struct{ Tab Tab }

// SetField stores a form value. Values are not validated.
type SetField struct {
	Tab   Tab
	Name  string
	Value string
}

// Submit marks the start of a generation call. It is ignored while the tab
// is already loading.
type Submit struct {
	Tab       Tab
	RequestID string
}

// Succeed delivers a result. It is written even when the tab was cleared
// after the call started.
type Succeed struct {
	Tab       Tab
	RequestID string
	Result    materialize.Result
}

// Fail reports a failed call.
type Fail struct {
	Tab       Tab
	RequestID string
	Err       error
}

// Clear empties the tab's result slot.
type Clear struct{ Tab Tab }

// NotConfigured raises the missing-credential notice.
type NotConfigured struct{ Tab Tab }

// DismissNotice drops the session notice.
type DismissNotice struct{}

func (SwitchTab) event()     {}
func (SetField) event()      {}
func (Submit) event()        {}
func (Succeed) event()       {}
func (Fail) event()          {}
func (Clear) event()         {}
func (NotConfigured) event() {}
func (DismissNotice) event() {}

// Reduce returns the state after applying ev to d. Events naming an unknown
// tab leave d unchanged.
func Reduce(d Deck, ev Event) Deck {
	switch e := ev.(type) {
	case SwitchTab:
		if _, ok := d.Tabs[e.Tab]; ok {
			d.Active = e.Tab
		}
		return d

	case SetField:
		return update(d, e.Tab, func(ts TabState) TabState {
			fields := maps.Clone(ts.Fields)
			if fields == nil {
				fields = make(map[string]string)
			}
			fields[e.Name] = e.Value
			ts.Fields = fields
			return ts
		})

	case Submit:
		return update(d, e.Tab, func(ts TabState) TabState {
			if ts.Loading {
				return ts
			}
			ts.Loading = true
			ts.RequestID = e.RequestID
			return ts
		})

	case Succeed:
		return update(d, e.Tab, func(ts TabState) TabState {
			ts.Loading = false
			ts.Panel = PanelFor(e.Result)
			return ts
		})

	case Fail:
		return update(d, e.Tab, func(ts TabState) TabState {
			ts.Loading = false
			ts.Panel = Panel{Kind: PanelError, Text: GenerationFailedMessage}
			return ts
		})

	case Clear:
		return update(d, e.Tab, func(ts TabState) TabState {
			ts.Panel = Panel{}
			return ts
		})

	case NotConfigured:
		d.Notice = NotConfiguredNotice
		return d

	case DismissNotice:
		d.Notice = ""
		return d
	}
	return d
}

func update(d Deck, t Tab, fn func(TabState) TabState) Deck {
	ts, ok := d.Tabs[t]
	if !ok {
		return d
	}
	tabs := maps.Clone(d.Tabs)
	tabs[t] = fn(ts)
	d.Tabs = tabs
	return d
}
