// Package toolbar keeps the ordered set of stream buttons shown above the
// data view.
package toolbar

import (
	"logviewer-client/internal/eventbus"
	"logviewer-client/internal/handle"
	"logviewer-client/internal/logging"
)

const (
	IconStop     = "fa-stop-circle-o"
	IconPlay     = "fa-play-circle-o"
	IconPause    = "fa-pause-circle-o"
	IconSettings = "fa-gear"

	CaptionStop     = "stop stream"
	CaptionPlay     = "restore stream"
	CaptionPause    = "pause stream"
	CaptionSettings = "settings of stream"
)

type Button struct {
	ID      handle.ID
	Icon    string
	Caption string
	Handler func()
}

// Registry is owned by the event loop. Changes are published on the bus
// with a copy of the affected Button (Handler omitted) as payload.
type Registry struct {
	bus     *eventbus.Bus
	logger  *logging.Logger
	buttons []Button
}

func New(bus *eventbus.Bus, logger *logging.Logger) *Registry {
	if bus == nil {
		panic("toolbar.New: bus must not be nil")
	}
	if logger == nil {
		panic("toolbar.New: logger must not be nil")
	}
	return &Registry{bus: bus, logger: logger.Component("toolbar")}
}

// Add appends b. It reports false when b.ID is zero or already present.
func (r *Registry) Add(b Button) bool {
	if b.ID.IsZero() || r.index(b.ID) >= 0 {
		r.logger.Warn("toolbar button rejected", logging.Field("id", b.ID.String()))
		return false
	}
	r.buttons = append(r.buttons, b)
	r.bus.Publish(eventbus.TopicToolbarAdded, published(b))
	return true
}

func (r *Registry) Remove(id handle.ID) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	b := r.buttons[i]
	r.buttons = append(r.buttons[:i:i], r.buttons[i+1:]...)
	r.bus.Publish(eventbus.TopicToolbarRemoved, published(b))
	return true
}

func (r *Registry) Update(id handle.ID, icon, caption string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.buttons[i].Icon = icon
	r.buttons[i].Caption = caption
	r.bus.Publish(eventbus.TopicToolbarUpdated, published(r.buttons[i]))
	return true
}

// Press runs the handler of id.
func (r *Registry) Press(id handle.ID) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	if handler := r.buttons[i].Handler; handler != nil {
		handler()
	}
	return true
}

func (r *Registry) Buttons() []Button {
	out := make([]Button, len(r.buttons))
	for i, b := range r.buttons {
		out[i] = published(b)
	}
	return out
}

func (r *Registry) index(id handle.ID) int {
	for i, b := range r.buttons {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func published(b Button) Button {
	b.Handler = nil
	return b
}
