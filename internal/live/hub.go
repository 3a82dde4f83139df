// Package live is the browser side of the map and list collaborators. It
// keeps a snapshot of what the page should show and streams every change to
// subscribed clients.
package live

import (
	"sync"

	"github.com/claude/trailbook/internal/models"
	"github.com/claude/trailbook/internal/ui"
)

// Event types sent to subscribers.
const (
	EventSetView    = "map.set_view"
	EventMarker     = "map.marker"
	EventEntry      = "list.entry"
	EventShowForm   = "form.show"
	EventHideForm   = "form.hide"
	EventRestore    = "form.restore"
	EventClearForm  = "form.clear"
	EventTypeFields = "form.fields"
	EventAlert      = "alert"
	EventReload     = "reload"
)

// Event is one view update.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// SetView is the payload of EventSetView.
type SetView struct {
	Center  models.Coords `json:"center"`
	Zoom    int           `json:"zoom"`
	Animate bool          `json:"animate"`
}

// MapState is the map part of a Snapshot.
type MapState struct {
	Ready  bool          `json:"ready"`
	Center models.Coords `json:"center"`
	Zoom   int           `json:"zoom"`
}

// FormState is the form part of a Snapshot.
type FormState struct {
	Hidden bool `json:"hidden"`
	// Display is "none" between a hide and the deferred restore, else "grid".
	Display string      `json:"display"`
	Fields  models.Kind `json:"fields"`
}

// Snapshot is everything a freshly connected page needs to render.
type Snapshot struct {
	Map     MapState    `json:"map"`
	Markers []ui.Marker `json:"markers"`
	// Entries are in DOM order: each insert lands directly after the form,
	// so the newest entry comes first.
	Entries   []ui.Entry `json:"entries"`
	Form      FormState  `json:"form"`
	LastAlert string     `json:"last_alert,omitempty"`
}

// Hub implements controller.MapWidget, controller.ListView and
// controller.Alerter.
type Hub struct {
	mu     sync.Mutex
	state  Snapshot
	subs   map[int]chan Event
	nextID int
	buffer int
}

// NewHub returns a Hub whose subscribers get channels of the given buffer size.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		state:  initialState(),
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

func initialState() Snapshot {
	return Snapshot{
		Markers: []ui.Marker{},
		Entries: []ui.Entry{},
		Form:    FormState{Hidden: true, Display: "grid", Fields: models.KindRunning},
	}
}

// Subscribe registers a listener. Call cancel to unregister; it closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.subscribe()
}

// Watch returns the current snapshot and a subscription taken atomically, so
// every event on the channel happened after the snapshot.
func (h *Hub) Watch() (Snapshot, <-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, cancel := h.subscribe()
	return h.snapshot(), ch, cancel
}

func (h *Hub) subscribe() (<-chan Event, func()) {
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Snapshot returns a copy of the current view state.
func (h *Hub) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot()
}

func (h *Hub) snapshot() Snapshot {
	s := h.state
	s.Markers = append([]ui.Marker{}, h.state.Markers...)
	s.Entries = append([]ui.Entry{}, h.state.Entries...)
	return s
}

// publish must be called with h.mu held. A subscriber whose buffer is full
// misses the event rather than stalling the controller.
func (h *Hub) publish(ev Event) {
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) SetView(center models.Coords, zoom int, animate bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Map = MapState{Ready: true, Center: center, Zoom: zoom}
	h.publish(Event{Type: EventSetView, Data: SetView{Center: center, Zoom: zoom, Animate: animate}})
}

func (h *Hub) AddMarker(m ui.Marker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Markers = append(h.state.Markers, m)
	h.publish(Event{Type: EventMarker, Data: m})
}

func (h *Hub) InsertEntry(e ui.Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Entries = append([]ui.Entry{e}, h.state.Entries...)
	h.publish(Event{Type: EventEntry, Data: e})
}

func (h *Hub) ShowForm() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Form.Hidden = false
	h.publish(Event{Type: EventShowForm})
}

func (h *Hub) HideForm() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Form.Hidden = true
	h.state.Form.Display = "none"
	h.publish(Event{Type: EventHideForm})
}

func (h *Hub) RestoreForm() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Form.Display = "grid"
	h.publish(Event{Type: EventRestore})
}

func (h *Hub) ClearForm() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publish(Event{Type: EventClearForm})
}

func (h *Hub) ShowTypeFields(kind models.Kind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Form.Fields = kind
	h.publish(Event{Type: EventTypeFields, Data: kind})
}

func (h *Hub) Alert(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.LastAlert = msg
	h.publish(Event{Type: EventAlert, Data: msg})
}

// Reload drops rendered entries, markers and form state. The map keeps its
// position; it only renders again through the controller.
func (h *Hub) Reload() {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.state.Map
	h.state = initialState()
	h.state.Map = m
	h.publish(Event{Type: EventReload})
}
