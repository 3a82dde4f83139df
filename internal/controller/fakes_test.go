package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/trailbook/internal/models"
	"github.com/claude/trailbook/internal/storage"
	"github.com/claude/trailbook/internal/ui"
)

// recorder stands in for the map, the DOM and window.alert. It logs every
// call in order so tests can assert on sequencing.
type recorder struct {
	mu      sync.Mutex
	events  []string
	entries []ui.Entry
	markers []ui.Marker
	views   []viewCall
	alerts  []string
}

type viewCall struct {
	center  models.Coords
	zoom    int
	animate bool
}

func (r *recorder) log(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) SetView(center models.Coords, zoom int, animate bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, viewCall{center, zoom, animate})
	r.log("view")
}

func (r *recorder) AddMarker(m ui.Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers = append(r.markers, m)
	r.log("marker %s", m.ID)
}

func (r *recorder) InsertEntry(e ui.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	r.log("entry %s", e.ID)
}

func (r *recorder) ShowForm()    { r.mu.Lock(); r.log("show_form"); r.mu.Unlock() }
func (r *recorder) HideForm()    { r.mu.Lock(); r.log("hide_form"); r.mu.Unlock() }
func (r *recorder) RestoreForm() { r.mu.Lock(); r.log("restore_form"); r.mu.Unlock() }
func (r *recorder) ClearForm()   { r.mu.Lock(); r.log("clear_form"); r.mu.Unlock() }
func (r *recorder) Reload()      { r.mu.Lock(); r.log("reload"); r.mu.Unlock() }

func (r *recorder) ShowTypeFields(kind models.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log("fields %s", kind)
}

func (r *recorder) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, msg)
	r.log("alert")
}

func (r *recorder) snapshot() (events []string, entries []ui.Entry, markers []ui.Marker, alerts []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...), append([]ui.Entry(nil), r.entries...),
		append([]ui.Marker(nil), r.markers...), append([]string(nil), r.alerts...)
}

// manualScheduler queues deferred callbacks until the test runs them.
type manualScheduler struct {
	delays []time.Duration
	funcs  []func()
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.delays = append(s.delays, d)
	s.funcs = append(s.funcs, f)
}

func (s *manualScheduler) runAll() {
	for _, f := range s.funcs {
		f()
	}
	s.funcs = nil
}

// failingKV rejects every write.
type failingKV struct{ storage.MemoryKV }

func (*failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }

var clock = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	ctrl  *Controller
	rec   *recorder
	kv    *storage.MemoryKV
	sched *manualScheduler
}

func newHarness() *harness {
	return newHarnessWithKV(storage.NewMemory())
}

func newHarnessWithKV(kv *storage.MemoryKV) *harness {
	rec := &recorder{}
	sched := &manualScheduler{}
	ctrl := New(Options{
		Persister: storage.NewPersister(kv, ""),
		Map:       rec,
		View:      rec,
		Alerter:   rec,
		Scheduler: sched,
		Now:       func() time.Time { return clock },
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &harness{ctrl: ctrl, rec: rec, kv: kv, sched: sched}
}
