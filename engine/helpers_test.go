package engine

import (
	"time"

	"github.com/reelplay/reel/metrics"
	"github.com/reelplay/reel/mpv"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
)

// harness runs an engine without goroutines: events are handed to the
// worker directly and the posted messages applied right after.
type harness struct {
	mock   *mpv.Mock
	hook   *test.Hook
	fs     afero.Fs
	engine *Engine
	now    time.Time
	notes  []Notification
}

func testEnv(mock *mpv.Mock) (Env, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	return Env{
		Backend: mock,
		Log:     logrus.NewEntry(logger),
		Metrics: metrics.New(),
		Fs:      afero.NewMemMapFs(),
	}, hook
}

func newHarness(opts Options) *harness {
	mock := mpv.NewMock()
	env, hook := testEnv(mock)

	h := &harness{mock: mock, hook: hook, fs: env.Fs, now: time.Unix(1700000000, 0)}
	env.Now = func() time.Time { return h.now }

	e, err := New(env, opts)
	if err != nil {
		panic(err)
	}
	e.Subscribe(func(n Notification) { h.notes = append(h.notes, n) })
	h.engine = e
	return h
}

// serve performs the requests queued for the worker.
func (h *harness) serve() {
	for _, r := range h.engine.requests.Drain() {
		r.perform(h.engine.worker)
	}
}

func (h *harness) event(ev mpv.Event) {
	h.serve()
	h.engine.worker.handle(ev)
	h.engine.ProcessPending()
}

func (h *harness) tick() {
	h.event(mpv.Event{ID: mpv.EventNone})
}

func (h *harness) post(m message) {
	h.engine.worker.post(m)
	h.engine.ProcessPending()
}

// play loads locator and walks it through start-file and file-loaded.
func (h *harness) play(locator Mrl) {
	h.engine.Load(StartInfo{Locator: locator})
	h.event(mpv.Event{ID: mpv.EventStartFile})
	h.event(mpv.Event{ID: mpv.EventFileLoaded})
}

func (h *harness) take() []Notification {
	notes := h.notes
	h.notes = nil
	return notes
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func notesOf[T Notification](notes []Notification) []T {
	var out []T
	for _, n := range notes {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func commandsNamed(mock *mpv.Mock, name string) [][]string {
	var out [][]string
	for _, c := range mock.Commands() {
		if len(c) > 0 && c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

func setsNamed(mock *mpv.Mock, name string) []mpv.SetCall {
	var out []mpv.SetCall
	for _, s := range mock.Sets() {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func levels(hook *test.Hook) []logrus.Level {
	var out []logrus.Level
	for _, e := range hook.AllEntries() {
		out = append(out, e.Level)
	}
	return out
}
