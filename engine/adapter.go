package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reelplay/reel/metrics"
	"github.com/reelplay/reel/mpv"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
)

// adapter wraps the backend with typed access. Failures are logged and
// reported as a false result or the caller's default, never returned.
//
// Only the worker goroutine calls an adapter once the backend is initialized.
type adapter struct {
	backend mpv.Backend
	log     *logrus.Entry
	metrics *metrics.Metrics

	token   uint64
	pending map[uint64]string
}

func newAdapter(env Env) *adapter {
	return &adapter{
		backend: env.Backend,
		log:     env.Log,
		metrics: env.Metrics,
		pending: make(map[uint64]string),
	}
}

// check logs err against what was attempted and reports success.
func (a *adapter) check(err error, what string) bool {
	if err == nil {
		return true
	}

	if mpv.IsUnavailable(err) {
		a.metrics.BackendFailures.WithLabelValues("unavailable").Inc()
		a.log.WithError(err).Debugf("%s: no value", what)
		return false
	}

	a.metrics.BackendFailures.WithLabelValues("error").Inc()
	a.log.WithError(err).Errorf("%s failed", what)
	return false
}

// fatal logs an initialization failure. The process is left running; the
// caller decides how to abort.
func (a *adapter) fatal(err error, what string) error {
	a.log.WithError(err).Log(logrus.FatalLevel, what)
	return fmt.Errorf("%w: %s: %w", ErrInitialize, what, err)
}

func (a *adapter) setOption(name, value string) error {
	return a.backend.SetOption(name, value)
}

func (a *adapter) get(name string, format mpv.Format) (mpv.Node, bool) {
	node, err := a.backend.GetProperty(name, format)
	if !a.check(err, "get "+name) {
		return mpv.Node{}, false
	}
	return node, true
}

// Node fetches a structured property.
func (a *adapter) Node(name string) mo.Option[mpv.Node] {
	node, ok := a.get(name, mpv.FormatNode)
	if !ok || node.IsNone() {
		return mo.None[mpv.Node]()
	}
	return mo.Some(node)
}

func (a *adapter) Flag(name string, def bool) bool {
	node, ok := a.get(name, mpv.FormatFlag)
	if !ok {
		return def
	}
	v, ok := node.AsFlag()
	if !ok {
		return def
	}
	return v
}

func (a *adapter) Int(name string, def int) int {
	node, ok := a.get(name, mpv.FormatInt64)
	if !ok {
		return def
	}
	v, ok := node.AsInt()
	if !ok {
		return def
	}
	return int(v)
}

func (a *adapter) Double(name string, def float64) float64 {
	node, ok := a.get(name, mpv.FormatDouble)
	if !ok {
		return def
	}
	v, ok := node.AsDouble()
	if !ok {
		return def
	}
	return v
}

func (a *adapter) String(name, def string) string {
	node, ok := a.get(name, mpv.FormatString)
	if !ok {
		return def
	}
	v, ok := node.AsString()
	if !ok {
		return def
	}
	return v
}

// Set writes a property synchronously.
func (a *adapter) Set(name string, value mpv.Node) bool {
	return a.check(a.backend.SetProperty(name, value), describeSet(name, value))
}

// SetAsync writes a property without waiting. A failure shows up later as a
// reply event, matched back to its description by Reply.
func (a *adapter) SetAsync(name string, value mpv.Node) {
	a.token++
	token := a.token
	what := describeSet(name, value)

	if !a.check(a.backend.SetPropertyAsync(token, name, value), what) {
		return
	}
	a.pending[token] = what
}

func (a *adapter) Command(args ...string) bool {
	return a.check(a.backend.Command(args...), describeCommand(args))
}

func (a *adapter) CommandAsync(args ...string) {
	a.token++
	token := a.token
	what := describeCommand(args)

	if !a.check(a.backend.CommandAsync(token, args...), what) {
		return
	}
	a.pending[token] = what
}

// Reply settles an async request. The record is dropped either way.
func (a *adapter) Reply(ev mpv.Event) {
	what, ok := a.pending[ev.Userdata]
	if !ok {
		what = fmt.Sprintf("request #%d", ev.Userdata)
	}
	delete(a.pending, ev.Userdata)

	if ev.Error != nil && !errors.Is(ev.Error, mpv.ErrSuccess) {
		a.check(ev.Error, what)
	}
}

// Pending counts async requests still waiting for a reply.
func (a *adapter) Pending() int {
	return len(a.pending)
}

func describeSet(name string, value mpv.Node) string {
	return "set " + name + "=" + value.String()
}

func describeCommand(args []string) string {
	return "command " + strings.Join(args, " ")
}
