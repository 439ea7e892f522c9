package mpv

import (
	"sync"
	"time"

	"github.com/reelplay/reel/internal/queue"
)

// SetCall records a property write made on a Mock.
type SetCall struct {
	Name     string
	Value    Node
	Async    bool
	Userdata uint64
}

// Mock is an in-memory Backend for tests. Properties answer from a table,
// writes and commands are recorded, and events are fed with Emit.
type Mock struct {
	mu sync.Mutex

	props    map[string]Node
	getErrs  map[string]error
	setErrs  map[string]error
	cmdErrs  map[string]error
	initErr  error
	options  []Option
	logLevel string

	initialized bool
	destroyed   int
	sets        []SetCall
	commands    [][]string
	gets        []string

	events *queue.Queue[Event]
	wake   chan struct{}
}

var _ Backend = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{
		props:   make(map[string]Node),
		getErrs: make(map[string]error),
		setErrs: make(map[string]error),
		cmdErrs: make(map[string]error),
		events:  queue.New[Event](),
		wake:    make(chan struct{}, 1),
	}
}

// Test helpers

// SetValue makes GetProperty(name) answer value.
func (m *Mock) SetValue(name string, value Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[name] = value
	delete(m.getErrs, name)
}

// FailGet makes GetProperty(name) fail with err.
func (m *Mock) FailGet(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErrs[name] = err
}

// FailSet makes writes to name fail with err.
func (m *Mock) FailSet(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErrs[name] = err
}

// FailCommand makes commands named name fail with err.
func (m *Mock) FailCommand(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cmdErrs[name] = err
}

// FailInitialize makes Initialize return err.
func (m *Mock) FailInitialize(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initErr = err
}

// Emit queues an event for WaitEvent.
func (m *Mock) Emit(ev Event) {
	m.events.Push(ev)
}

func (m *Mock) Options() []Option {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Option(nil), m.options...)
}

func (m *Mock) LogLevel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logLevel
}

func (m *Mock) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

func (m *Mock) Sets() []SetCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SetCall(nil), m.sets...)
}

func (m *Mock) Commands() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.commands...)
}

// Gets lists the property names queried so far.
func (m *Mock) Gets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.gets...)
}

// Destroyed reports how many times Destroy ran.
func (m *Mock) Destroyed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

// Backend

func (m *Mock) SetOption(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return ErrOptionError
	}
	m.options = append(m.options, Option{Name: name, Value: value})
	return nil
}

func (m *Mock) RequestLogMessages(level string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logLevel = level
	return nil
}

func (m *Mock) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initErr != nil {
		return m.initErr
	}
	m.initialized = true
	return nil
}

func (m *Mock) GetProperty(name string, format Format) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets = append(m.gets, name)
	if err, ok := m.getErrs[name]; ok {
		return Node{}, err
	}
	value, ok := m.props[name]
	if !ok {
		return Node{}, ErrPropertyUnavailable
	}
	return value.Convert(format)
}

func (m *Mock) SetProperty(name string, value Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sets = append(m.sets, SetCall{Name: name, Value: value})
	if err, ok := m.setErrs[name]; ok {
		return err
	}
	m.props[name] = value
	return nil
}

func (m *Mock) SetPropertyAsync(userdata uint64, name string, value Node) error {
	m.mu.Lock()
	m.sets = append(m.sets, SetCall{Name: name, Value: value, Async: true, Userdata: userdata})
	err := m.setErrs[name]
	if err == nil {
		m.props[name] = value
	}
	m.mu.Unlock()

	m.events.Push(Event{ID: EventSetPropertyReply, Userdata: userdata, Error: err})
	return nil
}

func (m *Mock) command(args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = append(m.commands, append([]string(nil), args...))
	if len(args) == 0 {
		return ErrInvalidParameter
	}
	if err, ok := m.cmdErrs[args[0]]; ok {
		return err
	}
	return nil
}

// Command records args. "quit" queues a shutdown event.
func (m *Mock) Command(args ...string) error {
	if err := m.command(args); err != nil {
		return err
	}
	if args[0] == "quit" {
		m.events.Push(Event{ID: EventShutdown})
	}
	return nil
}

func (m *Mock) CommandAsync(userdata uint64, args ...string) error {
	err := m.command(args)
	m.events.Push(Event{ID: EventCommandReply, Userdata: userdata, Error: err})
	if err == nil && args[0] == "quit" {
		m.events.Push(Event{ID: EventShutdown})
	}
	return nil
}

func (m *Mock) WaitEvent(timeout time.Duration) Event {
	if ev, ok := m.events.Pop(); ok {
		return ev
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-m.events.Ready():
	case <-m.wake:
	case <-timer.C:
	}

	if ev, ok := m.events.Pop(); ok {
		return ev
	}
	return Event{ID: EventNone}
}

func (m *Mock) Wakeup() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Mock) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed++
}
