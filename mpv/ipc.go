package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/reelplay/reel/filesystem"
	"github.com/reelplay/reel/internal/queue"
	"github.com/sirupsen/logrus"
)

const (
	defaultRequestTimeout = 2 * time.Second
	maxLineSize           = 4 << 20
)

// observed properties and the ids they are registered under
var observed = []struct {
	id   int64
	name string
}{
	{1, "track-list"},
	{2, "vid"},
	{3, "aid"},
	{4, "sid"},
	{5, "pause"},
	{6, "paused-for-cache"},
}

// ipcRequest is the JSON structure sent to mpv's IPC socket.
type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is either a reply (Error set) or an event (Event set).
type ipcMessage struct {
	Event     string `json:"event"`
	RequestID int64  `json:"request_id"`
	Error     string `json:"error"`
	Data      any    `json:"data"`

	// property-change
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// end-file
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`

	// log-message
	Prefix string `json:"prefix"`
	Level  string `json:"level"`
	Text   string `json:"text"`
}

type reply struct {
	data any
	err  error
}

type pendingAsync struct {
	event    EventID
	userdata uint64
}

// IPCOptions configures an IPC backend.
type IPCOptions struct {
	// Binary is the mpv executable, "mpv" when empty.
	Binary string
	// SocketDir holds the IPC socket.
	SocketDir string
	// Timeout bounds synchronous requests.
	Timeout time.Duration
	Log     *logrus.Entry
}

// IPC drives an mpv process over its JSON IPC socket.
//
// Replies are correlated by request_id. Events that the JSON protocol does not
// deliver (track changes, pause reasons) are synthesized from observed properties.
type IPC struct {
	binary    string
	socketDir string
	timeout   time.Duration
	log       *logrus.Entry

	args     []string
	logLevel string

	proc    *process
	conn    net.Conn
	writeMu sync.Mutex

	mu             sync.Mutex
	initialized    bool
	nextID         int64
	waiting        map[int64]chan reply
	async          map[int64]pendingAsync
	paused         bool
	pausedForCache bool

	events      *queue.Queue[Event]
	wake        chan struct{}
	readerDone  chan struct{}
	destroyOnce sync.Once
}

var _ Backend = (*IPC)(nil)

func NewIPC(opts IPCOptions) *IPC {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRequestTimeout
	}
	if opts.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Log = logrus.NewEntry(l)
	}

	return &IPC{
		binary:     opts.Binary,
		socketDir:  opts.SocketDir,
		timeout:    opts.Timeout,
		log:        opts.Log,
		waiting:    make(map[int64]chan reply),
		async:      make(map[int64]pendingAsync),
		events:     queue.New[Event](),
		wake:       make(chan struct{}, 1),
		readerDone: make(chan struct{}),
	}
}

func (i *IPC) isInitialized() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.initialized
}

// SetOption becomes a command line argument before Initialize and a property write after it.
func (i *IPC) SetOption(name, value string) error {
	if i.isInitialized() {
		return i.SetProperty(name, String(value))
	}
	i.args = append(i.args, fmt.Sprintf("--%s=%s", name, value))
	return nil
}

func (i *IPC) RequestLogMessages(level string) error {
	if i.isInitialized() {
		_, err := i.request("request_log_messages", level)
		return err
	}
	i.logLevel = level
	return nil
}

// Initialize spawns mpv, connects to its socket and registers the property observers.
func (i *IPC) Initialize() error {
	if i.isInitialized() {
		return ErrInvalidParameter
	}

	socket, err := socketPath(i.socketDir)
	if err != nil {
		return err
	}

	proc, err := spawn(i.binary, socket, i.args)
	if err != nil {
		return err
	}

	conn, err := proc.dial()
	if err != nil {
		_ = killProcess(proc.cmd)
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	i.proc = proc
	i.attach(conn)
	i.log.WithField("socket", socket).Debug("connected to mpv")

	return i.setup()
}

// attach starts reading from conn and marks the client initialized.
func (i *IPC) attach(conn net.Conn) {
	i.mu.Lock()
	i.conn = conn
	i.initialized = true
	i.mu.Unlock()

	go i.readLoop(conn)
}

func (i *IPC) setup() error {
	if i.logLevel != "" {
		if _, err := i.request("request_log_messages", i.logLevel); err != nil {
			return fmt.Errorf("request log messages: %w", err)
		}
	}

	for _, prop := range observed {
		if _, err := i.request("observe_property", prop.id, prop.name); err != nil {
			return fmt.Errorf("observe %s: %w", prop.name, err)
		}
	}

	return nil
}

func (i *IPC) GetProperty(name string, format Format) (Node, error) {
	data, err := i.request("get_property", name)
	if err != nil {
		return Node{}, err
	}
	return FromJSON(data).Convert(format)
}

func (i *IPC) SetProperty(name string, value Node) error {
	_, err := i.request("set_property", name, value.JSON())
	return err
}

func (i *IPC) SetPropertyAsync(userdata uint64, name string, value Node) error {
	return i.send(pendingAsync{event: EventSetPropertyReply, userdata: userdata}, "set_property", name, value.JSON())
}

func (i *IPC) Command(args ...string) error {
	_, err := i.request(toAny(args)...)
	return err
}

func (i *IPC) CommandAsync(userdata uint64, args ...string) error {
	return i.send(pendingAsync{event: EventCommandReply, userdata: userdata}, toAny(args)...)
}

func toAny(args []string) []any {
	out := make([]any, len(args))
	for n, a := range args {
		out[n] = a
	}
	return out
}

// WaitEvent returns the next queued event, waiting at most timeout.
func (i *IPC) WaitEvent(timeout time.Duration) Event {
	if ev, ok := i.events.Pop(); ok {
		return ev
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-i.events.Ready():
	case <-i.wake:
	case <-timer.C:
	}

	if ev, ok := i.events.Pop(); ok {
		return ev
	}
	return Event{ID: EventNone}
}

func (i *IPC) Wakeup() {
	select {
	case i.wake <- struct{}{}:
	default:
	}
}

// Destroy asks mpv to quit, kills it if it does not exit in time and removes the socket.
func (i *IPC) Destroy() {
	i.destroyOnce.Do(func() {
		i.mu.Lock()
		conn := i.conn
		i.mu.Unlock()

		if conn != nil {
			_ = i.write(ipcRequest{Command: []any{"quit"}})
		}
		if i.proc != nil {
			i.proc.stop(quitGrace)
		}
		if conn != nil {
			_ = conn.Close()
			<-i.readerDone
		}
		if i.proc != nil {
			if err := filesystem.API().Remove(i.proc.socket); err != nil && !errors.Is(err, os.ErrNotExist) {
				i.log.WithError(err).Debug("remove socket")
			}
		}
		i.events.Close()
	})
}

func (i *IPC) register() (int64, chan reply) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.nextID++
	ch := make(chan reply, 1)
	i.waiting[i.nextID] = ch
	return i.nextID, ch
}

func (i *IPC) unregister(id int64) {
	i.mu.Lock()
	delete(i.waiting, id)
	i.mu.Unlock()
}

// request sends a command and waits for its reply.
func (i *IPC) request(command ...any) (any, error) {
	if !i.isInitialized() {
		return nil, ErrUninitialized
	}

	id, ch := i.register()
	if err := i.write(ipcRequest{Command: command, RequestID: id}); err != nil {
		i.unregister(id)
		return nil, err
	}

	timer := time.NewTimer(i.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.data, r.err
	case <-timer.C:
		i.unregister(id)
		return nil, ErrTimeout
	case <-i.readerDone:
		i.unregister(id)
		return nil, ErrDisconnected
	}
}

// send writes a command whose reply becomes an event.
func (i *IPC) send(pending pendingAsync, command ...any) error {
	if !i.isInitialized() {
		return ErrUninitialized
	}

	i.mu.Lock()
	i.nextID++
	id := i.nextID
	i.async[id] = pending
	i.mu.Unlock()

	if err := i.write(ipcRequest{Command: command, RequestID: id}); err != nil {
		i.mu.Lock()
		delete(i.async, id)
		i.mu.Unlock()
		return err
	}
	return nil
}

func (i *IPC) write(req ipcRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	i.mu.Lock()
	conn := i.conn
	i.mu.Unlock()
	if conn == nil {
		return ErrDisconnected
	}

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// readLoop dispatches newline delimited messages until the connection closes.
func (i *IPC) readLoop(conn net.Conn) {
	defer close(i.readerDone)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg ipcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			i.log.WithError(err).Debug("skipping unparseable ipc line")
			continue
		}
		i.dispatch(msg)
	}

	if err := scanner.Err(); err != nil {
		i.log.WithError(err).Warn("ipc read failed")
	}

	_ = conn.Close()

	i.mu.Lock()
	i.conn = nil
	for id := range i.waiting {
		delete(i.waiting, id)
	}
	i.mu.Unlock()

	i.events.Push(Event{ID: EventShutdown})
}

func (i *IPC) dispatch(msg ipcMessage) {
	if msg.Event != "" {
		i.dispatchEvent(msg)
		return
	}

	err := ParseError(msg.Error)

	i.mu.Lock()
	ch, waited := i.waiting[msg.RequestID]
	delete(i.waiting, msg.RequestID)
	pending, deferred := i.async[msg.RequestID]
	delete(i.async, msg.RequestID)
	i.mu.Unlock()

	switch {
	case waited:
		ch <- reply{data: msg.Data, err: err}
	case deferred:
		i.events.Push(Event{ID: pending.event, Userdata: pending.userdata, Error: err})
	}
}

var plainEvents = map[string]EventID{
	"start-file":       EventStartFile,
	"file-loaded":      EventFileLoaded,
	"shutdown":         EventShutdown,
	"idle":             EventIdle,
	"video-reconfig":   EventVideoReconfig,
	"audio-reconfig":   EventAudioReconfig,
	"seek":             EventSeek,
	"playback-restart": EventPlaybackRestart,
}

func (i *IPC) dispatchEvent(msg ipcMessage) {
	if id, ok := plainEvents[msg.Event]; ok {
		i.events.Push(Event{ID: id})
		return
	}

	switch msg.Event {
	case "end-file":
		i.events.Push(Event{ID: EventEndFile, Data: EndFile{Reason: msg.Reason, Error: msg.FileError}})
	case "log-message":
		i.events.Push(Event{ID: EventLogMessage, Data: LogMessage{Prefix: msg.Prefix, Level: msg.Level, Text: msg.Text}})
	case "property-change":
		i.propertyChanged(msg.Name, msg.Data)
	}
}

func (i *IPC) propertyChanged(name string, data any) {
	switch name {
	case "track-list":
		i.events.Push(Event{ID: EventTracksChanged})
	case "vid", "aid", "sid":
		i.events.Push(Event{ID: EventTrackSwitched})
	case "pause", "paused-for-cache":
		value, _ := FromJSON(data).AsFlag()

		i.mu.Lock()
		if name == "pause" {
			i.paused = value
		} else {
			i.pausedForCache = value
		}
		reason := PauseReason{
			RealPaused: i.paused || i.pausedForCache,
			ByCache:    i.pausedForCache && !i.paused,
		}
		i.mu.Unlock()

		id := EventUnpause
		if reason.RealPaused {
			id = EventPause
		}
		i.events.Push(Event{ID: id, Data: reason})
	}
}
