// Package mpv defines the boundary between the playback engine and the mpv media backend.
//
// Backend mirrors the libmpv client API: typed property access, synchronous and
// asynchronous commands, and a blocking event wait with a timeout. IPC implements it
// over mpv's JSON IPC socket; Mock implements it in memory for tests.
package mpv

import "time"

// Backend is a native media backend.
//
// Every method except Wakeup must be called from a single goroutine.
// Wakeup may be called from anywhere to interrupt WaitEvent.
type Backend interface {
	// SetOption sets an option before Initialize.
	SetOption(name, value string) error
	// RequestLogMessages enables forwarding of backend log messages at or above level.
	RequestLogMessages(level string) error
	Initialize() error

	GetProperty(name string, format Format) (Node, error)
	SetProperty(name string, value Node) error
	// SetPropertyAsync returns immediately; the outcome arrives as an EventSetPropertyReply carrying userdata.
	SetPropertyAsync(userdata uint64, name string, value Node) error

	Command(args ...string) error
	// CommandAsync returns immediately; the outcome arrives as an EventCommandReply carrying userdata.
	CommandAsync(userdata uint64, args ...string) error

	// WaitEvent blocks for at most timeout and returns EventNone when nothing happened.
	WaitEvent(timeout time.Duration) Event
	Wakeup()

	// Destroy releases the backend. Calling it more than once is a no-op.
	Destroy()
}
