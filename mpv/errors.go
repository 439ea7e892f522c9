package mpv

import "errors"

// Error is an mpv error code.
type Error int

// Codes as defined by the mpv client API.
const (
	ErrSuccess             Error = 0
	ErrEventQueueFull      Error = -1
	ErrNoMem               Error = -2
	ErrUninitialized       Error = -3
	ErrInvalidParameter    Error = -4
	ErrOptionNotFound      Error = -5
	ErrOptionFormat        Error = -6
	ErrOptionError         Error = -7
	ErrPropertyNotFound    Error = -8
	ErrPropertyFormat      Error = -9
	ErrPropertyUnavailable Error = -10
	ErrPropertyError       Error = -11
	ErrCommand             Error = -12
	ErrLoadingFailed       Error = -13
	ErrAOInitFailed        Error = -14
	ErrVOInitFailed        Error = -15
	ErrNothingToPlay       Error = -16
	ErrUnknownFormat       Error = -17
	ErrUnsupported         Error = -18
	ErrNotImplemented      Error = -19
	ErrGeneric             Error = -20
)

var errorText = map[Error]string{
	ErrSuccess:             "success",
	ErrEventQueueFull:      "event queue full",
	ErrNoMem:               "memory allocation failed",
	ErrUninitialized:       "core not uninitialized",
	ErrInvalidParameter:    "invalid parameter",
	ErrOptionNotFound:      "option not found",
	ErrOptionFormat:        "unsupported format for accessing option",
	ErrOptionError:         "error setting option",
	ErrPropertyNotFound:    "property not found",
	ErrPropertyFormat:      "unsupported format for accessing property",
	ErrPropertyUnavailable: "property unavailable",
	ErrPropertyError:       "error accessing property",
	ErrCommand:             "error running command",
	ErrLoadingFailed:       "loading failed",
	ErrAOInitFailed:        "audio output initialization failed",
	ErrVOInitFailed:        "video output initialization failed",
	ErrNothingToPlay:       "no audio or video data played",
	ErrUnknownFormat:       "unrecognized file format",
	ErrUnsupported:         "not supported",
	ErrNotImplemented:      "operation not implemented",
	ErrGeneric:             "something happened",
}

func (e Error) Error() string {
	if text, ok := errorText[e]; ok {
		return text
	}
	return "unknown error"
}

// ParseError maps the error text of an IPC reply onto a code. "success" yields nil.
func ParseError(text string) error {
	if text == "" || text == "success" {
		return nil
	}
	for code, t := range errorText {
		if t == text {
			return code
		}
	}
	return ErrGeneric
}

// IsUnavailable reports whether err means the queried value does not apply right now.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrPropertyUnavailable)
}

// Transport failures of the IPC client.
var (
	ErrDisconnected = errors.New("mpv: connection closed")
	ErrTimeout      = errors.New("mpv: request timed out")
)
