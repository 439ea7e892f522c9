package engine

// PlaybackState is the state of the current playback session.
type PlaybackState int

const (
	Stopped PlaybackState = iota
	Loading
	Playing
	Paused
	Buffering
	Error
)

func (s PlaybackState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Buffering:
		return "buffering"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// IsRunning reports whether media is actively playing, paused or buffering.
func (s PlaybackState) IsRunning() bool {
	return s == Playing || s == Paused || s == Buffering
}
