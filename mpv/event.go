package mpv

// EventID discriminates events returned by WaitEvent.
type EventID int

const (
	EventNone EventID = iota
	EventShutdown
	EventLogMessage
	EventSetPropertyReply
	EventCommandReply
	EventStartFile
	EventEndFile
	EventFileLoaded
	EventTracksChanged
	EventTrackSwitched
	EventIdle
	EventPause
	EventUnpause
	EventVideoReconfig
	EventAudioReconfig
	EventSeek
	EventPlaybackRestart
)

var eventNames = map[EventID]string{
	EventNone:             "none",
	EventShutdown:         "shutdown",
	EventLogMessage:       "log-message",
	EventSetPropertyReply: "set-property-reply",
	EventCommandReply:     "command-reply",
	EventStartFile:        "start-file",
	EventEndFile:          "end-file",
	EventFileLoaded:       "file-loaded",
	EventTracksChanged:    "tracks-changed",
	EventTrackSwitched:    "track-switched",
	EventIdle:             "idle",
	EventPause:            "pause",
	EventUnpause:          "unpause",
	EventVideoReconfig:    "video-reconfig",
	EventAudioReconfig:    "audio-reconfig",
	EventSeek:             "seek",
	EventPlaybackRestart:  "playback-restart",
}

func (id EventID) String() string {
	if name, ok := eventNames[id]; ok {
		return name
	}
	return "unknown"
}

// Event is a backend notification. Data holds a LogMessage, PauseReason or
// EndFile depending on ID; reply events carry Userdata and Error.
type Event struct {
	ID       EventID
	Error    error
	Userdata uint64
	Data     any
}

// LogMessage is a chunk of backend log text. Text may hold a partial line.
type LogMessage struct {
	Prefix string
	Level  string
	Text   string
}

// PauseReason tells a real pause from one caused by an underrun of the cache.
type PauseReason struct {
	RealPaused bool
	ByCache    bool
}

// EndFile describes why a file stopped playing.
type EndFile struct {
	Reason string
	Error  string
}

// End file reasons reported by mpv.
const (
	EndReasonEOF      = "eof"
	EndReasonStop     = "stop"
	EndReasonQuit     = "quit"
	EndReasonError    = "error"
	EndReasonRedirect = "redirect"
)
