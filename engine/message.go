package engine

// messageKind names a worker to engine message, for dispatch and metrics.
type messageKind int

const (
	kindStateChange messageKind = iota
	kindPreparePlayback
	kindStartPlayback
	kindEndPlayback
	kindTimeRange
	kindChapters
	kindTick
	kindCache
	kindTracks
	kindCurrentStreams
	kindAudioInfo
	kindVideoInfo
)

var kindNames = [...]string{
	kindStateChange:     "state_change",
	kindPreparePlayback: "prepare_playback",
	kindStartPlayback:   "start_playback",
	kindEndPlayback:     "end_playback",
	kindTimeRange:       "time_range",
	kindChapters:        "chapters",
	kindTick:            "tick",
	kindCache:           "cache",
	kindTracks:          "tracks",
	kindCurrentStreams:  "current_streams",
	kindAudioInfo:       "audio_info",
	kindVideoInfo:       "video_info",
}

func (k messageKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// message is a state replacement posted by the worker. Payloads are built
// fresh for every post and never touched by the worker afterwards.
type message interface {
	kind() messageKind
}

type stateChangeMsg struct {
	state PlaybackState
}

type preparePlaybackMsg struct{}

type startPlaybackMsg struct {
	title    string
	seekable bool
}

type endPlaybackMsg struct {
	locator Mrl
	err     bool
}

type timeRangeMsg struct {
	begin    int
	duration int
}

type chaptersMsg struct {
	chapters ChapterList
}

type tickMsg struct {
	position int
	avsync   int
}

type cacheMsg struct {
	cache int
}

type tracksMsg struct {
	streams [streamTypeCount]StreamList
}

type currentStreamsMsg struct {
	ids [streamTypeCount]int
}

type audioInfoMsg struct {
	info AvInfo
}

type videoInfoMsg struct {
	info AvInfo
}

func (stateChangeMsg) kind() messageKind     { return kindStateChange }
func (preparePlaybackMsg) kind() messageKind { return kindPreparePlayback }
func (startPlaybackMsg) kind() messageKind   { return kindStartPlayback }
func (endPlaybackMsg) kind() messageKind     { return kindEndPlayback }
func (timeRangeMsg) kind() messageKind       { return kindTimeRange }
func (chaptersMsg) kind() messageKind        { return kindChapters }
func (tickMsg) kind() messageKind            { return kindTick }
func (cacheMsg) kind() messageKind           { return kindCache }
func (tracksMsg) kind() messageKind          { return kindTracks }
func (currentStreamsMsg) kind() messageKind  { return kindCurrentStreams }
func (audioInfoMsg) kind() messageKind       { return kindAudioInfo }
func (videoInfoMsg) kind() messageKind       { return kindVideoInfo }
