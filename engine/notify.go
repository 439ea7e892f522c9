package engine

// Notification is a change reported to subscribers. Values carry copies;
// holding on to them never aliases engine state.
type Notification interface {
	notification()
}

type (
	StateChanged struct {
		From PlaybackState
		To   PlaybackState
	}
	RunningChanged struct {
		Running bool
	}
	LocatorChanged struct {
		Locator Mrl
	}
	MediaNameChanged struct {
		Name string
	}
	Started struct {
		Locator Mrl
	}
	// Finished is emitted when a session ends without error.
	Finished struct {
		Locator   Mrl
		Position  int
		Remaining int
	}
	// NextRequested asks the subscriber to stage the next media now, with StageNext.
	NextRequested struct {
		Locator Mrl
	}
	SeekableChanged struct {
		Seekable bool
	}
	Tick struct {
		Position int
	}
	RelativePositionChanged struct {
		Position float64
	}
	BeginChanged struct {
		Begin int
	}
	DurationChanged struct {
		Duration int
	}
	EndChanged struct {
		End int
	}
	CacheChanged struct {
		Cache int
	}
	ChaptersChanged struct {
		Chapters ChapterList
	}
	CurrentChapterChanged struct {
		ID int
	}
	StreamsChanged struct {
		Type    StreamType
		Streams StreamList
	}
	CurrentStreamChanged struct {
		Type StreamType
		ID   int
	}
	HasVideoChanged struct {
		HasVideo bool
	}
	AudioTrackInfoChanged struct {
		Info AudioTrackInfo
	}
	AudioInfoChanged struct {
		Info AvInfo
	}
	VideoInfoChanged struct {
		Info AvInfo
	}
	HwAccChanged struct {
		HwAcc HardwareAcceleration
	}
	VolumeChanged struct {
		Volume int
	}
	AmpChanged struct {
		Amp float64
	}
	MutedChanged struct {
		Muted bool
	}
	SpeedChanged struct {
		Speed float64
	}
	AudioSyncChanged struct {
		Delay int
	}
	SubtitleDelayChanged struct {
		Delay int
	}
	SubtitleVisibilityChanged struct {
		Visible bool
	}
	// Sought follows a seek request.
	Sought struct {
		Position int
	}
	SubtitleFilesChanged struct {
		Files []SubtitleFile
	}
)

func (StateChanged) notification()              {}
func (RunningChanged) notification()            {}
func (LocatorChanged) notification()            {}
func (MediaNameChanged) notification()          {}
func (Started) notification()                   {}
func (Finished) notification()                  {}
func (NextRequested) notification()             {}
func (SeekableChanged) notification()           {}
func (Tick) notification()                      {}
func (RelativePositionChanged) notification()   {}
func (BeginChanged) notification()              {}
func (DurationChanged) notification()           {}
func (EndChanged) notification()                {}
func (CacheChanged) notification()              {}
func (ChaptersChanged) notification()           {}
func (CurrentChapterChanged) notification()     {}
func (StreamsChanged) notification()            {}
func (CurrentStreamChanged) notification()      {}
func (HasVideoChanged) notification()           {}
func (AudioTrackInfoChanged) notification()     {}
func (AudioInfoChanged) notification()          {}
func (VideoInfoChanged) notification()          {}
func (HwAccChanged) notification()              {}
func (VolumeChanged) notification()             {}
func (AmpChanged) notification()                {}
func (MutedChanged) notification()              {}
func (SpeedChanged) notification()              {}
func (AudioSyncChanged) notification()          {}
func (SubtitleDelayChanged) notification()      {}
func (SubtitleVisibilityChanged) notification() {}
func (Sought) notification()                    {}
func (SubtitleFilesChanged) notification()      {}
