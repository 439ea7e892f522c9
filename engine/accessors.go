package engine

import (
	"slices"

	"github.com/samber/mo"
)

func (e *Engine) State() PlaybackState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) IsRunning() bool {
	return e.State().IsRunning()
}

func (e *Engine) StartInfo() StartInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.startInfo
}

func (e *Engine) Locator() Mrl {
	return e.StartInfo().Locator
}

// StagedNext is the media queued to follow the current one.
func (e *Engine) StagedNext() mo.Option[StartInfo] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.next.IsValid() {
		return mo.None[StartInfo]()
	}
	return mo.Some(e.next)
}

func (e *Engine) MediaName() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mediaName
}

func (e *Engine) HasImage() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hasImage
}

func (e *Engine) IsSeekable() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.seekable
}

// Position is -1 until the first tick of a file.
func (e *Engine) Position() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position
}

func (e *Engine) Begin() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.begin
}

func (e *Engine) Duration() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.duration
}

func (e *Engine) End() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.begin + e.duration
}

// RelativePosition is the played fraction of the duration.
func (e *Engine) RelativePosition() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.relativePosition()
}

// Cache is the fill percentage, -1 when unknown.
func (e *Engine) Cache() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cache
}

func (e *Engine) AvSync() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.avsync
}

func (e *Engine) Chapters() ChapterList {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.chapters)
}

func (e *Engine) CurrentChapter() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.chapter
}

func (e *Engine) Streams(t StreamType) StreamList {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.streams[t])
}

func (e *Engine) CurrentStream(t StreamType) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current[t]
}

func (e *Engine) HasVideo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hasVideo
}

func (e *Engine) AudioTrackInfo() AudioTrackInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.audioTrack
}

func (e *Engine) AudioInfo() AvInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.audio
}

func (e *Engine) VideoInfo() AvInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.video
}

func (e *Engine) HwAcc() HardwareAcceleration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hwacc
}

func (e *Engine) Volume() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.volume
}

func (e *Engine) Amp() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.amp
}

func (e *Engine) IsMuted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.muted
}

func (e *Engine) Speed() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.speed
}

func (e *Engine) AudioSync() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.audioSync
}

func (e *Engine) SubtitleDelay() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.subDelay
}

func (e *Engine) IsSubtitleVisible() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.subVisible
}

func (e *Engine) SubtitleFiles() []SubtitleFile {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.subFiles)
}

// MinimumCache returns the playback and seeking fill percentages.
func (e *Engine) MinimumCache() (playback, seeking int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cacheForPlayback, e.cacheForSeeking
}

func (e *Engine) ImageDuration() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.imageDuration
}

func (e *Engine) HwAccCodecs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.hwCodecs)
}
