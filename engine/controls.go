package engine

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/reelplay/reel/mpv"
	"github.com/reelplay/reel/util"
	"github.com/spf13/afero"
)

func clampVolume(v int) int {
	return util.Clamp(v, 0, 100)
}

func clampAmp(a float64) float64 {
	return util.Clamp(a, 0, 10)
}

func clampPercent(p int) int {
	return util.Clamp(p, 0, 100)
}

func sameFloat(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// seconds formats milliseconds the way the backend expects time values.
func seconds(ms int) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}

// quoteOption protects a value containing commas inside a loadfile option list.
func quoteOption(value string) string {
	return fmt.Sprintf("%%%d%%%s", len(value), value)
}

// backendVolume maps volume and amplification onto the backend's 0-1000 scale.
func (e *Engine) backendVolume() float64 {
	return float64(e.volume) * e.amp
}

// Load starts playing info, replacing the current media. A staged next media
// is discarded. Loading an empty locator stops playback.
func (e *Engine) Load(info StartInfo) {
	e.mu.Lock()
	e.next = StartInfo{}
	e.mu.Unlock()

	e.load(info)
}

func (e *Engine) load(info StartInfo) {
	if e.quit.Load() {
		return
	}

	e.mu.Lock()
	var notes []Notification
	if e.startInfo.Locator != info.Locator {
		notes = append(notes, LocatorChanged{Locator: info.Locator})
	}
	e.startInfo = info
	e.hasImage = info.Locator.IsImage()
	e.title = ""
	notes = append(notes, e.updateMediaName()...)

	var r request = commandRequest{args: []string{"stop"}}
	if info.IsValid() {
		r = loadRequest{info: info, image: e.hasImage, options: e.loadOptions(info)}
	}
	e.mu.Unlock()

	e.log.WithField("locator", info.Locator).Info("load")
	e.send(r)
	e.emit(notes...)
}

// loadOptions carries the current controls into the new file. The lock must be held.
func (e *Engine) loadOptions(info StartInfo) []string {
	opts := []string{
		"pause=" + yesNo(e.state == Paused || e.hasImage),
		"volume=" + formatFloat(e.backendVolume()),
		"mute=" + yesNo(e.muted),
		"speed=" + formatFloat(e.speed),
		"audio-delay=" + seconds(e.audioSync),
		"sub-delay=" + seconds(e.subDelay),
		"sub-visibility=" + yesNo(e.subVisible),
	}

	if info.Resume > 0 {
		opts = append(opts, "start="+seconds(info.Resume))
	}

	if len(e.hwCodecs) > 0 {
		opts = append(opts, "hwdec=auto-safe", "hwdec-codecs="+quoteOption(strings.Join(e.hwCodecs, ",")))
	} else {
		opts = append(opts, "hwdec=no")
	}

	if info.Cache > 0 {
		opts = append(opts,
			"cache=yes",
			fmt.Sprintf("demuxer-max-bytes=%dKiB", info.Cache),
			"cache-pause="+yesNo(e.cacheForPlayback > 0),
			"cache-pause-wait="+seconds(e.cacheForPlayback*100),
			"cache-pause-initial="+yesNo(e.cacheForSeeking > 0),
		)
	} else {
		opts = append(opts, "cache=no")
	}
	return opts
}

// StageNext queues info to load as soon as the current media ends.
func (e *Engine) StageNext(info StartInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next = info
}

func (e *Engine) Stop() {
	e.mu.Lock()
	e.next = StartInfo{}
	e.mu.Unlock()

	e.send(commandRequest{args: []string{"stop"}})
}

// Seek jumps to ms on the timeline.
func (e *Engine) Seek(ms int) {
	e.mu.Lock()
	e.cursor.rewind()
	image := e.hasImage
	if image {
		e.image.seek(ms, e.now())
	}
	e.mu.Unlock()

	if !image {
		e.send(commandRequest{args: []string{"seek", seconds(ms), "absolute"}})
	}
	e.emit(Sought{Position: ms})
}

// RelativeSeek moves by delta milliseconds from the current position.
func (e *Engine) RelativeSeek(delta int) {
	e.mu.Lock()
	e.cursor.rewind()
	image := e.hasImage
	target := e.position + delta
	if image {
		e.image.seek(target, e.now())
	}
	e.mu.Unlock()

	if !image {
		e.send(commandRequest{args: []string{"seek", seconds(delta), "relative"}})
	}
	e.emit(Sought{Position: target})
}

func (e *Engine) Pause() {
	e.setPaused(true)
}

func (e *Engine) Unpause() {
	e.setPaused(false)
}

func (e *Engine) setPaused(paused bool) {
	e.mu.Lock()
	image := e.hasImage
	var notes []Notification
	switch {
	case image && paused && e.state == Playing:
		notes = e.setState(Paused)
	case image && !paused && e.state == Paused:
		notes = e.setState(Playing)
	}
	e.mu.Unlock()

	if !image {
		e.send(setRequest{name: "pause", value: mpv.Flag(paused)})
	}
	e.emit(notes...)
}

// SelectStream activates stream id of type t. Unknown ids are ignored;
// StreamNone disables the type.
func (e *Engine) SelectStream(t StreamType, id int) bool {
	e.mu.RLock()
	known := e.streams[t].Contains(id)
	current := e.current[t]
	e.mu.RUnlock()

	if id == current {
		return true
	}

	switch {
	case id == StreamNone:
		e.send(setRequest{name: t.property(), value: mpv.String("no")})
	case known:
		e.send(setRequest{name: t.property(), value: mpv.Int(int64(id))})
	default:
		return false
	}
	return true
}

// AddSubtitleFile loads an external subtitle file and selects it. encoding
// may be empty to let the backend detect it.
func (e *Engine) AddSubtitleFile(path, encoding string) error {
	if e.quit.Load() {
		return ErrShutdown
	}

	exists, err := afero.Exists(e.fs, path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNoSubtitle, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	e.mu.Lock()
	e.subFiles = append(e.subFiles, SubtitleFile{Path: path, Encoding: encoding})
	files := slices.Clone(e.subFiles)
	e.mu.Unlock()

	e.send(subtitleRequest{path: path, encoding: encoding})
	e.emit(SubtitleFilesChanged{Files: files})
	return nil
}

// RemoveSubtitleStream removes subtitle stream id, forgetting its file if
// it was added with AddSubtitleFile.
func (e *Engine) RemoveSubtitleStream(id int) bool {
	e.mu.Lock()
	stream, ok := e.streams[SubtitleStream].Find(id)
	if !ok {
		e.mu.Unlock()
		return false
	}

	var notes []Notification
	if stream.IsExternal() {
		before := len(e.subFiles)
		e.subFiles = slices.DeleteFunc(e.subFiles, func(f SubtitleFile) bool { return f.Path == stream.File })
		if len(e.subFiles) != before {
			notes = append(notes, SubtitleFilesChanged{Files: slices.Clone(e.subFiles)})
		}
	}
	e.mu.Unlock()

	e.send(commandRequest{args: []string{"sub-remove", strconv.Itoa(id)}})
	e.emit(notes...)
	return true
}

// SetCurrentChapter jumps to chapter id if it exists.
func (e *Engine) SetCurrentChapter(id int) bool {
	e.mu.RLock()
	known := slices.ContainsFunc(e.chapters, func(c Chapter) bool { return c.ID == id })
	current := e.chapter
	e.mu.RUnlock()

	if !known {
		return false
	}
	if id != current {
		e.send(setRequest{name: "chapter", value: mpv.Int(int64(id))})
	}
	return true
}

func (e *Engine) SetVolume(volume int) {
	volume = clampVolume(volume)

	e.mu.Lock()
	if e.volume == volume {
		e.mu.Unlock()
		return
	}
	e.volume = volume
	value := e.backendVolume()
	e.mu.Unlock()

	e.send(setRequest{name: "volume", value: mpv.Double(value)})
	e.emit(VolumeChanged{Volume: volume})
}

// SetAmp sets the amplification factor, 0 to 10.
func (e *Engine) SetAmp(amp float64) {
	amp = clampAmp(amp)

	e.mu.Lock()
	if sameFloat(e.amp, amp) {
		e.mu.Unlock()
		return
	}
	e.amp = amp
	value := e.backendVolume()
	e.mu.Unlock()

	e.send(setRequest{name: "volume", value: mpv.Double(value)})
	e.emit(AmpChanged{Amp: amp})
}

func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	if e.muted == muted {
		e.mu.Unlock()
		return
	}
	e.muted = muted
	e.mu.Unlock()

	e.send(setRequest{name: "mute", value: mpv.Flag(muted)})
	e.emit(MutedChanged{Muted: muted})
}

func (e *Engine) SetSpeed(speed float64) {
	speed = util.Clamp(speed, 0.01, 100)

	e.mu.Lock()
	if sameFloat(e.speed, speed) {
		e.mu.Unlock()
		return
	}
	e.speed = speed
	e.mu.Unlock()

	e.send(setRequest{name: "speed", value: mpv.Double(speed)})
	e.emit(SpeedChanged{Speed: speed})
}

// SetAudioSync delays audio by ms.
func (e *Engine) SetAudioSync(ms int) {
	e.mu.Lock()
	if e.audioSync == ms {
		e.mu.Unlock()
		return
	}
	e.audioSync = ms
	e.mu.Unlock()

	e.send(setRequest{name: "audio-delay", value: mpv.Double(float64(ms) / 1000)})
	e.emit(AudioSyncChanged{Delay: ms})
}

// SetSubtitleDelay delays subtitles by ms.
func (e *Engine) SetSubtitleDelay(ms int) {
	e.mu.Lock()
	if e.subDelay == ms {
		e.mu.Unlock()
		return
	}
	e.subDelay = ms
	e.mu.Unlock()

	e.send(setRequest{name: "sub-delay", value: mpv.Double(float64(ms) / 1000)})
	e.emit(SubtitleDelayChanged{Delay: ms})
}

func (e *Engine) SetSubtitleVisible(visible bool) {
	e.mu.Lock()
	if e.subVisible == visible {
		e.mu.Unlock()
		return
	}
	e.subVisible = visible
	e.mu.Unlock()

	e.send(setRequest{name: "sub-visibility", value: mpv.Flag(visible)})
	e.emit(SubtitleVisibilityChanged{Visible: visible})
}

// SetMinimumCache sets the fill percentages required before playback
// resumes and before it starts after a seek. They apply from the next load.
func (e *Engine) SetMinimumCache(playback, seeking int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cacheForPlayback = clampPercent(playback)
	e.cacheForSeeking = clampPercent(seeking)
}

// SetImageDuration sets how long still images are shown, from the next load.
func (e *Engine) SetImageDuration(ms int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.imageDuration = max(ms, 0)
}

// SetHwAccCodecs sets the codecs allowed to decode in hardware, from the next load.
func (e *Engine) SetHwAccCodecs(codecs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hwCodecs = slices.Clone(codecs)
}
