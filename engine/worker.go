package engine

import (
	"math"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/reelplay/reel/internal/queue"
	"github.com/reelplay/reel/metrics"
	"github.com/reelplay/reel/mpv"
	"github.com/reelplay/reel/util"
	"github.com/sirupsen/logrus"
)

// quitTimeout bounds how long the worker waits for the backend to confirm a
// quit before giving up on it.
const quitTimeout = 3 * time.Second

// request is work queued by the engine for the worker.
type request interface {
	perform(w *worker)
}

type loadRequest struct {
	info    StartInfo
	image   bool
	options []string
}

type setRequest struct {
	name  string
	value mpv.Node
}

type commandRequest struct {
	args []string
}

// subtitleRequest adds an external subtitle file. The codepage has to be in
// place before the file is read.
type subtitleRequest struct {
	path     string
	encoding string
}

func (r loadRequest) perform(w *worker) {
	w.requested = r.info.Locator
	w.requestedImage = r.image

	args := []string{"loadfile", r.info.Locator.Location(), "replace", "-1"}
	if len(r.options) > 0 {
		args = append(args, strings.Join(r.options, ","))
	}
	w.adapter.Command(args...)
}

func (r setRequest) perform(w *worker) {
	w.adapter.SetAsync(r.name, r.value)
}

func (r subtitleRequest) perform(w *worker) {
	if r.encoding != "" {
		w.adapter.Set("sub-codepage", mpv.String(r.encoding))
	}
	w.adapter.CommandAsync("sub-add", r.path, "select")
}

func (r commandRequest) perform(w *worker) {
	w.adapter.CommandAsync(r.args...)
}

// worker owns every backend call after initialization. It turns backend
// events into messages for the engine state.
type worker struct {
	adapter  *adapter
	backend  mpv.Backend
	log      *logrus.Entry
	metrics  *metrics.Metrics
	out      *channel
	requests *queue.Queue[request]
	quit     *atomic.Bool
	poll     time.Duration
	now      func() time.Time

	requested      Mrl
	requestedImage bool

	// per file, reset on start-file
	locator  Mrl
	image    bool
	errored  bool
	timing   bool
	first    bool
	posted   bool
	position int
	cache    int
	paused   mpv.PauseReason

	logs map[string]string
}

func newWorker(env Env, a *adapter, out *channel, requests *queue.Queue[request], quit *atomic.Bool, poll time.Duration) *worker {
	return &worker{
		adapter:  a,
		backend:  env.Backend,
		log:      env.Log,
		metrics:  env.Metrics,
		out:      out,
		requests: requests,
		quit:     quit,
		poll:     poll,
		now:      env.Now,
		position: -1,
		cache:    -1,
		logs:     make(map[string]string),
	}
}

func (w *worker) post(m message) {
	w.out.post(m)
}

// run is the event loop. It returns once the backend shut down, after
// posting a final end of playback if the current file never got one.
func (w *worker) run() {
	defer w.out.close()
	defer w.requests.Close()

	var quitAt time.Time
	for {
		w.metrics.LoopIterations.Inc()

		for _, r := range w.requests.Drain() {
			r.perform(w)
		}

		if w.quit.Load() && quitAt.IsZero() {
			quitAt = w.now()
		}

		if !w.handle(w.backend.WaitEvent(w.poll)) {
			break
		}

		if !quitAt.IsZero() && w.now().Sub(quitAt) > quitTimeout {
			w.log.Warn("backend did not confirm quit, leaving event loop")
			break
		}
	}

	if !w.posted {
		w.post(endPlaybackMsg{locator: w.locator, err: w.errored})
		w.posted = true
	}
}

// handle reacts to one event and reports whether the loop should go on.
func (w *worker) handle(ev mpv.Event) bool {
	switch ev.ID {
	case mpv.EventNone:
		w.tick()
	case mpv.EventShutdown:
		return false
	case mpv.EventLogMessage:
		if msg, ok := ev.Data.(mpv.LogMessage); ok {
			w.logMessage(msg)
		}
	case mpv.EventSetPropertyReply, mpv.EventCommandReply:
		w.adapter.Reply(ev)
	case mpv.EventStartFile:
		w.startFile()
	case mpv.EventFileLoaded:
		w.fileLoaded()
	case mpv.EventEndFile:
		end, _ := ev.Data.(mpv.EndFile)
		w.endFile(end)
	case mpv.EventTracksChanged:
		w.tracksChanged()
	case mpv.EventTrackSwitched:
		w.trackSwitched()
	case mpv.EventPause, mpv.EventUnpause:
		reason, _ := ev.Data.(mpv.PauseReason)
		w.pauseChanged(reason)
	case mpv.EventAudioReconfig:
		w.audioReconfig()
	case mpv.EventVideoReconfig:
		w.videoReconfig()
	}
	return true
}

func toMillis(seconds float64) int {
	return int(math.Round(seconds * 1000))
}

func (w *worker) tick() {
	if !w.timing {
		return
	}

	if pos := toMillis(w.adapter.Double("time-pos", 0)); pos != w.position && pos > 0 {
		w.position = pos
		if w.first {
			w.first = false
			w.post(timeRangeMsg{
				begin:    toMillis(w.adapter.Double("time-start", 0)),
				duration: toMillis(w.adapter.Double("duration", 0)),
			})
			w.post(chaptersMsg{chapters: w.chapters()})
		}
		w.post(tickMsg{position: pos, avsync: toMillis(w.adapter.Double("avsync", 0))})
	}

	if cache := w.adapter.Int("cache-buffering-state", -1); cache != w.cache {
		w.cache = cache
		w.post(cacheMsg{cache: cache})
	}
}

func (w *worker) chapters() ChapterList {
	node, ok := w.adapter.Node("chapter-list").Get()
	if !ok {
		return nil
	}

	items, _ := node.AsList()
	chapters := make(ChapterList, 0, len(items))
	for i, item := range items {
		seconds, _ := item.Get("time").AsDouble()
		title, _ := item.Get("title").AsString()

		ms := toMillis(seconds)
		if title == "" {
			title = util.FormatMillis(ms)
		}
		chapters = append(chapters, Chapter{ID: i, Time: ms, Title: title})
	}
	return chapters
}

// logMessage reassembles backend log text by prefix and logs complete lines.
func (w *worker) logMessage(msg mpv.LogMessage) {
	buffer := w.logs[msg.Prefix] + msg.Text
	for {
		i := strings.IndexByte(buffer, '\n')
		if i < 0 {
			break
		}
		w.log.Logf(logLevel(msg.Level), "[mpv/%s] %s", msg.Prefix, buffer[:i])
		buffer = buffer[i+1:]
	}

	if buffer == "" {
		delete(w.logs, msg.Prefix)
	} else {
		w.logs[msg.Prefix] = buffer
	}
}

func logLevel(level string) logrus.Level {
	switch level {
	case "fatal", "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info", "status":
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

func (w *worker) startFile() {
	w.locator = w.requested
	w.image = w.requestedImage
	w.errored = true
	w.timing = false
	w.posted = false
	w.position = -1

	w.post(stateChangeMsg{state: Loading})
	w.post(preparePlaybackMsg{})
}

func (w *worker) fileLoaded() {
	w.errored = false
	w.timing = true
	w.first = true

	w.post(startPlaybackMsg{
		title:    w.adapter.String("media-title", ""),
		seekable: w.adapter.Flag("seekable", false),
	})

	// files loaded paused never see a pause transition
	if w.paused.RealPaused && !w.image {
		w.post(stateChangeMsg{state: pauseState(w.paused)})
	}
}

func (w *worker) endFile(end mpv.EndFile) {
	w.timing = false
	if end.Reason == mpv.EndReasonError {
		w.errored = true
		w.log.WithField("locator", w.locator).Warnf("playback failed: %s", end.Error)
	}

	w.post(endPlaybackMsg{locator: w.locator, err: w.errored})
	w.posted = true
}

func (w *worker) tracksChanged() {
	tables := [streamTypeCount]map[int]Stream{{}, {}, {}}

	if node, ok := w.adapter.Node("track-list").Get(); ok {
		items, _ := node.AsList()
		for _, item := range items {
			kind, _ := item.Get("type").AsString()
			t, ok := streamTypeOf(kind)
			if !ok {
				continue
			}
			s := trackStream(t, item)
			tables[t][s.ID] = s
		}
	}

	var msg tracksMsg
	for _, t := range StreamTypes {
		msg.streams[t] = newStreamList(tables[t])
	}
	w.post(msg)
}

func trackStream(t StreamType, item mpv.Node) Stream {
	id, _ := item.Get("id").AsInt()
	s := Stream{Type: t, ID: int(id)}
	s.Codec, _ = item.Get("codec").AsString()
	s.Language, _ = item.Get("lang").AsString()
	s.Title, _ = item.Get("title").AsString()
	s.Default, _ = item.Get("default").AsFlag()
	s.Selected, _ = item.Get("selected").AsFlag()
	s.AlbumArt, _ = item.Get("albumart").AsFlag()

	if external, _ := item.Get("external").AsFlag(); external {
		s.File, _ = item.Get("external-filename").AsString()
		if s.Title == "" && s.File != "" {
			s.Title = filepath.Base(s.File)
		}
	}
	return s
}

func (w *worker) trackSwitched() {
	var msg currentStreamsMsg
	for _, t := range StreamTypes {
		msg.ids[t] = w.trackID(t.property())
	}
	w.post(msg)
}

// trackID reads vid/aid/sid, which are "no" rather than an id when unset.
func (w *worker) trackID(name string) int {
	node, ok := w.adapter.Node(name).Get()
	if !ok {
		return StreamNone
	}
	if id, ok := node.AsInt(); ok {
		return int(id)
	}
	return StreamNone
}

func pauseState(reason mpv.PauseReason) PlaybackState {
	switch {
	case !reason.RealPaused:
		return Playing
	case reason.ByCache:
		return Buffering
	default:
		return Paused
	}
}

func (w *worker) pauseChanged(reason mpv.PauseReason) {
	w.paused = reason
	// still images are timed by the engine and always stay paused in the backend
	if !w.timing || w.image {
		return
	}
	w.post(stateChangeMsg{state: pauseState(reason)})
}

func (w *worker) format(name string) map[string]mpv.Node {
	node, ok := w.adapter.Node(name).Get()
	if !ok {
		return nil
	}
	m, _ := node.AsMap()
	return m
}

func intOf(params map[string]mpv.Node, key string) int {
	v, _ := params[key].AsInt()
	return int(v)
}

func stringOf(params map[string]mpv.Node, key string) string {
	v, _ := params[key].AsString()
	return v
}

func (w *worker) audioReconfig() {
	in := w.format("audio-params")
	out := w.format("audio-out-params")

	info := AvInfo{
		Codec:            w.adapter.String("audio-codec-name", ""),
		CodecDescription: w.adapter.String("audio-codec", ""),
		Driver:           w.adapter.String("current-ao", ""),
		Input: AvIoFormat{
			Type:       stringOf(in, "format"),
			Samplerate: intOf(in, "samplerate"),
			Channels:   intOf(in, "channel-count"),
			Bitrate:    int64(w.adapter.Int("audio-bitrate", 0)),
		},
		Output: AvIoFormat{
			Type:       stringOf(out, "format"),
			Samplerate: intOf(out, "samplerate"),
			Channels:   intOf(out, "channel-count"),
		},
	}
	w.post(audioInfoMsg{info: info})
}

func (w *worker) videoReconfig() {
	in := w.format("video-params")
	out := w.format("video-out-params")
	fps := w.adapter.Double("container-fps", 0)

	info := AvInfo{
		Codec:            w.adapter.String("video-format", ""),
		CodecDescription: w.adapter.String("video-codec", ""),
		Driver:           w.adapter.String("current-vo", ""),
		Input: AvIoFormat{
			Type:    stringOf(in, "pixelformat"),
			Width:   intOf(in, "w"),
			Height:  intOf(in, "h"),
			Fps:     fps,
			Bitrate: int64(w.adapter.Int("video-bitrate", 0)),
		},
		Output: AvIoFormat{
			Type:   stringOf(out, "pixelformat"),
			HwType: stringOf(out, "hw-pixelformat"),
			Width:  intOf(out, "dw"),
			Height: intOf(out, "dh"),
			Fps:    fps,
		},
	}
	w.post(videoInfoMsg{info: info})
}
