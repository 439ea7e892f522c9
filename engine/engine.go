// Package engine drives an mpv backend and keeps a consistent view of playback.
//
// A worker goroutine is the only caller of the backend. It turns backend
// events into messages that the owner goroutine applies, one at a time, in
// Run or ProcessPending. Subscribers are notified after each message has been
// fully applied, on the owner goroutine, and may call back into the engine.
package engine

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reelplay/reel/internal/queue"
	"github.com/reelplay/reel/metrics"
	"github.com/reelplay/reel/mpv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type Engine struct {
	backend mpv.Backend
	log     *logrus.Entry
	metrics *metrics.Metrics
	fs      afero.Fs
	now     func() time.Time

	adapter  *adapter
	worker   *worker
	channel  *channel
	requests *queue.Queue[request]

	quit      atomic.Bool
	started   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	wake      chan struct{}

	subMu   sync.RWMutex
	subs    map[int]func(Notification)
	nextSub int

	mu sync.RWMutex

	state     PlaybackState
	startInfo StartInfo
	next      StartInfo
	hasImage  bool
	title     string
	mediaName string
	seekable  bool

	position int
	begin    int
	duration int
	cache    int
	avsync   int

	chapters ChapterList
	cursor   chapterCursor
	chapter  int

	streams    [streamTypeCount]StreamList
	current    [streamTypeCount]int
	hasVideo   bool
	audioTrack AudioTrackInfo
	audio      AvInfo
	video      AvInfo
	hwacc      HardwareAcceleration

	volume     int
	amp        float64
	muted      bool
	speed      float64
	audioSync  int
	subDelay   int
	subVisible bool
	subFiles   []SubtitleFile

	cacheForPlayback int
	cacheForSeeking  int
	hwCodecs         []string

	image         imageClock
	imageDuration int
	imageEnded    bool
	ticker        *time.Ticker
}

// New configures and initializes the backend. A failure here is fatal for
// the engine: the error wraps ErrInitialize and the backend is destroyed.
func New(env Env, opts Options) (*Engine, error) {
	env = env.withDefaults()
	if opts.Poll <= 0 {
		opts.Poll = DefaultOptions().Poll
	}

	e := &Engine{
		backend:  env.Backend,
		log:      env.Log,
		metrics:  env.Metrics,
		fs:       env.Fs,
		now:      env.Now,
		channel:  newChannel(env.Metrics),
		requests: queue.New[request](),
		done:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
		subs:     make(map[int]func(Notification)),

		chapter:          ChapterNone,
		current:          [streamTypeCount]int{StreamNone, StreamNone, StreamNone},
		position:         -1,
		cache:            -1,
		volume:           clampVolume(opts.Volume),
		amp:              clampAmp(opts.Amp),
		speed:            1,
		subVisible:       true,
		cacheForPlayback: clampPercent(opts.CacheForPlayback),
		cacheForSeeking:  clampPercent(opts.CacheForSeeking),
		hwCodecs:         slices.Clone(opts.HwAccCodecs),
		imageDuration:    opts.ImageDuration,
	}
	e.adapter = newAdapter(env)

	if err := e.configure(opts); err != nil {
		e.backend.Destroy()
		return nil, err
	}

	e.worker = newWorker(env, e.adapter, e.channel, e.requests, &e.quit, opts.Poll)
	return e, nil
}

func (e *Engine) configure(opts Options) error {
	for _, o := range backendDefaults {
		if err := e.adapter.setOption(o.Name, o.Value); err != nil {
			return e.adapter.fatal(err, "set option "+o.Name+"="+o.Value)
		}
	}
	if opts.AudioDriver != "" {
		if err := e.adapter.setOption("ao", opts.AudioDriver); err != nil {
			return e.adapter.fatal(err, "set option ao="+opts.AudioDriver)
		}
	}

	if opts.Verbose != "" {
		e.adapter.check(e.backend.RequestLogMessages(opts.Verbose), "request log messages")
	}

	overrides, errs := mpv.ParseOptions(opts.BackendOptions)
	for _, err := range errs {
		e.log.WithError(err).Error("skipping backend option")
	}
	for _, o := range overrides {
		e.adapter.check(e.adapter.setOption(o.Name, o.Value), "set option "+o.Name+"="+o.Value)
	}

	if err := e.backend.Initialize(); err != nil {
		return e.adapter.fatal(err, "initialize backend")
	}
	return nil
}

// Start launches the worker. Subscribe first to see every notification.
func (e *Engine) Start() {
	if e.started.Swap(true) {
		return
	}
	go func() {
		defer close(e.done)
		e.worker.run()
	}()
}

// Run applies worker messages on the calling goroutine, which becomes the
// owner of the engine state, and drives the still image clock. It returns
// once the worker has stopped and every message was applied, or when ctx
// is done.
func (e *Engine) Run(ctx context.Context) error {
	for {
		e.mu.RLock()
		var tick <-chan time.Time
		if e.ticker != nil {
			tick = e.ticker.C
		}
		e.mu.RUnlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.channel.ready():
			e.ProcessPending()
		case <-e.channel.done():
			e.ProcessPending()
			return nil
		case <-tick:
			e.imageTick()
		case <-e.wake:
		}
	}
}

// ProcessPending applies every queued message and returns how many there were.
// It is for owners that run their own loop instead of Run.
func (e *Engine) ProcessPending() int {
	n := 0
	for {
		m, ok := e.channel.receive()
		if !ok {
			return n
		}
		e.apply(m)
		n++
	}
}

// Shutdown asks the backend to quit. The worker stops after the backend
// confirms, posting a final end of playback.
func (e *Engine) Shutdown() {
	if e.quit.Swap(true) {
		return
	}
	e.mu.Lock()
	e.next = StartInfo{}
	e.stopTicker()
	e.mu.Unlock()

	e.send(commandRequest{args: []string{"quit"}})
}

// Wait blocks until the worker has exited. Messages it posted may still be
// pending; Run or ProcessPending applies them.
func (e *Engine) Wait() {
	if !e.started.Load() {
		return
	}
	<-e.done
}

// Close shuts down, waits for the worker and destroys the backend once.
func (e *Engine) Close() {
	e.Shutdown()
	e.Wait()
	e.closeOnce.Do(func() {
		e.backend.Destroy()
		e.mu.Lock()
		e.stopTicker()
		e.mu.Unlock()
	})
}

// Subscribe registers f for every notification and returns its cancel func.
func (e *Engine) Subscribe(f func(Notification)) (unsubscribe func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	id := e.nextSub
	e.nextSub++
	e.subs[id] = f

	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Engine) emit(notes ...Notification) {
	if len(notes) == 0 {
		return
	}

	e.subMu.RLock()
	ids := make([]int, 0, len(e.subs))
	for id := range e.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(Notification), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, e.subs[id])
	}
	e.subMu.RUnlock()

	for _, n := range notes {
		for _, f := range subs {
			f(n)
		}
	}
}

// update runs f under the state lock and emits what it returns afterwards.
func (e *Engine) update(f func() []Notification) {
	e.mu.Lock()
	notes := f()
	e.mu.Unlock()
	e.emit(notes...)
}

// send queues r for the worker and wakes it up.
func (e *Engine) send(r request) {
	if e.requests.Push(r) {
		e.backend.Wakeup()
	}
}

// wakeOwner makes Run pick up a new ticker.
func (e *Engine) wakeOwner() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}
