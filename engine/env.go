package engine

import (
	"errors"
	"io"
	"time"

	"github.com/reelplay/reel/metrics"
	"github.com/reelplay/reel/mpv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	// ErrInitialize wraps a fatal backend setup failure.
	ErrInitialize = errors.New("backend initialization failed")
	// ErrShutdown is returned by AddSubtitleFile after Shutdown.
	ErrShutdown = errors.New("engine is shut down")
	// ErrNoSubtitle is returned for missing subtitle files.
	ErrNoSubtitle = errors.New("subtitle file not found")
)

// Env carries everything an engine needs from its host. Nothing in this
// package reaches for globals.
type Env struct {
	Backend mpv.Backend
	Log     *logrus.Entry
	Metrics *metrics.Metrics
	// Fs resolves external subtitle files.
	Fs  afero.Fs
	Now func() time.Time
}

func (env Env) withDefaults() Env {
	if env.Log == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		env.Log = logrus.NewEntry(logger)
	}
	if env.Metrics == nil {
		env.Metrics = metrics.New()
	}
	if env.Fs == nil {
		env.Fs = afero.NewOsFs()
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	return env
}

// Options are read once when the engine is built.
type Options struct {
	// Verbose is the backend log level to forward; "no" disables forwarding.
	Verbose string
	// BackendOptions is a raw "--key=value --no-key" override string.
	BackendOptions string
	AudioDriver    string
	// Poll bounds each wait for backend events.
	Poll time.Duration

	Volume           int
	Amp              float64
	CacheForPlayback int
	CacheForSeeking  int
	// ImageDuration is how long a still image is shown, in milliseconds.
	ImageDuration int
	HwAccCodecs   []string
}

func DefaultOptions() Options {
	return Options{
		Verbose:          "warn",
		Poll:             10 * time.Millisecond,
		Volume:           100,
		Amp:              1,
		CacheForPlayback: 20,
		CacheForSeeking:  50,
		ImageDuration:    5000,
	}
}

// backendDefaults are applied before the overrides from Options.
var backendDefaults = []mpv.Option{
	{Name: "input-default-bindings", Value: "no"},
	{Name: "input-vo-keyboard", Value: "no"},
	{Name: "osd-level", Value: "0"},
	{Name: "sub-auto", Value: "no"},
	{Name: "audio-file-auto", Value: "no"},
	{Name: "keep-open", Value: "no"},
	{Name: "volume-max", Value: "1000"},
}
