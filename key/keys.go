// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Backend Process - these keys control how the mpv backend is started and what it forwards.
const (
	MpvBinary  = "mpv.binary"
	MpvVerbose = "mpv.verbose"
	MpvOptions = "mpv.options"
)

// Engine Loop - these keys tune the worker's polling cadence.
const (
	EnginePoll = "engine.poll"
)

// Cache - these keys define the network cache hint and the minimum fill thresholds.
const (
	CacheSize     = "cache.size"
	CachePlayback = "cache.playback"
	CacheSeeking  = "cache.seeking"
)

// Audio - these keys set the initial audio controls.
const (
	AudioVolume = "audio.volume"
	AudioAmp    = "audio.amp"
	AudioDriver = "audio.driver"
)

// Video - these keys govern hardware decoding and still image playback.
const (
	HwDecCodecs   = "hwdec.codecs"
	ImageDuration = "image.duration"
)

// Logging Infrastructure - these keys configure the diagnostic logging subsystem.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// Command Line Interface - these keys customize the CLI output.
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)

// Metrics - exposition of the engine collectors.
const (
	MetricsAddress = "metrics.address"
)
