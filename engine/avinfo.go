package engine

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
)

// AvIoFormat is one side (decoder input or output) of an audio or video path.
type AvIoFormat struct {
	// Type is the sample or pixel format. Under hardware decoding it is the
	// surface type, such as vaapi.
	Type       string
	// HwType is the software format carried by a hardware surface.
	HwType     string
	Width      int
	Height     int
	Fps        float64
	Samplerate int
	Channels   int
	// Bitrate is in bits per second, 0 when unknown.
	Bitrate int64
}

// BitrateText is the bitrate with an SI prefix, "" when unknown.
func (f AvIoFormat) BitrateText() string {
	if f.Bitrate <= 0 {
		return ""
	}
	return humanize.SIWithDigits(float64(f.Bitrate), 1, "bps")
}

// Summary is a compact one-line description.
func (f AvIoFormat) Summary() string {
	var parts []string
	if f.Type != "" {
		parts = append(parts, f.Type)
	}
	if f.Width > 0 && f.Height > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", f.Width, f.Height))
	}
	if f.Fps > 0 {
		parts = append(parts, fmt.Sprintf("%.3gfps", f.Fps))
	}
	if f.Samplerate > 0 {
		parts = append(parts, humanize.SIWithDigits(float64(f.Samplerate), 1, "Hz"))
	}
	if f.Channels > 0 {
		parts = append(parts, fmt.Sprintf("%dch", f.Channels))
	}
	if rate := f.BitrateText(); rate != "" {
		parts = append(parts, rate)
	}
	return strings.Join(parts, " ")
}

// AvInfo summarizes the active audio or video path. A new summary replaces the
// previous one on every reconfiguration.
type AvInfo struct {
	Codec            string
	CodecDescription string
	// Driver is the audio or video output in use.
	Driver string
	Input  AvIoFormat
	Output AvIoFormat
	// HwAcc is only meaningful for video.
	HwAcc HardwareAcceleration
}

// bitsPerPixel of common output formats; unknown formats count as 0.
func bitsPerPixel(format string) int {
	switch format {
	case "nv12", "yuv420p", "yv12", "i420", "vaapi", "vdpau", "vda", "videotoolbox",
		"cuda", "d3d11", "dxva2", "drm_prime", "mediacodec":
		return 12
	case "yuv420p10", "yuv420p10le", "p010", "p010le":
		return 15
	case "yuyv422", "uyvy422", "yuv422p", "nv16":
		return 16
	case "rgb24", "bgr24", "yuv444p":
		return 24
	case "yuv444p10", "yuv444p10le":
		return 30
	case "rgba", "bgra", "argb", "abgr", "rgb0", "bgr0", "0rgb", "0bgr":
		return 32
	default:
		return 0
	}
}

// outputBitrate is the raw bitrate of decoded frames: w*h*bpp*fps.
func outputBitrate(f AvIoFormat) int64 {
	return int64(float64(f.Width*f.Height*bitsPerPixel(lo.CoalesceOrEmpty(f.HwType, f.Type))) * f.Fps)
}
