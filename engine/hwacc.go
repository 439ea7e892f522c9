package engine

import "slices"

// HardwareAcceleration is derived from the negotiated video path.
type HardwareAcceleration int

const (
	HwAccUnavailable HardwareAcceleration = iota
	HwAccDeactivated
	HwAccActivated
)

func (h HardwareAcceleration) String() string {
	switch h {
	case HwAccDeactivated:
		return "deactivated"
	case HwAccActivated:
		return "activated"
	default:
		return "unavailable"
	}
}

// SupportedHwAccCodecs are the codecs a hardware decoder may handle.
var SupportedHwAccCodecs = []string{
	"h264", "hevc", "mpeg1video", "mpeg2video", "mpeg4", "vc1", "wmv3", "vp8", "vp9", "av1",
}

// hardware surface formats reported as the output pixel format
var surfaceTypes = []string{
	"vaapi", "vdpau", "vda", "videotoolbox", "cuda", "d3d11", "dxva2", "drm_prime", "mediacodec",
}

// classifyHwAcc applies the policy in order: unsupported codec, hardware
// surface in use, codec filtered by the configured list, eligible but unused.
func classifyHwAcc(codec, output string, enabled []string) HardwareAcceleration {
	switch {
	case !slices.Contains(SupportedHwAccCodecs, codec):
		return HwAccUnavailable
	case slices.Contains(surfaceTypes, output):
		return HwAccActivated
	case !slices.Contains(enabled, codec):
		return HwAccUnavailable
	default:
		return HwAccDeactivated
	}
}
