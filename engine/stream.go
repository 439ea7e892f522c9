package engine

import (
	"slices"
	"strconv"
)

// StreamType is the kind of an elementary stream.
type StreamType int

const (
	VideoStream StreamType = iota
	AudioStream
	SubtitleStream

	streamTypeCount
)

// StreamNone is the current id of a type with no active stream.
const StreamNone = -1

// StreamTypes lists the stream types in notification order.
var StreamTypes = [streamTypeCount]StreamType{VideoStream, AudioStream, SubtitleStream}

func (t StreamType) String() string {
	switch t {
	case VideoStream:
		return "video"
	case AudioStream:
		return "audio"
	case SubtitleStream:
		return "subtitle"
	default:
		return "unknown"
	}
}

// property is the backend property selecting the active stream of t.
func (t StreamType) property() string {
	switch t {
	case VideoStream:
		return "vid"
	case AudioStream:
		return "aid"
	default:
		return "sid"
	}
}

// streamTypeOf classifies a backend track kind by its first character.
func streamTypeOf(kind string) (StreamType, bool) {
	if kind == "" {
		return 0, false
	}
	switch kind[0] {
	case 'v':
		return VideoStream, true
	case 'a':
		return AudioStream, true
	case 's':
		return SubtitleStream, true
	default:
		return 0, false
	}
}

// Stream describes one track of the current media. Identity is (Type, ID).
type Stream struct {
	Type     StreamType
	ID       int
	Codec    string
	Language string
	Title    string
	// File is the path of an externally loaded track.
	File     string
	Default  bool
	Selected bool
	AlbumArt bool
}

func (s Stream) IsExternal() bool {
	return s.File != ""
}

// Name is a human readable label for the stream.
func (s Stream) Name() string {
	switch {
	case s.Title != "" && s.Language != "":
		return s.Title + " (" + s.Language + ")"
	case s.Title != "":
		return s.Title
	case s.Language != "":
		return s.Language
	default:
		return "#" + strconv.Itoa(s.ID)
	}
}

// StreamList holds the streams of one type ordered by id.
type StreamList []Stream

func newStreamList(streams map[int]Stream) StreamList {
	list := make(StreamList, 0, len(streams))
	for _, s := range streams {
		list = append(list, s)
	}
	slices.SortFunc(list, func(a, b Stream) int { return a.ID - b.ID })
	return list
}

func (l StreamList) Find(id int) (Stream, bool) {
	i := slices.IndexFunc(l, func(s Stream) bool { return s.ID == id })
	if i < 0 {
		return Stream{}, false
	}
	return l[i], true
}

func (l StreamList) Contains(id int) bool {
	_, ok := l.Find(id)
	return ok
}

// SelectedID returns the id of the selected stream, or StreamNone.
func (l StreamList) SelectedID() int {
	for _, s := range l {
		if s.Selected {
			return s.ID
		}
	}
	return StreamNone
}

func (l StreamList) Equal(o StreamList) bool {
	return slices.Equal(l, o)
}

// withSelected returns a copy where only the stream with id is selected.
func (l StreamList) withSelected(id int) StreamList {
	out := slices.Clone(l)
	for i := range out {
		out[i].Selected = out[i].ID == id
	}
	return out
}

// AudioTrackInfo summarizes the audio table for track pickers.
type AudioTrackInfo struct {
	Count   int
	Current int
}

// SubtitleFile is an external subtitle added by the consumer.
type SubtitleFile struct {
	Path     string
	Encoding string
}
