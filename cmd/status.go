package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/reelplay/reel/color"
	"github.com/reelplay/reel/engine"
	"github.com/reelplay/reel/icon"
	"github.com/reelplay/reel/style"
	"github.com/reelplay/reel/util"
)

var stateIcons = map[engine.PlaybackState]icon.Icon{
	engine.Stopped:   icon.Stop,
	engine.Loading:   icon.Load,
	engine.Playing:   icon.Play,
	engine.Paused:    icon.Pause,
	engine.Buffering: icon.Buffer,
	engine.Error:     icon.Fail,
}

// statusLine redraws a single terminal line from engine notifications.
type statusLine struct {
	out   io.Writer
	width func() int

	state    engine.PlaybackState
	name     string
	position int
	duration int
	cache    int
	volume   int
	muted    bool
	chapter  int
	chapters int

	drawn bool
}

func newStatusLine(out io.Writer, width func() int) *statusLine {
	return &statusLine{
		out:      out,
		width:    width,
		position: -1,
		cache:    -1,
		volume:   -1,
		chapter:  engine.ChapterNone,
	}
}

func (s *statusLine) handle(n engine.Notification) {
	switch n := n.(type) {
	case engine.StateChanged:
		s.state = n.To
	case engine.MediaNameChanged:
		s.name = n.Name
	case engine.Tick:
		s.position = n.Position
	case engine.DurationChanged:
		s.duration = n.Duration
	case engine.CacheChanged:
		s.cache = n.Cache
	case engine.VolumeChanged:
		s.volume = n.Volume
	case engine.MutedChanged:
		s.muted = n.Muted
	case engine.ChaptersChanged:
		s.chapters = len(n.Chapters)
	case engine.CurrentChapterChanged:
		s.chapter = n.ID
	case engine.Sought:
		s.position = n.Position
	case engine.Started:
		s.announce(n)
	case engine.Finished:
		s.finish(n)
		return
	default:
		return
	}
	s.draw()
}

func (s *statusLine) render() string {
	var b strings.Builder

	b.WriteString(icon.Get(stateIcons[s.state]))
	b.WriteString(" ")
	b.WriteString(style.Fg(color.Yellow)(util.FormatClock(s.position)))
	if s.duration > 0 {
		b.WriteString(style.Faint(" / " + util.FormatClock(s.duration)))
	}

	if s.chapters > 0 && s.chapter >= 0 {
		b.WriteString(style.Faint(fmt.Sprintf(" ch %d/%d", s.chapter+1, s.chapters)))
	}
	if s.state == engine.Buffering && s.cache >= 0 {
		b.WriteString(style.Fg(color.Cyan)(fmt.Sprintf(" cache %d%%", s.cache)))
	}
	if s.muted {
		b.WriteString(style.Fg(color.Red)(" muted"))
	} else if s.volume >= 0 {
		b.WriteString(style.Faint(fmt.Sprintf(" vol %d", s.volume)))
	}

	if s.name != "" {
		b.WriteString(" ")
		b.WriteString(style.Bold(s.name))
	}

	return b.String()
}

func (s *statusLine) draw() {
	line := truncate.StringWithTail(s.render(), uint(max(s.width()-1, 1)), "…")
	// \x1b[2K erases the previous line whatever its width.
	_, _ = fmt.Fprintf(s.out, "\r\x1b[2K%s", line)
	s.drawn = true
}

func (s *statusLine) announce(n engine.Started) {
	s.clear()
	_, _ = fmt.Fprintf(s.out, "%s %s\n",
		style.Tag(color.White, color.Purple)(n.Locator.DisplayName()),
		style.Italic(s.name),
	)
}

func (s *statusLine) finish(n engine.Finished) {
	s.clear()
	_, _ = fmt.Fprintf(s.out, "%s %s %s\n",
		style.Fg(color.Green)(icon.Get(icon.Success)),
		style.Bold(n.Locator.DisplayName()),
		style.Faint(util.FormatClock(n.Position)),
	)
}

func (s *statusLine) clear() {
	if !s.drawn {
		return
	}
	_, _ = fmt.Fprint(s.out, "\r\x1b[2K")
	s.drawn = false
}
