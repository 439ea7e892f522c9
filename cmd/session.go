package cmd

import (
	"fmt"

	"github.com/reelplay/reel/engine"
	"github.com/reelplay/reel/log"
	"github.com/reelplay/reel/util"
	"github.com/samber/mo"
)

// playlist hands out the locators given on the command line, in order.
type playlist struct {
	items []engine.StartInfo
	index int
}

func newPlaylist(locators []string, cache int) *playlist {
	items := make([]engine.StartInfo, 0, len(locators))
	for _, locator := range locators {
		items = append(items, engine.StartInfo{Locator: engine.Mrl(locator), Cache: cache})
	}
	return &playlist{items: items}
}

func (p *playlist) next() (engine.StartInfo, bool) {
	if p.index >= len(p.items) {
		return engine.StartInfo{}, false
	}
	item := p.items[p.index]
	p.index++
	return item, true
}

func (p *playlist) remaining() int {
	return len(p.items) - p.index
}

// controller is the part of the engine a session drives.
type controller interface {
	Load(info engine.StartInfo)
	StageNext(info engine.StartInfo)
	StagedNext() mo.Option[engine.StartInfo]
	AddSubtitleFile(path, encoding string) error
	Shutdown()
}

// session reacts to engine notifications on the owner goroutine: it stages
// the following item near the end of each one, skips items that fail and
// shuts the engine down once the playlist is exhausted.
type session struct {
	engine      controller
	playlist    *playlist
	subtitles   []string
	subEncoding string

	started int
	failed  int
	err     error
}

func (s *session) handle(n engine.Notification) {
	switch n := n.(type) {
	case engine.Started:
		s.started++
		if s.started == 1 {
			s.addSubtitles()
		}
	case engine.NextRequested:
		if next, ok := s.playlist.next(); ok {
			s.engine.StageNext(next)
		}
	case engine.StateChanged:
		switch n.To {
		case engine.Error:
			s.failed++
			s.err = fmt.Errorf("could not play %d of %s", s.failed, util.Quantify(len(s.playlist.items), "item", "items"))
			s.advance()
		case engine.Stopped:
			if s.engine.StagedNext().IsAbsent() {
				s.advance()
			}
		}
	}
}

func (s *session) addSubtitles() {
	for _, path := range s.subtitles {
		if err := s.engine.AddSubtitleFile(path, s.subEncoding); err != nil {
			log.Warnf("subtitle %s: %s", path, err)
		}
	}
}

// advance loads the next item, or ends the session when there is none.
func (s *session) advance() {
	if next, ok := s.playlist.next(); ok {
		s.engine.Load(next)
		return
	}
	s.engine.Shutdown()
}
