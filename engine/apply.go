package engine

import "slices"

// eofThreshold is how close to the end a session must stop to count as
// having reached it, in milliseconds.
const eofThreshold = 500

func (e *Engine) apply(m message) {
	e.metrics.MessagesApplied.WithLabelValues(m.kind().String()).Inc()

	switch m := m.(type) {
	case stateChangeMsg:
		e.update(func() []Notification { return e.setState(m.state) })
	case preparePlaybackMsg:
		e.update(e.preparePlayback)
	case startPlaybackMsg:
		e.update(func() []Notification { return e.startPlayback(m) })
	case endPlaybackMsg:
		e.endPlayback(m)
	case timeRangeMsg:
		e.update(func() []Notification { return e.setTimeRange(m.begin, m.duration) })
	case chaptersMsg:
		e.update(func() []Notification { return e.setChapters(m.chapters) })
	case tickMsg:
		e.update(func() []Notification {
			e.avsync = m.avsync
			return e.setPosition(m.position)
		})
	case cacheMsg:
		e.update(func() []Notification {
			if e.cache == m.cache {
				return nil
			}
			e.cache = m.cache
			return []Notification{CacheChanged{Cache: m.cache}}
		})
	case tracksMsg:
		e.update(func() []Notification { return e.setStreams(m.streams) })
	case currentStreamsMsg:
		e.update(func() []Notification { return e.setCurrentStreams(m.ids) })
	case audioInfoMsg:
		e.update(func() []Notification {
			e.audio = m.info
			return []Notification{AudioInfoChanged{Info: m.info}}
		})
	case videoInfoMsg:
		e.update(func() []Notification { return e.setVideoInfo(m.info) })
	default:
		e.log.Warnf("unhandled message %T", m)
	}
}

// setState must be called with the lock held.
func (e *Engine) setState(s PlaybackState) []Notification {
	if e.state == s {
		return nil
	}

	from := e.state
	e.state = s
	e.metrics.StateTransitions.WithLabelValues(s.String()).Inc()
	e.log.WithField("from", from.String()).Debugf("state %s", s)

	notes := []Notification{StateChanged{From: from, To: s}}
	if running := s.IsRunning(); running != from.IsRunning() {
		notes = append(notes, RunningChanged{Running: running})
	}
	e.syncImageClock()
	return notes
}

func (e *Engine) preparePlayback() []Notification {
	e.imageEnded = false
	e.position = -1
	e.cursor.rewind()

	if len(e.subFiles) == 0 {
		return nil
	}
	e.subFiles = nil
	return []Notification{SubtitleFilesChanged{}}
}

func (e *Engine) startPlayback(m startPlaybackMsg) []Notification {
	var notes []Notification

	if e.seekable != m.seekable {
		e.seekable = m.seekable
		notes = append(notes, SeekableChanged{Seekable: m.seekable})
	}

	e.title = m.title
	notes = append(notes, e.updateMediaName()...)

	if e.hasImage {
		e.image.reset(e.imageDuration)
		notes = append(notes, e.setTimeRange(0, e.imageDuration)...)
		notes = append(notes, e.setPosition(0)...)
	}

	notes = append(notes, e.setState(Playing)...)
	return append(notes, Started{Locator: e.startInfo.Locator})
}

// endPlayback settles a session. The next media request goes out between
// two locked sections so a subscriber can stage the next media in response.
func (e *Engine) endPlayback(m endPlaybackMsg) {
	e.mu.Lock()
	remaining := e.duration + e.begin - e.position
	eof := remaining <= eofThreshold
	quit := e.quit.Load()
	position := e.position
	e.mu.Unlock()

	if !m.err && eof && !quit {
		e.emit(NextRequested{Locator: m.locator})
	}

	e.mu.Lock()
	next := e.next
	load := next.IsValid() && !quit

	var notes []Notification
	switch {
	case m.err:
		notes = e.setState(Error)
	case load:
		notes = e.setState(Loading)
	default:
		notes = e.setState(Stopped)
	}

	if !m.err && !m.locator.IsEmpty() {
		notes = append(notes, Finished{Locator: m.locator, Position: position, Remaining: remaining})
	}
	if load {
		e.next = StartInfo{}
	}
	e.mu.Unlock()

	e.emit(notes...)
	if load {
		e.load(next)
	}
}

func (e *Engine) setTimeRange(begin, duration int) []Notification {
	var notes []Notification
	end := e.begin + e.duration

	if e.begin != begin {
		e.begin = begin
		notes = append(notes, BeginChanged{Begin: begin})
	}
	if e.duration != duration {
		e.duration = duration
		notes = append(notes, DurationChanged{Duration: duration})
	}
	if end != begin+duration {
		notes = append(notes, EndChanged{End: begin + duration})
	}
	return notes
}

func (e *Engine) setPosition(pos int) []Notification {
	e.position = pos
	notes := []Notification{
		Tick{Position: pos},
		RelativePositionChanged{Position: e.relativePosition()},
	}

	if id := e.cursor.resolve(pos); id != e.chapter {
		e.chapter = id
		notes = append(notes, CurrentChapterChanged{ID: id})
	}
	return notes
}

func (e *Engine) relativePosition() float64 {
	if e.duration <= 0 {
		return 0
	}
	return float64(e.position-e.begin) / float64(e.duration)
}

func (e *Engine) setChapters(chapters ChapterList) []Notification {
	if e.chapters.Equal(chapters) {
		return nil
	}

	e.chapters = chapters
	e.cursor.reset(chapters)
	notes := []Notification{ChaptersChanged{Chapters: slices.Clone(chapters)}}

	if e.position >= 0 {
		if id := e.cursor.resolve(e.position); id != e.chapter {
			e.chapter = id
			notes = append(notes, CurrentChapterChanged{ID: id})
		}
	}
	return notes
}

func (e *Engine) setStreams(tables [streamTypeCount]StreamList) []Notification {
	var notes []Notification

	for _, t := range StreamTypes {
		if e.streams[t].Equal(tables[t]) {
			continue
		}

		e.streams[t] = tables[t]
		notes = append(notes, StreamsChanged{Type: t, Streams: slices.Clone(tables[t])})

		if id := tables[t].SelectedID(); id != e.current[t] {
			e.current[t] = id
			notes = append(notes, CurrentStreamChanged{Type: t, ID: id})
		}

		switch t {
		case VideoStream:
			if has := len(tables[t]) > 0; has != e.hasVideo {
				e.hasVideo = has
				notes = append(notes, HasVideoChanged{HasVideo: has})
			}
		case AudioStream:
			e.audioTrack = AudioTrackInfo{Count: len(tables[t]), Current: e.current[t]}
			notes = append(notes, AudioTrackInfoChanged{Info: e.audioTrack})
		}
	}
	return notes
}

func (e *Engine) setCurrentStreams(ids [streamTypeCount]int) []Notification {
	var notes []Notification

	for _, t := range StreamTypes {
		id := ids[t]
		if id == e.current[t] {
			continue
		}

		e.current[t] = id
		e.streams[t] = e.streams[t].withSelected(id)
		notes = append(notes, CurrentStreamChanged{Type: t, ID: id})

		if t == AudioStream {
			e.audioTrack.Current = id
			notes = append(notes, AudioTrackInfoChanged{Info: e.audioTrack})
		}
	}
	return notes
}

func (e *Engine) setVideoInfo(info AvInfo) []Notification {
	info.Output.Bitrate = outputBitrate(info.Output)
	info.HwAcc = classifyHwAcc(info.Codec, info.Output.Type, e.hwCodecs)
	e.video = info

	notes := []Notification{VideoInfoChanged{Info: info}}
	if info.HwAcc != e.hwacc {
		e.hwacc = info.HwAcc
		notes = append(notes, HwAccChanged{HwAcc: info.HwAcc})
	}
	return notes
}

func (e *Engine) updateMediaName() []Notification {
	name := mediaName(e.startInfo.Locator, e.title)
	if name == e.mediaName {
		return nil
	}
	e.mediaName = name
	return []Notification{MediaNameChanged{Name: name}}
}
