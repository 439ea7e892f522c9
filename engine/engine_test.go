package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/reelplay/reel/mpv"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestNew(t *testing.T) {
	Convey("Given a mock backend", t, func() {
		mock := mpv.NewMock()
		env, hook := testEnv(mock)

		Convey("Defaults are applied before the overrides", func() {
			opts := DefaultOptions()
			opts.AudioDriver = "pulse"
			opts.BackendOptions = "--hwdec=vaapi  --no-osc bogus --fs"

			e, err := New(env, opts)
			So(err, ShouldBeNil)
			So(e, ShouldNotBeNil)
			So(mock.Initialized(), ShouldBeTrue)
			So(mock.LogLevel(), ShouldEqual, "warn")

			options := mock.Options()
			So(options[:len(backendDefaults)], ShouldResemble, backendDefaults)
			So(options[len(backendDefaults):], ShouldResemble, []mpv.Option{
				{Name: "ao", Value: "pulse"},
				{Name: "hwdec", Value: "vaapi"},
				{Name: "osc", Value: "no"},
				{Name: "fs", Value: "yes"},
			})
		})

		Convey("Malformed overrides are logged and skipped", func() {
			opts := DefaultOptions()
			opts.BackendOptions = "bogus --"

			_, err := New(env, opts)
			So(err, ShouldBeNil)
			So(levels(hook), ShouldResemble, []logrus.Level{logrus.ErrorLevel, logrus.ErrorLevel})
		})

		Convey("A backend that fails to start is fatal", func() {
			mock.FailInitialize(mpv.ErrGeneric)

			e, err := New(env, DefaultOptions())
			So(e, ShouldBeNil)
			So(errors.Is(err, ErrInitialize), ShouldBeTrue)
			So(errors.Is(err, mpv.ErrGeneric), ShouldBeTrue)
			So(hook.LastEntry().Level, ShouldEqual, logrus.FatalLevel)
			So(mock.Destroyed(), ShouldEqual, 1)
		})
	})
}

func TestSession(t *testing.T) {
	Convey("Given an engine", t, func() {
		h := newHarness(DefaultOptions())
		h.mock.SetValue("media-title", mpv.String("Heat"))
		h.mock.SetValue("seekable", mpv.Flag(true))

		Convey("Loading announces the new media", func() {
			h.engine.Load(StartInfo{Locator: "/media/Heat.mkv", Resume: 61500})

			notes := h.take()
			So(notesOf[LocatorChanged](notes), ShouldResemble, []LocatorChanged{{Locator: "/media/Heat.mkv"}})
			So(notesOf[MediaNameChanged](notes), ShouldResemble, []MediaNameChanged{{Name: "File: Heat.mkv"}})

			h.serve()
			load := commandsNamed(h.mock, "loadfile")
			So(load, ShouldHaveLength, 1)
			So(load[0][:4], ShouldResemble, []string{"loadfile", "/media/Heat.mkv", "replace", "-1"})
			So(load[0][4], ShouldContainSubstring, "start=61.500")
			So(load[0][4], ShouldContainSubstring, "pause=no")
			So(load[0][4], ShouldContainSubstring, "volume=100")
			So(load[0][4], ShouldContainSubstring, "hwdec=no")
			So(load[0][4], ShouldContainSubstring, "cache=no")
		})

		Convey("A file goes through loading to playing", func() {
			h.play("/media/Heat.mkv")

			notes := h.take()
			So(notesOf[StateChanged](notes), ShouldResemble, []StateChanged{
				{From: Stopped, To: Loading},
				{From: Loading, To: Playing},
			})
			So(notesOf[RunningChanged](notes), ShouldResemble, []RunningChanged{{Running: true}})
			So(notesOf[Started](notes), ShouldResemble, []Started{{Locator: "/media/Heat.mkv"}})
			So(notesOf[SeekableChanged](notes), ShouldResemble, []SeekableChanged{{Seekable: true}})
			So(h.engine.MediaName(), ShouldEqual, "File: Heat")
			So(h.engine.IsRunning(), ShouldBeTrue)
			So(h.engine.Position(), ShouldEqual, -1)
			So(testutil.ToFloat64(h.engine.metrics.StateTransitions.WithLabelValues("playing")), ShouldEqual, 1)
			So(testutil.ToFloat64(h.engine.metrics.QueueDepth), ShouldEqual, 0)
		})

		Convey("A file that fails before loading ends in error", func() {
			h.engine.Load(StartInfo{Locator: "/media/broken.mkv"})
			h.event(mpv.Event{ID: mpv.EventStartFile})
			h.event(mpv.Event{ID: mpv.EventEndFile, Data: mpv.EndFile{Reason: mpv.EndReasonError}})

			notes := h.take()
			So(notesOf[StateChanged](notes), ShouldResemble, []StateChanged{
				{From: Stopped, To: Loading},
				{From: Loading, To: Error},
			})
			So(notesOf[Finished](notes), ShouldBeEmpty)
			So(notesOf[NextRequested](notes), ShouldBeEmpty)
		})

		Convey("While playing ten seconds of media", func() {
			h.play("/media/Heat.mkv")
			h.post(timeRangeMsg{begin: 0, duration: 10000})

			Convey("Stopping 400ms before the end requests the next media", func() {
				h.post(tickMsg{position: 9600})
				h.take()
				h.event(mpv.Event{ID: mpv.EventEndFile, Data: mpv.EndFile{Reason: mpv.EndReasonEOF}})

				notes := h.take()
				So(notesOf[NextRequested](notes), ShouldResemble, []NextRequested{{Locator: "/media/Heat.mkv"}})
				So(notesOf[Finished](notes), ShouldResemble, []Finished{{Locator: "/media/Heat.mkv", Position: 9600, Remaining: 400}})
				So(h.engine.State(), ShouldEqual, Stopped)
			})

			Convey("Stopping a second before the end does not", func() {
				h.post(tickMsg{position: 9000})
				h.take()
				h.event(mpv.Event{ID: mpv.EventEndFile, Data: mpv.EndFile{Reason: mpv.EndReasonStop}})

				notes := h.take()
				So(notesOf[NextRequested](notes), ShouldBeEmpty)
				So(notesOf[Finished](notes), ShouldResemble, []Finished{{Locator: "/media/Heat.mkv", Position: 9000, Remaining: 1000}})
			})

			Convey("Next media staged on request is loaded right away", func() {
				h.engine.Subscribe(func(n Notification) {
					if _, ok := n.(NextRequested); ok {
						h.engine.StageNext(StartInfo{Locator: "/media/Ronin.mkv"})
					}
				})
				h.post(tickMsg{position: 9900})
				h.take()
				h.event(mpv.Event{ID: mpv.EventEndFile, Data: mpv.EndFile{Reason: mpv.EndReasonEOF}})

				notes := h.take()
				So(notesOf[StateChanged](notes), ShouldResemble, []StateChanged{{From: Playing, To: Loading}})
				So(notesOf[LocatorChanged](notes), ShouldResemble, []LocatorChanged{{Locator: "/media/Ronin.mkv"}})
				So(h.engine.StagedNext().IsAbsent(), ShouldBeTrue)

				h.serve()
				load := commandsNamed(h.mock, "loadfile")
				So(load, ShouldHaveLength, 2)
				So(load[1][1], ShouldEqual, "/media/Ronin.mkv")
			})

			Convey("A staged next media still loads after an error", func() {
				h.engine.StageNext(StartInfo{Locator: "/media/Ronin.mkv"})
				h.event(mpv.Event{ID: mpv.EventEndFile, Data: mpv.EndFile{Reason: mpv.EndReasonError}})

				notes := h.take()
				So(h.engine.State(), ShouldEqual, Error)
				So(notesOf[Finished](notes), ShouldBeEmpty)
				So(h.engine.Locator(), ShouldEqual, Mrl("/media/Ronin.mkv"))

				h.event(mpv.Event{ID: mpv.EventStartFile})
				So(h.engine.State(), ShouldEqual, Loading)
			})

			Convey("Loading directly drops the staged media", func() {
				h.engine.StageNext(StartInfo{Locator: "/media/Ronin.mkv"})
				So(h.engine.StagedNext().MustGet().Locator, ShouldEqual, Mrl("/media/Ronin.mkv"))

				h.engine.Load(StartInfo{Locator: "/media/Alien.mkv"})
				So(h.engine.StagedNext().IsAbsent(), ShouldBeTrue)
			})

			Convey("After a shutdown nothing more is requested or loaded", func() {
				h.engine.StageNext(StartInfo{Locator: "/media/Ronin.mkv"})
				h.post(tickMsg{position: 9900})
				h.engine.Shutdown()
				h.take()
				h.event(mpv.Event{ID: mpv.EventEndFile, Data: mpv.EndFile{Reason: mpv.EndReasonQuit}})

				notes := h.take()
				So(notesOf[NextRequested](notes), ShouldBeEmpty)
				So(h.engine.State(), ShouldEqual, Stopped)
				So(commandsNamed(h.mock, "quit"), ShouldHaveLength, 1)
				So(commandsNamed(h.mock, "loadfile"), ShouldHaveLength, 1)
			})

			Convey("A new file starts without a position", func() {
				h.post(tickMsg{position: 9900})
				h.event(mpv.Event{ID: mpv.EventStartFile})
				So(h.engine.Position(), ShouldEqual, -1)
			})
		})
	})
}

func TestStreamsApplied(t *testing.T) {
	Convey("Given an engine", t, func() {
		h := newHarness(DefaultOptions())

		Convey("The current stream comes from the selected flag", func() {
			h.post(tracksMsg{streams: [streamTypeCount]StreamList{
				VideoStream: {{Type: VideoStream, ID: 1, Selected: true}},
			}})
			So(h.engine.CurrentStream(VideoStream), ShouldEqual, 1)
			So(h.engine.HasVideo(), ShouldBeTrue)

			h.post(tracksMsg{streams: [streamTypeCount]StreamList{
				VideoStream: {{Type: VideoStream, ID: 1}, {Type: VideoStream, ID: 2, Selected: true}},
			}})
			So(h.engine.CurrentStream(VideoStream), ShouldEqual, 2)

			notes := h.take()
			So(notesOf[CurrentStreamChanged](notes), ShouldResemble, []CurrentStreamChanged{
				{Type: VideoStream, ID: 1},
				{Type: VideoStream, ID: 2},
			})
			So(notesOf[StreamsChanged](notes), ShouldHaveLength, 2)
		})

		Convey("Identical tables are not replaced", func() {
			msg := tracksMsg{streams: [streamTypeCount]StreamList{
				AudioStream: {{Type: AudioStream, ID: 1, Selected: true}, {Type: AudioStream, ID: 2}},
			}}
			h.post(msg)
			So(notesOf[AudioTrackInfoChanged](h.take()), ShouldResemble, []AudioTrackInfoChanged{{Info: AudioTrackInfo{Count: 2, Current: 1}}})

			h.post(msg)
			So(h.take(), ShouldBeEmpty)
		})

		Convey("Given two audio streams", func() {
			h.post(tracksMsg{streams: [streamTypeCount]StreamList{
				AudioStream: {{Type: AudioStream, ID: 1, Selected: true}, {Type: AudioStream, ID: 2}},
			}})
			h.take()

			Convey("Switching leaves exactly the current stream selected", func() {
				h.post(currentStreamsMsg{ids: [streamTypeCount]int{StreamNone, 2, StreamNone}})

				streams := h.engine.Streams(AudioStream)
				So(streams[0].Selected, ShouldBeFalse)
				So(streams[1].Selected, ShouldBeTrue)
				So(h.engine.AudioTrackInfo().Current, ShouldEqual, 2)

				notes := h.take()
				So(notesOf[CurrentStreamChanged](notes), ShouldResemble, []CurrentStreamChanged{{Type: AudioStream, ID: 2}})

				h.post(currentStreamsMsg{ids: [streamTypeCount]int{StreamNone, StreamNone, StreamNone}})
				So(h.engine.Streams(AudioStream).SelectedID(), ShouldEqual, StreamNone)
			})

			Convey("Only known streams can be selected", func() {
				So(h.engine.SelectStream(AudioStream, 7), ShouldBeFalse)
				So(h.engine.SelectStream(AudioStream, 2), ShouldBeTrue)
				So(h.engine.SelectStream(SubtitleStream, StreamNone), ShouldBeTrue)

				h.serve()
				sets := setsNamed(h.mock, "aid")
				So(sets, ShouldHaveLength, 1)
				id, _ := sets[0].Value.AsInt()
				So(id, ShouldEqual, 2)
				So(setsNamed(h.mock, "sid"), ShouldBeEmpty)
			})

			Convey("Handed out tables are copies", func() {
				streams := h.engine.Streams(AudioStream)
				streams[0].Selected = false
				So(h.engine.CurrentStream(AudioStream), ShouldEqual, 1)
				So(h.engine.Streams(AudioStream)[0].Selected, ShouldBeTrue)
			})
		})
	})
}

func TestChaptersApplied(t *testing.T) {
	Convey("Given chapters at 0, 5000 and 12000", t, func() {
		h := newHarness(DefaultOptions())
		chapters := ChapterList{{ID: 0, Time: 0}, {ID: 1, Time: 5000}, {ID: 2, Time: 12000}}
		h.post(chaptersMsg{chapters: chapters})

		Convey("Ticks resolve the current chapter in both directions", func() {
			h.post(tickMsg{position: 6000})
			So(h.engine.CurrentChapter(), ShouldEqual, 1)
			h.post(tickMsg{position: 2000})
			So(h.engine.CurrentChapter(), ShouldEqual, 0)

			notes := h.take()
			So(notesOf[ChaptersChanged](notes), ShouldHaveLength, 1)
			So(notesOf[CurrentChapterChanged](notes), ShouldResemble, []CurrentChapterChanged{{ID: 1}, {ID: 0}})
			So(notesOf[Tick](notes), ShouldResemble, []Tick{{Position: 6000}, {Position: 2000}})
		})

		Convey("The same list is not applied twice", func() {
			h.take()
			h.post(chaptersMsg{chapters: chapters})
			So(h.take(), ShouldBeEmpty)
		})

		Convey("Jumping only goes to known chapters", func() {
			So(h.engine.SetCurrentChapter(2), ShouldBeTrue)
			So(h.engine.SetCurrentChapter(9), ShouldBeFalse)

			h.serve()
			So(setsNamed(h.mock, "chapter"), ShouldHaveLength, 1)
		})

		Convey("An empty list clears the lookup", func() {
			h.post(chaptersMsg{})
			h.post(tickMsg{position: 3000})
			So(h.engine.CurrentChapter(), ShouldEqual, ChapterNone)
			So(h.engine.Chapters(), ShouldBeEmpty)
		})
	})
}

func TestControls(t *testing.T) {
	Convey("Given an engine", t, func() {
		h := newHarness(DefaultOptions())

		Convey("Setting the same volume twice notifies once", func() {
			h.engine.SetVolume(40)
			h.engine.SetVolume(40)

			So(notesOf[VolumeChanged](h.take()), ShouldResemble, []VolumeChanged{{Volume: 40}})
			h.serve()
			sets := setsNamed(h.mock, "volume")
			So(sets, ShouldHaveLength, 1)
			v, _ := sets[0].Value.AsDouble()
			So(v, ShouldEqual, 40)
		})

		Convey("Amplification scales the backend volume", func() {
			h.engine.SetVolume(150)
			h.engine.SetAmp(2.5)
			h.engine.SetAmp(2.5)
			So(h.engine.Volume(), ShouldEqual, 100)

			h.serve()
			sets := setsNamed(h.mock, "volume")
			So(sets, ShouldHaveLength, 1)
			v, _ := sets[0].Value.AsDouble()
			So(v, ShouldEqual, 250)
			So(notesOf[AmpChanged](h.take()), ShouldResemble, []AmpChanged{{Amp: 2.5}})
		})

		Convey("Delays are sent in seconds", func() {
			h.engine.SetAudioSync(250)
			h.engine.SetSubtitleDelay(-500)
			h.engine.SetSubtitleDelay(-500)
			h.serve()

			audio, _ := setsNamed(h.mock, "audio-delay")[0].Value.AsDouble()
			sub, _ := setsNamed(h.mock, "sub-delay")[0].Value.AsDouble()
			So(audio, ShouldEqual, 0.25)
			So(sub, ShouldEqual, -0.5)
			So(setsNamed(h.mock, "sub-delay"), ShouldHaveLength, 1)
		})

		Convey("Toggles only notify on change", func() {
			h.engine.SetMuted(true)
			h.engine.SetMuted(true)
			h.engine.SetSpeed(1)
			h.engine.SetSpeed(1.5)
			h.engine.SetSubtitleVisible(true)
			h.engine.SetSubtitleVisible(false)

			notes := h.take()
			So(notes, ShouldResemble, []Notification{
				MutedChanged{Muted: true},
				SpeedChanged{Speed: 1.5},
				SubtitleVisibilityChanged{Visible: false},
			})
		})

		Convey("Pausing goes through the backend", func() {
			h.engine.Pause()
			h.serve()
			sets := setsNamed(h.mock, "pause")
			So(sets, ShouldHaveLength, 1)
			paused, _ := sets[0].Value.AsFlag()
			So(paused, ShouldBeTrue)
		})

		Convey("Seeks are sent in seconds", func() {
			h.engine.Seek(90000)
			h.engine.RelativeSeek(-5000)
			h.serve()

			So(commandsNamed(h.mock, "seek"), ShouldResemble, [][]string{
				{"seek", "90.000", "absolute"},
				{"seek", "-5.000", "relative"},
			})
			So(notesOf[Sought](h.take()), ShouldHaveLength, 2)
		})

		Convey("Cache settings and hardware codecs shape the next load", func() {
			h.engine.SetMinimumCache(30, 150)
			h.engine.SetHwAccCodecs([]string{"h264", "hevc"})
			h.engine.Load(StartInfo{Locator: "https://example.com/live.m3u8", Cache: 4096})
			h.serve()

			playback, seeking := h.engine.MinimumCache()
			So(playback, ShouldEqual, 30)
			So(seeking, ShouldEqual, 100)

			options := commandsNamed(h.mock, "loadfile")[0][4]
			So(options, ShouldContainSubstring, "hwdec=auto-safe,hwdec-codecs=%9%h264,hevc")
			So(options, ShouldContainSubstring, "cache=yes,demuxer-max-bytes=4096KiB,cache-pause=yes,cache-pause-wait=3.000")
			So(h.engine.MediaName(), ShouldEqual, "URL: https://example.com/live.m3u8")
		})

		Convey("Video info is classified for hardware acceleration", func() {
			h.engine.SetHwAccCodecs([]string{"h264"})
			h.post(videoInfoMsg{info: AvInfo{
				Codec:  "h264",
				Output: AvIoFormat{Type: "vaapi", Width: 1920, Height: 1080, Fps: 24},
			}})

			So(h.engine.HwAcc(), ShouldEqual, HwAccActivated)
			So(h.engine.VideoInfo().Output.Bitrate, ShouldEqual, 1920*1080*12*24)
			So(notesOf[HwAccChanged](h.take()), ShouldResemble, []HwAccChanged{{HwAcc: HwAccActivated}})
		})

		Convey("A hardware surface reported by the backend counts as activated", func() {
			h.engine.SetHwAccCodecs([]string{"h264"})
			h.mock.SetValue("video-format", mpv.String("h264"))
			h.mock.SetValue("container-fps", mpv.Double(25))
			h.mock.SetValue("video-out-params", mpv.Map(map[string]mpv.Node{
				"pixelformat":    mpv.String("vaapi"),
				"hw-pixelformat": mpv.String("p010"),
				"dw":             mpv.Int(1280),
				"dh":             mpv.Int(720),
			}))
			h.event(mpv.Event{ID: mpv.EventVideoReconfig})

			So(h.engine.HwAcc(), ShouldEqual, HwAccActivated)
			So(h.engine.VideoInfo().Output.Type, ShouldEqual, "vaapi")
			So(h.engine.VideoInfo().Output.Bitrate, ShouldEqual, 1280*720*15*25)

			Convey("and software output with the codec enabled counts as deactivated", func() {
				h.mock.SetValue("video-out-params", mpv.Map(map[string]mpv.Node{
					"pixelformat": mpv.String("yuv420p"),
					"dw":          mpv.Int(1280),
					"dh":          mpv.Int(720),
				}))
				h.event(mpv.Event{ID: mpv.EventVideoReconfig})

				So(h.engine.HwAcc(), ShouldEqual, HwAccDeactivated)
				So(h.engine.VideoInfo().Output.Bitrate, ShouldEqual, 1280*720*12*25)
			})
		})
	})
}

func TestSubtitleFiles(t *testing.T) {
	Convey("Given an engine and a subtitle on disk", t, func() {
		h := newHarness(DefaultOptions())
		So(afero.WriteFile(h.fs, "/subs/film.srt", []byte("1\n00:00:01,000 --> 00:00:02,000\nHi\n"), 0o644), ShouldBeNil)

		Convey("Missing files are refused", func() {
			err := h.engine.AddSubtitleFile("/subs/none.srt", "")
			So(errors.Is(err, ErrNoSubtitle), ShouldBeTrue)
			So(h.engine.SubtitleFiles(), ShouldBeEmpty)
		})

		Convey("Files are refused once the engine is shut down", func() {
			h.engine.Shutdown()
			err := h.engine.AddSubtitleFile("/subs/film.srt", "")
			So(errors.Is(err, ErrShutdown), ShouldBeTrue)
			So(h.engine.SubtitleFiles(), ShouldBeEmpty)

			h.serve()
			So(commandsNamed(h.mock, "sub-add"), ShouldBeEmpty)
		})

		Convey("Without an encoding the codepage is left alone", func() {
			So(h.engine.AddSubtitleFile("/subs/film.srt", ""), ShouldBeNil)
			h.serve()
			So(setsNamed(h.mock, "sub-codepage"), ShouldBeEmpty)
			So(commandsNamed(h.mock, "sub-add"), ShouldHaveLength, 1)
		})

		Convey("Adding a file loads and selects it", func() {
			So(h.engine.AddSubtitleFile("/subs/film.srt", "cp1252"), ShouldBeNil)
			So(h.engine.SubtitleFiles(), ShouldResemble, []SubtitleFile{{Path: "/subs/film.srt", Encoding: "cp1252"}})

			h.serve()
			So(commandsNamed(h.mock, "sub-add"), ShouldResemble, [][]string{{"sub-add", "/subs/film.srt", "select"}})
			sets := setsNamed(h.mock, "sub-codepage")
			So(sets, ShouldHaveLength, 1)
			So(sets[0].Async, ShouldBeFalse)
			codepage, _ := sets[0].Value.AsString()
			So(codepage, ShouldEqual, "cp1252")

			Convey("A new file forgets it", func() {
				h.take()
				h.event(mpv.Event{ID: mpv.EventStartFile})
				So(h.engine.SubtitleFiles(), ShouldBeEmpty)
				So(notesOf[SubtitleFilesChanged](h.take()), ShouldHaveLength, 1)
			})

			Convey("Removing its stream forgets it", func() {
				h.post(tracksMsg{streams: [streamTypeCount]StreamList{
					SubtitleStream: {{Type: SubtitleStream, ID: 3, File: "/subs/film.srt", Selected: true}},
				}})

				So(h.engine.RemoveSubtitleStream(8), ShouldBeFalse)
				So(h.engine.RemoveSubtitleStream(3), ShouldBeTrue)
				So(h.engine.SubtitleFiles(), ShouldBeEmpty)

				h.serve()
				So(commandsNamed(h.mock, "sub-remove"), ShouldResemble, [][]string{{"sub-remove", "3"}})
			})
		})
	})
}

func TestStillImages(t *testing.T) {
	Convey("Given an engine showing an image for three seconds", t, func() {
		opts := DefaultOptions()
		opts.ImageDuration = 3000
		h := newHarness(opts)
		h.play("/photos/beach.png")

		load := commandsNamed(h.mock, "loadfile")
		So(load[0][4], ShouldContainSubstring, "pause=yes")
		So(h.engine.State(), ShouldEqual, Playing)
		So(h.engine.Duration(), ShouldEqual, 3000)
		So(h.engine.Position(), ShouldEqual, 0)
		So(h.engine.ticker, ShouldNotBeNil)

		Convey("The clock advances while playing", func() {
			h.advance(1000 * time.Millisecond)
			h.engine.imageTick()
			So(h.engine.Position(), ShouldEqual, 1000)
		})

		Convey("Pausing freezes the clock", func() {
			h.advance(1000 * time.Millisecond)
			h.engine.Pause()
			So(h.engine.State(), ShouldEqual, Paused)

			h.advance(5000 * time.Millisecond)
			h.engine.imageTick()
			So(h.engine.Position(), ShouldEqual, 1000)
			So(setsNamed(h.mock, "pause"), ShouldBeEmpty)

			h.engine.Unpause()
			h.advance(500 * time.Millisecond)
			h.engine.imageTick()
			So(h.engine.Position(), ShouldEqual, 1500)
		})

		Convey("Seeking moves the clock", func() {
			h.engine.Seek(2500)
			h.engine.imageTick()
			So(h.engine.Position(), ShouldEqual, 2500)
			So(commandsNamed(h.mock, "seek"), ShouldBeEmpty)
		})

		Convey("When the duration elapses the image is stopped once", func() {
			h.advance(4000 * time.Millisecond)
			h.engine.imageTick()
			h.engine.imageTick()
			So(h.engine.Position(), ShouldEqual, 3000)

			h.serve()
			So(commandsNamed(h.mock, "stop"), ShouldHaveLength, 1)

			h.take()
			h.event(mpv.Event{ID: mpv.EventEndFile, Data: mpv.EndFile{Reason: mpv.EndReasonStop}})
			notes := h.take()
			So(notesOf[NextRequested](notes), ShouldHaveLength, 1)
			So(notesOf[Finished](notes), ShouldResemble, []Finished{{Locator: "/photos/beach.png", Position: 3000, Remaining: 0}})
			So(h.engine.ticker, ShouldBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a started engine", t, func() {
		mock := mpv.NewMock()
		env, _ := testEnv(mock)
		e, err := New(env, DefaultOptions())
		So(err, ShouldBeNil)

		var states []PlaybackState
		e.Subscribe(func(n Notification) {
			if s, ok := n.(StateChanged); ok {
				states = append(states, s.To)
			}
		})
		e.Start()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		errc := make(chan error, 1)
		go func() { errc <- e.Run(ctx) }()

		Convey("Closing drains every message before Run returns", func() {
			e.Load(StartInfo{Locator: "/media/a.mkv"})
			mock.Emit(mpv.Event{ID: mpv.EventStartFile})
			mock.Emit(mpv.Event{ID: mpv.EventFileLoaded})
			e.Close()

			select {
			case err := <-errc:
				So(err, ShouldBeNil)
			case <-time.After(5 * time.Second):
				So("Run did not return", ShouldBeEmpty)
			}

			So(states, ShouldResemble, []PlaybackState{Loading, Playing, Stopped})
			So(mock.Destroyed(), ShouldEqual, 1)
			So(commandsNamed(mock, "loadfile"), ShouldHaveLength, 1)

			e.Close()
			So(mock.Destroyed(), ShouldEqual, 1)
		})

		Convey("Cancelling the context stops Run", func() {
			cancel()
			So(<-errc, ShouldEqual, context.Canceled)
			e.Close()
		})
	})
}
