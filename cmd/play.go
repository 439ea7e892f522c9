package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reelplay/reel/engine"
	"github.com/reelplay/reel/filesystem"
	"github.com/reelplay/reel/key"
	"github.com/reelplay/reel/log"
	"github.com/reelplay/reel/metrics"
	"github.com/reelplay/reel/mpv"
	"github.com/reelplay/reel/util"
	"github.com/reelplay/reel/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().DurationP("start", "s", 0, "Start the first item at this offset (e.g. 1m30s)")
	playCmd.Flags().StringSlice("sub", []string{}, "External subtitle files added to the first item")
	playCmd.Flags().String("sub-encoding", "", "Character encoding of the external subtitle files")
	playCmd.Flags().Bool("mute", false, "Start muted")
	playCmd.Flags().Float64("speed", 1, "Playback speed")
	playCmd.Flags().BoolP("quiet", "q", false, "Do not draw the status line")

	playCmd.Flags().Int("volume", 100, "Initial volume, from 0 to 100")
	lo.Must0(viper.BindPFlag(key.AudioVolume, playCmd.Flags().Lookup("volume")))

	playCmd.Flags().Float64("amp", 1, "Initial amplification, from 0 to 10")
	lo.Must0(viper.BindPFlag(key.AudioAmp, playCmd.Flags().Lookup("amp")))

	playCmd.Flags().Int("cache", 0, "Network cache size in KiB, 0 disables the cache")
	lo.Must0(viper.BindPFlag(key.CacheSize, playCmd.Flags().Lookup("cache")))

	playCmd.Flags().StringSlice("hwdec", []string{}, "Codecs allowed to use hardware decoding")
	lo.Must0(viper.BindPFlag(key.HwDecCodecs, playCmd.Flags().Lookup("hwdec")))

	playCmd.Flags().String("metrics", "", "Serve prometheus metrics on this address while playing")
	lo.Must0(viper.BindPFlag(key.MetricsAddress, playCmd.Flags().Lookup("metrics")))
}

// playCmd plays every locator in turn.
var playCmd = &cobra.Command{
	Use:   "play [file or url]...",
	Short: "Play local files, discs or network streams",
	Example: "  reel play movie.mkv\n" +
		"  reel play --start 10m --sub movie.srt movie.mkv\n" +
		"  reel play dvd:// https://example.com/live.m3u8",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		handleErr(play(playOptions{
			locators:    args,
			start:       lo.Must(cmd.Flags().GetDuration("start")),
			subtitles:   lo.Must(cmd.Flags().GetStringSlice("sub")),
			subEncoding: lo.Must(cmd.Flags().GetString("sub-encoding")),
			mute:        lo.Must(cmd.Flags().GetBool("mute")),
			speed:       lo.Must(cmd.Flags().GetFloat64("speed")),
			quiet:       lo.Must(cmd.Flags().GetBool("quiet")),
		}))
	},
}

type playOptions struct {
	locators    []string
	start       time.Duration
	subtitles   []string
	subEncoding string
	mute        bool
	speed       float64
	quiet       bool
}

// engineOptions reads the configuration once for a new engine.
func engineOptions() engine.Options {
	opts := engine.DefaultOptions()

	opts.Verbose = lo.CoalesceOrEmpty(viper.GetString(key.MpvVerbose), opts.Verbose)
	opts.BackendOptions = viper.GetString(key.MpvOptions)
	opts.AudioDriver = viper.GetString(key.AudioDriver)
	if poll := viper.GetInt(key.EnginePoll); poll > 0 {
		opts.Poll = time.Duration(poll) * time.Millisecond
	}
	opts.Volume = viper.GetInt(key.AudioVolume)
	opts.Amp = viper.GetFloat64(key.AudioAmp)
	opts.CacheForPlayback = viper.GetInt(key.CachePlayback)
	opts.CacheForSeeking = viper.GetInt(key.CacheSeeking)
	opts.ImageDuration = viper.GetInt(key.ImageDuration)
	opts.HwAccCodecs = viper.GetStringSlice(key.HwDecCodecs)

	return opts
}

func play(options playOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	backend := mpv.NewIPC(mpv.IPCOptions{
		Binary:    viper.GetString(key.MpvBinary),
		SocketDir: where.Runtime(),
		Log:       log.Component("mpv"),
	})

	e, err := engine.New(engine.Env{
		Backend: backend,
		Log:     log.Component("engine"),
		Metrics: m,
		Fs:      filesystem.API().Fs,
	}, engineOptions())
	if err != nil {
		return err
	}
	defer e.Close()

	if address := viper.GetString(key.MetricsAddress); address != "" {
		shutdown, err := serveMetrics(address, m)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	log.Debugf("playing %s", util.Quantify(len(options.locators), "item", "items"))

	list := newPlaylist(options.locators, viper.GetInt(key.CacheSize))
	first, _ := list.next()
	first.Resume = int(options.start.Milliseconds())

	sess := &session{
		engine:      e,
		playlist:    list,
		subtitles:   options.subtitles,
		subEncoding: options.subEncoding,
	}
	defer e.Subscribe(sess.handle)()

	if !options.quiet {
		status := newStatusLine(os.Stdout, func() int {
			width, _, err := util.TerminalSize()
			if err != nil {
				return 80
			}
			return width
		})
		defer e.Subscribe(status.handle)()
		defer status.clear()
	}

	e.SetMuted(options.mute)
	e.SetSpeed(options.speed)

	e.Start()
	e.Load(first)

	err = e.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("interrupted")
		e.Shutdown()
		err = e.Run(context.Background())
	}
	if err != nil {
		return err
	}

	return sess.err
}

// serveMetrics exposes the engine collectors until the returned func is called.
func serveMetrics(address string, m *metrics.Metrics) (shutdown func(), err error) {
	registry := prometheus.NewRegistry()
	m.Register(registry)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %s", err)
		}
	}()
	log.Infof("serving metrics on %s", listener.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
