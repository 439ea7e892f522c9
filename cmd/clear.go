// Package cmd implements the command-line interface for reel.
package cmd

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/reelplay/reel/filesystem"
	"github.com/reelplay/reel/icon"
	"github.com/reelplay/reel/util"
	"github.com/reelplay/reel/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for automated cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	clear    func() error
}

// clearTargets registry of all application artifacts that can be selectively cleared.
var clearTargets = []clearTarget{
	{"log files", "logs", mo.Some("l"), func() error {
		return filesystem.API().RemoveAll(where.Logs())
	}},
	{"stale sockets", "sockets", mo.Some("s"), func() error {
		_, err := removeStaleSockets(filesystem.API().Fs, where.Runtime(), socketAlive)
		return err
	}},
}

// socketAlive reports whether a process still accepts connections on path.
func socketAlive(path string) bool {
	conn, err := net.DialTimeout("unix", path, 200*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// removeStaleSockets deletes the backend sockets in dir nobody listens on
// any more, and returns how many it removed. Sockets of running players stay.
func removeStaleSockets(fs afero.Fs, dir string, alive func(path string) bool) (int, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sock") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if alive(path) {
			continue
		}
		if err := fs.Remove(path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes log files and sockets left behind by a crashed backend.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove log files and leftover backend sockets",
	Long: "Remove log files and leftover backend sockets.\n" +
		"Sockets still served by a running player are kept.",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		doClear := func(what string) bool {
			return lo.Must(cmd.Flags().GetBool(what))
		}

		for _, target := range clearTargets {
			if doClear(target.argLong) {
				anyCleared = true
				e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Load), target.name))
				err := target.clear()
				e()
				handleErr(err)
				fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
			}
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
