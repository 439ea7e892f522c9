// Package cmd implements the command-line interface for reel.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/reelplay/reel/color"
	"github.com/reelplay/reel/constant"
	"github.com/reelplay/reel/icon"
	"github.com/reelplay/reel/key"
	"github.com/reelplay/reel/style"
	"github.com/spf13/viper"
)

// CheckDependencies verifies that the configured mpv binary can be found.
func CheckDependencies() {
	binary := viper.GetString(key.MpvBinary)
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

// mpvVersion returns the first line of `mpv --version`, or "not found".
func mpvVersion() string {
	out, err := exec.Command(viper.GetString(key.MpvBinary), "--version").Output()
	if err != nil {
		return "not found"
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}

func installHint() string {
	switch runtime.GOOS {
	case constant.Darwin:
		return "brew install mpv"
	case constant.Linux:
		return "sudo apt install mpv"
	case constant.Windows:
		return "scoop install mpv"
	default:
		return ""
	}
}

func printMissingDependencyError(dep string) {
	body := fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep)
	if hint := installHint(); hint != "" {
		body += fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Cyan).Bold(true).Render(hint))
	}
	body += fmt.Sprintf("\n\nA custom location can be set with %s", style.Fg(color.Yellow)(constant.Reel+" config set "+key.MpvBinary+" <path>"))

	fmt.Println(style.Box(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)), body))
}
