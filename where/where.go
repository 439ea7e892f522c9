// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/reelplay/reel/constant"
	"github.com/reelplay/reel/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable used to override the configuration directory.
const EnvConfigPath = "REEL_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory, honoring REEL_CONFIG_PATH first.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Reel))
}

// Logs resolves the directory holding the dated log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Runtime resolves the volatile directory holding backend IPC sockets.
func Runtime() string {
	if dir, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && dir != "" {
		return ensureDir(filepath.Join(dir, constant.Reel))
	}
	return ensureDir(filepath.Join(os.TempDir(), constant.Reel))
}
