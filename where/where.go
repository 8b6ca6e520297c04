// Package where resolves the directories coursecast reads from and writes to.
package where

import (
	"os"
	"path/filepath"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the config directory.
const EnvConfigPath = "COURSECAST_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the directory holding the toml config, logs and providers.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Coursecast))
}

// Cache is the directory for descriptor and release caches.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Coursecast))
}

func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Providers is the directory scanned for Lua provider scripts.
func Providers() string {
	return ensureDir(filepath.Join(Config(), "providers"))
}

// Temp holds player IPC sockets and other short-lived files.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Coursecast))
}
