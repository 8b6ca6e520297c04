package engine

import (
	"time"

	"github.com/coursecast/coursecast/key"
	"github.com/spf13/viper"
)

// Config is passed to Module.New.
type Config struct {
	// BackBufferLength is how much already played media is retained.
	BackBufferLength time.Duration

	// MaxBufferLength is how far ahead of the playhead media is buffered.
	MaxBufferLength time.Duration

	// MaxBufferSize bounds the buffer in bytes.
	MaxBufferSize int64

	// CapLevelToPlayerSize keeps automatic level selection at or below the
	// element's viewport height.
	CapLevelToPlayerSize bool

	// StartLevel forces a level index. Negative means automatic.
	StartLevel int

	ManifestMaxRetry int
	LevelMaxRetry    int
	RetryDelay       time.Duration

	// LoadTimeout bounds Loader.Load.
	LoadTimeout time.Duration
}

const megabyte = 1 << 20

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		BackBufferLength:     90 * time.Second,
		MaxBufferLength:      30 * time.Second,
		MaxBufferSize:        60 * megabyte,
		CapLevelToPlayerSize: true,
		StartLevel:           -1,
		ManifestMaxRetry:     2,
		LevelMaxRetry:        3,
		RetryDelay:           500 * time.Millisecond,
		LoadTimeout:          15 * time.Second,
	}
}

// FromViper reads the engine section of the config.
func FromViper() Config {
	return Config{
		BackBufferLength:     seconds(viper.GetInt(key.EngineBackBufferLength)),
		MaxBufferLength:      seconds(viper.GetInt(key.EngineMaxBufferLength)),
		MaxBufferSize:        int64(viper.GetInt(key.EngineMaxBufferSize)) * megabyte,
		CapLevelToPlayerSize: viper.GetBool(key.EngineCapLevelToPlayerSize),
		StartLevel:           viper.GetInt(key.EngineStartLevel),
		ManifestMaxRetry:     max(0, viper.GetInt(key.EngineManifestMaxRetry)),
		LevelMaxRetry:        max(0, viper.GetInt(key.EngineLevelMaxRetry)),
		RetryDelay:           time.Duration(viper.GetInt(key.EngineRetryDelay)) * time.Millisecond,
		LoadTimeout:          seconds(viper.GetInt(key.EngineLoadTimeout)),
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
