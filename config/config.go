// Package config wires viper to the registered defaults, the environment and the config file.
package config

import (
	"errors"
	"strings"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps config keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads defaults, binds the environment and reads the config file if one exists.
func Setup() error {
	viper.SetConfigName(constant.Coursecast)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Coursecast)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}
