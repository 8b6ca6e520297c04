package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/coursecast/coursecast/config"
	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/style"
	"github.com/coursecast/coursecast/where"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// choices lists the accepted values of keys that take one of a fixed set.
var choices = map[string][]string{
	key.PlaybackNativeManifest: {playback.PolicyAuto, playback.PolicyAlways, playback.PolicyNever},
	key.Player:                 player.Available(),
	key.IconsVariant:           icon.AvailableVariants(),
}

func closest(target string, candidates []string) string {
	return lo.MinBy(candidates, func(a string, b string) bool {
		return levenshtein.Distance(target, a) < levenshtein.Distance(target, b)
	})
}

func errUnknownKey(k string) error {
	return fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(style.Red)(k),
		style.Fg(style.Yellow)(closest(k, lo.Keys(config.Default))),
	)
}

func checkChoice(k, value string) error {
	allowed, ok := choices[k]
	if !ok || lo.Contains(allowed, value) {
		return nil
	}

	return fmt.Errorf(
		"invalid value %s for %s, did you mean %s?",
		style.Fg(style.Red)(value),
		style.Fg(style.Purple)(k),
		style.Fg(style.Yellow)(closest(value, allowed)),
	)
}

func configFilePath() string {
	return filepath.Join(where.Config(), constant.Coursecast+".toml")
}

func writeConfig() error {
	err := viper.WriteConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return viper.SafeWriteConfig()
	}
	return err
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Keys to describe")
	configInfoCmd.Flags().BoolP("json", "j", false, "Print as json")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configInfoCmd.SetOut(os.Stdout)
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe configuration fields",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keys   = lo.Must(cmd.Flags().GetStringSlice("key"))
			asJson = lo.Must(cmd.Flags().GetBool("json"))
			fields = lo.Values(config.Default)
		)

		if len(keys) > 0 {
			fields = make([]config.Field, 0, len(keys))

			for _, k := range keys {
				field, ok := config.Default[k]
				if !ok {
					handleErr(errUnknownKey(k))
				}

				fields = append(fields, field)
			}
		}

		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			lo.Must0(encoder.Encode(lo.ToSlicePtr(fields)))
			return
		}

		for i, field := range fields {
			cmd.Print(field.Pretty())

			if i < len(fields)-1 {
				cmd.Println()
				cmd.Println()
			}
		}
		cmd.Println()
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringP("key", "k", "", "Key to set")
	configSetCmd.Flags().StringSliceP("value", "v", []string{}, "Value to assign")
	_ = configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Set a configuration value",
	Args:              cobra.MaximumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			k     string
			value []string
		)

		flagKey := lo.Must(cmd.Flags().GetString("key"))
		flagValue := lo.Must(cmd.Flags().GetStringSlice("value"))

		switch {
		case len(args) >= 1:
			k = args[0]
		case flagKey != "":
			k = flagKey
		default:
			handleErr(errors.New("key is required as an argument or --key flag"))
		}

		switch {
		case len(args) >= 2:
			value = args[1:]
		case len(flagValue) > 0:
			value = flagValue
		default:
			handleErr(errors.New("value is required as an argument or --value flag"))
		}

		field, ok := config.Default[k]
		if !ok {
			handleErr(errUnknownKey(k))
		}

		v, err := parseValue(field, value)
		handleErr(err)

		viper.Set(k, v)
		handleErr(writeConfig())

		fmt.Printf(
			"%s set %s to %s\n",
			style.Fg(style.Green)(icon.Get(icon.Success)),
			style.Fg(style.Purple)(k),
			style.Fg(style.Yellow)(fmt.Sprintf("%v", v)),
		)
	},
}

// parseValue converts raw to the type of the field's default.
func parseValue(field config.Field, raw []string) (any, error) {
	switch field.Value.(type) {
	case string:
		if err := checkChoice(field.Key, raw[0]); err != nil {
			return nil, err
		}
		return raw[0], nil
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", raw[0])
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", raw[0])
		}
		return b, nil
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported type for %s", field.Key)
	}
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringP("key", "k", "", "Key to read")
	_ = configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print a configuration value",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		k := lo.Must(cmd.Flags().GetString("key"))
		if len(args) >= 1 {
			k = args[0]
		}

		if k == "" {
			handleErr(errors.New("key is required as an argument or --key flag"))
		}

		if _, ok := config.Default[k]; !ok {
			handleErr(errUnknownKey(k))
		}

		fmt.Println(viper.Get(k))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFilePath()

		if lo.Must(cmd.Flags().GetBool("force")) {
			if exists, _ := filesystem.API().Exists(path); exists {
				handleErr(filesystem.API().Remove(path))
			}
		}

		handleErr(viper.SafeWriteConfig())
		fmt.Printf(
			"%s wrote config to %s\n",
			style.Fg(style.Green)(icon.Get(icon.Success)),
			path,
		)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete the config file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFilePath()))
		fmt.Printf(
			"%s deleted config\n",
			style.Fg(style.Green)(icon.Get(icon.Success)),
		)
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().StringP("key", "k", "", "Key to reset")
	configResetCmd.Flags().BoolP("all", "a", false, "Reset every key")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration values to their defaults",
	PreRun: func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("key") && !cmd.Flags().Changed("all") {
			handleErr(errors.New("either --key or --all must be set"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		var (
			k   = lo.Must(cmd.Flags().GetString("key"))
			all = lo.Must(cmd.Flags().GetBool("all"))
		)

		if all {
			for name, field := range config.Default {
				viper.Set(name, field.Value)
			}
		} else if field, ok := config.Default[k]; !ok {
			handleErr(errUnknownKey(k))
		} else {
			viper.Set(k, field.Value)
		}

		handleErr(writeConfig())

		if all {
			fmt.Printf("%s reset all config values\n", style.Fg(style.Green)(icon.Get(icon.Success)))
			return
		}

		fmt.Printf(
			"%s reset %s to %s\n",
			style.Fg(style.Green)(icon.Get(icon.Success)),
			style.Fg(style.Purple)(k),
			style.Fg(style.Yellow)(fmt.Sprintf("%v", config.Default[k].Value)),
		)
	},
}
