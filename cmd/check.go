package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/style"
	"github.com/spf13/viper"
)

// binaries maps element names to the executable they launch. IINA is
// started through open(1) and not checked.
var binaries = map[string]string{
	player.MPVName: "mpv",
}

// CheckDependencies exits when the configured player is not installed.
func CheckDependencies() {
	name := viper.GetString(key.Player)
	bin, ok := binaries[name]
	if !ok {
		return
	}

	if _, err := exec.LookPath(bin); err != nil {
		printMissingDependencyError(bin)
		os.Exit(1)
	}
}

func installHint(dep string) string {
	switch runtime.GOOS {
	case constant.Darwin:
		return "brew install " + dep
	case constant.Linux:
		return "sudo apt install " + dep
	case constant.Windows:
		return "scoop install " + dep
	default:
		return ""
	}
}

func printMissingDependencyError(dep string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s %s is not installed", icon.Get(icon.Fail), dep))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("%q was not found in your PATH. Pick another player with --player or install it.", dep))

	var suggestion string
	if hint := installHint(dep); hint != "" {
		suggestion = fmt.Sprintf("\n\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(hint))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			body,
			suggestion,
		),
	))
}
