package version

import (
	"context"
	"fmt"
	"time"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/icon"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/style"
	"github.com/coursecast/coursecast/util"
	"github.com/spf13/viper"
)

// Notify prints a notice when a newer release exists and cli.version_check is on.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	erase := util.PrintErasable(fmt.Sprintf("%s Checking for a new version...", icon.Get(icon.Progress)))
	latest, err := Latest(ctx)
	erase()
	if err != nil {
		log.Warnf("version check: %v", err)
		return
	}

	if newer, err := Compare(latest, constant.Version); err != nil || newer <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(style.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(you're on %s)", constant.Version)),
		style.Faint("https://github.com/coursecast/coursecast/releases/tag/v"+latest),
	)
}
