// Package open hands a path or URL to the desktop's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/coursecast/coursecast/constant"
)

// Start opens input without waiting for the handler to exit.
func Start(input string) error {
	cmd, err := command(runtime.GOOS, input)
	if err != nil {
		return err
	}
	return cmd.Start()
}

func command(goos, input string) (*exec.Cmd, error) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", input), nil
	case constant.Darwin:
		return exec.Command("open", input), nil
	case constant.Linux:
		return exec.Command("xdg-open", input), nil
	case constant.Android:
		return exec.Command("termux-open", input), nil
	default:
		return nil, fmt.Errorf("don't know how to open files on %s", goos)
	}
}
