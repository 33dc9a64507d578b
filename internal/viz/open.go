package viz

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Open launches the platform's default viewer on a rendered file.
func Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", path)
		}
		return fmt.Errorf("checking file: %w", err)
	}
	cmd, err := openCommand(runtime.GOOS, path)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// openCommand returns the command that opens path on goos.
func openCommand(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", path), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", path), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
