// Package browser opens item links in the user's default browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrUnsupportedScheme is returned for anything but http and https links.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// Launcher starts an external program without waiting for it.
type Launcher func(name string, args ...string) error

// Opener opens links with the platform's URL handler.
type Opener struct {
	goos   string
	launch Launcher
}

// New returns an Opener for the running platform.
func New() *Opener {
	return &Opener{goos: runtime.GOOS, launch: start}
}

func start(name string, args ...string) error {
	return exec.Command(name, args...).Start() // #nosec G204 -- URL validated by Open
}

// Open validates rawURL and hands it to the platform handler. Only http and
// https links are accepted so feed content cannot launch local files.
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q (only http and https allowed)", ErrUnsupportedScheme, u.Scheme)
	}

	name, args, err := command(o.goos, u.String())
	if err != nil {
		return err
	}
	return o.launch(name, args...)
}

func command(goos, link string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{link}, nil
	case "darwin":
		return "open", []string{link}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
