package tui

import "errors"

var (
	// ErrAborted reports that the user interrupted a prompt with Ctrl+C.
	ErrAborted = errors.New("tui: aborted")
	// ErrNoDriver reports a renderer without a prompt driver.
	ErrNoDriver = errors.New("tui: prompt driver is nil")
	// ErrUnsupportedControl reports a control kind the terminal cannot prompt for.
	ErrUnsupportedControl = errors.New("tui: unsupported control")
)
