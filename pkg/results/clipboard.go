package results

import (
	"github.com/atotto/clipboard"
)

// Messages shown after a copy attempt.
const (
	MessageCopied     = "Table copied to clipboard!"
	MessageCopyFailed = "Copying failed."
)

// Clipboard receives exported text.
type Clipboard interface {
	WriteAll(text string) error
}

// Notifier tells the user how a copy attempt ended.
type Notifier interface {
	Notify(ok bool, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ok bool, message string)

// Notify calls fn.
func (fn NotifierFunc) Notify(ok bool, message string) {
	fn(ok, message)
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a system clipboard utility was found.
func (SystemClipboard) Available() bool {
	return !clipboard.Unsupported
}
