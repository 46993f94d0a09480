package celcore

import "io"

// ResponseProvider writes terminal responses (e.g., cursor position reports)
// back toward the process. Typically an io.Writer connected to the PTY
// input. When no provider is set, responses land on the output queue and are
// drained with ConsumeOutputStream.
type ResponseProvider = io.Writer

// NoopResponse discards all response data.
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// BellProvider handles bell events triggered by BEL (0x07) characters.
type BellProvider interface {
	// Ring is called when a bell character is received.
	Ring()
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// TitleProvider handles window title changes (OSC 0, 2).
type TitleProvider interface {
	// SetTitle is called when the title changes.
	SetTitle(title string)
}

// NoopTitle ignores all title changes.
type NoopTitle struct{}

func (NoopTitle) SetTitle(title string) {}

// Ensure implementations satisfy their interfaces
var _ ResponseProvider = NoopResponse{}
var _ BellProvider = (*NoopBell)(nil)
var _ TitleProvider = (*NoopTitle)(nil)
