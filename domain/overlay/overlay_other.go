//go:build !windows

package overlay

func openWindow(Options) (Window, error) { return nil, ErrUnsupported }
