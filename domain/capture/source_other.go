//go:build !windows

package capture

func platformSource() Source { return nil }
