//go:build !windows && !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package sockets

// Detect reports the platform's optional socket features.
func Detect() Capabilities {
	return Capabilities{UnixSockets: true}
}

func setReuseAddr(fd uintptr) error { return nil }

func setReusePort(fd uintptr) error { return nil }

func setInheritable(fd uintptr) error { return nil }

func swapUmask(mask int) int { return 0 }
