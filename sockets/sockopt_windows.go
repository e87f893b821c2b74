//go:build windows

package sockets

import (
	"golang.org/x/sys/windows"
)

// Detect reports the platform's optional socket features.
func Detect() Capabilities {
	return Capabilities{
		// No SO_REUSEPORT; SO_REUSEADDR semantics differ but the
		// reuse request itself is still honored.
		ReusePort:   false,
		Inheritable: true,
		Umask:       false,
		Chown:       false,
		UnixSockets: false,
	}
}

func setReuseAddr(fd uintptr) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
}

func setReusePort(fd uintptr) error {
	return nil
}

// setInheritable marks the handle inheritable for child processes.
func setInheritable(fd uintptr) error {
	return windows.SetHandleInformation(windows.Handle(fd),
		windows.HANDLE_FLAG_INHERIT, windows.HANDLE_FLAG_INHERIT)
}

func swapUmask(mask int) int {
	return 0
}
