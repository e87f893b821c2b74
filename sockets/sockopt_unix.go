//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package sockets

import (
	"golang.org/x/sys/unix"
)

// Detect reports the platform's optional socket features.
func Detect() Capabilities {
	return Capabilities{
		ReusePort:   true,
		Inheritable: true,
		Umask:       true,
		Chown:       true,
		UnixSockets: true,
	}
}

// SO_REUSEADDR
func setReuseAddr(fd uintptr) error {
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}

// SO_REUSEPORT
func setReusePort(fd uintptr) error {
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
}

// setInheritable clears FD_CLOEXEC so the descriptor survives exec.
func setInheritable(fd uintptr) error {
	flags, err := unix.FcntlInt(fd, unix.F_GETFD, 0)
	if err != nil {
		return err
	}
	_, err = unix.FcntlInt(fd, unix.F_SETFD, flags&^unix.FD_CLOEXEC)
	return err
}

// swapUmask installs mask and returns the previous one.
func swapUmask(mask int) int {
	return unix.Umask(mask)
}
