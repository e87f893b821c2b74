package sockets

// Capabilities records which optional socket features the platform
// offers. It is resolved once by Detect rather than probed at each
// call site; a false field means the corresponding step is skipped,
// never that startup fails.
type Capabilities struct {
	// ReusePort: SO_REUSEPORT, multiple processes binding one port.
	ReusePort bool
	// Inheritable: the close-on-exec mark can be cleared.
	Inheritable bool
	// Umask: process umask can be swapped around a bind.
	Umask bool
	// Chown: socket paths can change ownership.
	Chown bool
	// UnixSockets: unix-domain sockets are real filesystem sockets.
	// Off on Windows, where unix binds map to named pipes.
	UnixSockets bool
}
