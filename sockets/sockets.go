// Package sockets creates and configures the listening sockets a
// server process needs before its accept loops start. It understands
// the three bind forms from package bind (TCP endpoints, unix-domain
// paths, inherited descriptors), applies reuse and inheritance socket
// options, and leaves ownership of every handle with the caller.
package sockets

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"syscall"

	"github.com/wildmap/listenkit/bind"
	"github.com/wildmap/listenkit/xlog"
)

// Transport selects the socket type created for a spec.
type Transport int

const (
	// Stream creates connection-oriented sockets (TCP, unix).
	Stream Transport = iota
	// Datagram creates packet sockets (UDP, unixgram).
	Datagram
)

// Socket is one bound, configured OS socket. Exactly one of Listener
// and Packet is set, matching the transport it was created for. The
// caller owns the handle and is responsible for closing it.
type Socket struct {
	Spec     bind.Spec
	Listener net.Listener
	Packet   net.PacketConn
}

// Addr returns the bound local address.
func (s Socket) Addr() net.Addr {
	if s.Listener != nil {
		return s.Listener.Addr()
	}
	if s.Packet != nil {
		return s.Packet.LocalAddr()
	}
	return nil
}

// Close closes the underlying handle.
func (s Socket) Close() error {
	if s.Listener != nil {
		return s.Listener.Close()
	}
	if s.Packet != nil {
		return s.Packet.Close()
	}
	return nil
}

// Factory creates sockets from parsed bind specs. The zero value is
// not usable; construct with NewFactory and adjust fields before the
// first Create call.
type Factory struct {
	// Workers is the number of processes that will share TCP
	// listeners. Above 1 the port-sharing option is requested where
	// the platform offers it.
	Workers int

	// User and Group, when both set, receive ownership of unix
	// socket paths after binding.
	User  *int
	Group *int

	// Umask, when set, is applied around unix socket binds and
	// restored afterwards.
	Umask *int

	// Caps gates the optional platform features. NewFactory fills it
	// from Detect.
	Caps Capabilities
}

// NewFactory returns a factory for a single-worker process with the
// current platform's capabilities.
func NewFactory() *Factory {
	return &Factory{Workers: 1, Caps: Detect()}
}

// Create builds one socket per spec, in order. The first failure
// closes everything created so far and is returned unchanged; a server
// cannot usefully start with a partial listener set.
func (f *Factory) Create(ctx context.Context, specs []bind.Spec, tr Transport) ([]Socket, error) {
	out := make([]Socket, 0, len(specs))
	for _, spec := range specs {
		sock, err := f.create(ctx, spec, tr)
		if err != nil {
			for _, s := range out {
				_ = s.Close()
			}
			return nil, err
		}
		out = append(out, sock)
	}
	return out, nil
}

func (f *Factory) create(ctx context.Context, spec bind.Spec, tr Transport) (Socket, error) {
	var (
		sock Socket
		err  error
	)
	switch spec.Kind {
	case bind.KindUnix:
		sock, err = f.listenUnix(ctx, spec, tr)
	case bind.KindFD:
		sock, err = f.fromFD(spec, tr)
	default:
		sock, err = f.listenTCP(ctx, spec, tr)
	}
	if err != nil {
		return Socket{}, err
	}
	if err := f.markInheritable(sock); err != nil {
		_ = sock.Close()
		return Socket{}, fmt.Errorf("mark %s inheritable: %w", spec.Addr(), err)
	}
	return sock, nil
}

// listenTCP binds a TCP or UDP endpoint, choosing the address family
// from the parsed host.
func (f *Factory) listenTCP(ctx context.Context, spec bind.Spec, tr Transport) (Socket, error) {
	addr := net.JoinHostPort(spec.Host, strconv.Itoa(spec.Port))
	lc := net.ListenConfig{Control: f.control}
	if tr == Datagram {
		network := "udp4"
		if spec.IPv6() {
			network = "udp6"
		}
		pc, err := lc.ListenPacket(ctx, network, addr)
		if err != nil {
			return Socket{}, fmt.Errorf("bind %s: %w", addr, err)
		}
		return Socket{Spec: spec, Packet: pc}, nil
	}
	network := "tcp4"
	if spec.IPv6() {
		network = "tcp6"
	}
	ln, err := lc.Listen(ctx, network, addr)
	if err != nil {
		return Socket{}, fmt.Errorf("bind %s: %w", addr, err)
	}
	return Socket{Spec: spec, Listener: ln}, nil
}

// fromFD wraps a descriptor inherited from the spawning process. The
// descriptor is already bound, so no bind happens here. A non-numeric
// descriptor in the original bind string is a caller error and fatal.
func (f *Factory) fromFD(spec bind.Spec, tr Transport) (Socket, error) {
	if spec.FD < 0 {
		return Socket{}, fmt.Errorf("invalid inherited descriptor %q", spec.Raw)
	}
	file := os.NewFile(uintptr(spec.FD), "listener")
	if file == nil {
		return Socket{}, fmt.Errorf("invalid inherited descriptor %d", spec.FD)
	}
	defer file.Close()

	var sock Socket
	if tr == Datagram {
		pc, err := net.FilePacketConn(file)
		if err != nil {
			return Socket{}, fmt.Errorf("wrap inherited descriptor %d: %w", spec.FD, err)
		}
		sock = Socket{Spec: spec, Packet: pc}
	} else {
		ln, err := net.FileListener(file)
		if err != nil {
			return Socket{}, fmt.Errorf("wrap inherited descriptor %d: %w", spec.FD, err)
		}
		sock = Socket{Spec: spec, Listener: ln}
	}

	// Inherited sockets never pass through the bind-time control hook,
	// so the reuse option is applied here.
	if _, err := rawControl(sock, setReuseAddr); err != nil {
		_ = sock.Close()
		return Socket{}, fmt.Errorf("configure inherited descriptor %d: %w", spec.FD, err)
	}
	return sock, nil
}

// control runs inside the net package's socket setup, between socket
// creation and bind. Address reuse is always requested; port sharing
// only for multi-worker factories on platforms that have the option.
func (f *Factory) control(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		if opErr = setReuseAddr(fd); opErr != nil {
			return
		}
		if f.Workers > 1 {
			if !f.Caps.ReusePort {
				xlog.Debugw("port sharing unavailable, skipping", "addr", address)
				return
			}
			opErr = setReusePort(fd)
		}
	})
	if err != nil {
		return err
	}
	return opErr
}

// markInheritable clears the close-on-exec mark so worker processes
// spawned later inherit the socket. Platforms without the primitive
// skip silently; a failing call on a supporting platform is fatal.
func (f *Factory) markInheritable(sock Socket) error {
	if !f.Caps.Inheritable {
		return nil
	}
	applied, err := rawControl(sock, setInheritable)
	if err != nil {
		return err
	}
	if !applied {
		xlog.Debugw("socket exposes no raw descriptor, skipping inheritable mark", "addr", sock.Addr())
	}
	return nil
}

// rawControl runs fn on the socket's raw descriptor. Handles that
// expose no descriptor (named pipes) report applied=false without
// error.
func rawControl(sock Socket, fn func(uintptr) error) (applied bool, err error) {
	var sc syscall.Conn
	switch {
	case sock.Listener != nil:
		var ok bool
		if sc, ok = sock.Listener.(syscall.Conn); !ok {
			return false, nil
		}
	case sock.Packet != nil:
		var ok bool
		if sc, ok = sock.Packet.(syscall.Conn); !ok {
			return false, nil
		}
	default:
		return false, nil
	}

	raw, err := sc.SyscallConn()
	if err != nil {
		return false, err
	}
	var opErr error
	if err := raw.Control(func(fd uintptr) {
		opErr = fn(fd)
	}); err != nil {
		return false, err
	}
	return true, opErr
}
