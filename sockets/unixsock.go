//go:build !windows

package sockets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/wildmap/listenkit/bind"
	"github.com/wildmap/listenkit/xlog"
)

// listenUnix binds a unix-domain socket at the spec's path.
//
// A leftover socket file from a previous run is removed before binding;
// a missing path is fine. Anything else at the path stays untouched and
// will surface as a bind failure instead, which keeps a mistyped path
// from deleting a real file.
func (f *Factory) listenUnix(ctx context.Context, spec bind.Spec, tr Transport) (Socket, error) {
	path := spec.Path
	if fi, err := os.Stat(path); err == nil {
		if fi.Mode()&os.ModeSocket != 0 {
			if err := os.Remove(path); err != nil {
				return Socket{}, fmt.Errorf("remove stale socket %s: %w", path, err)
			}
			xlog.Debugw("removed stale unix socket", "path", path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Socket{}, fmt.Errorf("stat %s: %w", path, err)
	}

	if f.Umask != nil && f.Caps.Umask {
		prev := swapUmask(*f.Umask)
		defer swapUmask(prev)
	}

	sock, err := f.bindUnix(ctx, path, tr)
	if err != nil {
		return Socket{}, err
	}
	sock.Spec = spec

	if f.User != nil && f.Group != nil && f.Caps.Chown {
		if err := os.Chown(path, *f.User, *f.Group); err != nil {
			_ = sock.Close()
			return Socket{}, fmt.Errorf("chown %s: %w", path, err)
		}
	}
	return sock, nil
}

func (f *Factory) bindUnix(ctx context.Context, path string, tr Transport) (Socket, error) {
	lc := net.ListenConfig{Control: f.control}
	if tr == Datagram {
		pc, err := lc.ListenPacket(ctx, "unixgram", path)
		if err != nil {
			return Socket{}, fmt.Errorf("bind %s: %w", path, err)
		}
		return Socket{Packet: pc}, nil
	}
	ln, err := lc.Listen(ctx, "unix", path)
	if err != nil {
		return Socket{}, fmt.Errorf("bind %s: %w", path, err)
	}
	return Socket{Listener: ln}, nil
}
