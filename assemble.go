// Package listenkit assembles the network-facing runtime state of a
// server process: bound OS sockets for every configured bind address
// and, when certificate material is present, a hardened TLS config for
// the handshake path. Everything is created once at startup and handed
// to the caller; listenkit keeps no references.
package listenkit

import (
	"context"
	"crypto/tls"

	"github.com/wildmap/listenkit/bind"
	"github.com/wildmap/listenkit/settings"
	"github.com/wildmap/listenkit/sockets"
	"github.com/wildmap/listenkit/tlsconf"
	"github.com/wildmap/listenkit/xlog"
)

// Sockets groups the bound sockets by role. All three slices preserve
// the order of their bind lists. The caller owns every handle.
type Sockets struct {
	// Secure listeners expect TLS-wrapped traffic.
	Secure []sockets.Socket
	// Insecure listeners carry plain traffic.
	Insecure []sockets.Socket
	// QUIC packet sockets carry a transport-encrypted UDP protocol.
	QUIC []sockets.Socket
}

// Close closes every socket, returning the first error.
func (s *Sockets) Close() error {
	var first error
	for _, group := range [][]sockets.Socket{s.Secure, s.Insecure, s.QUIC} {
		for _, sock := range group {
			if err := sock.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// Assemble binds every configured address and builds the TLS config.
//
// With certificate material configured, the Bind list becomes the
// secure group, InsecureBind the insecure group and QuicBind the
// datagram group. Without it, the Bind addresses are bound as plain
// listeners instead and the secure and QUIC groups stay empty: the
// server comes up in plaintext rather than refusing to start, so a
// missing certificate is loud in traffic, not in downtime.
//
// Any bind failure closes whatever was already bound and aborts.
func Assemble(ctx context.Context, s settings.Settings) (*Sockets, *tls.Config, error) {
	s = s.Finalize()

	tlsCfg, err := tlsconf.Build(s.TLS)
	if err != nil {
		return nil, nil, err
	}

	f := sockets.NewFactory()
	f.Workers = s.Workers
	f.User = s.User
	f.Group = s.Group
	f.Umask = s.Umask

	out := &Sockets{}
	if tlsCfg != nil {
		if out.Secure, err = f.Create(ctx, bind.ParseAll(s.Bind), sockets.Stream); err != nil {
			return nil, nil, err
		}
		if out.Insecure, err = f.Create(ctx, bind.ParseAll(s.InsecureBind), sockets.Stream); err != nil {
			_ = out.Close()
			return nil, nil, err
		}
		if out.QUIC, err = f.Create(ctx, bind.ParseAll(s.QuicBind), sockets.Datagram); err != nil {
			_ = out.Close()
			return nil, nil, err
		}
		return out, tlsCfg, nil
	}

	if len(s.Bind) > 0 {
		xlog.Warnw("no certificate material configured, serving plaintext", "binds", s.Bind)
	}
	if out.Insecure, err = f.Create(ctx, bind.ParseAll(s.Bind), sockets.Stream); err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}
