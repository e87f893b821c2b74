//go:build windows

package sockets

import (
	"context"
	"errors"

	"github.com/Microsoft/go-winio"

	"github.com/wildmap/listenkit/bind"
)

// listenUnix maps a unix bind onto a named pipe; Windows has no
// filesystem sockets, so umask and ownership do not apply here.
func (f *Factory) listenUnix(ctx context.Context, spec bind.Spec, tr Transport) (Socket, error) {
	if tr == Datagram {
		return Socket{}, errors.New("datagram unix sockets are not supported on windows")
	}
	// allow Administrators and SYSTEM
	c := winio.PipeConfig{
		SecurityDescriptor: "D:P(A;;GA;;;BA)(A;;GA;;;SY)",
		InputBufferSize:    65536,
		OutputBufferSize:   65536,
	}
	ln, err := winio.ListenPipe(spec.Path, &c)
	if err != nil {
		return Socket{}, err
	}
	return Socket{Spec: spec, Listener: ln}, nil
}
