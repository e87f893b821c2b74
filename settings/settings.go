// Package settings holds the listener-facing server configuration.
// Defaults live in exactly one place (Default); values are plain data
// with no shared mutable state, normalized once at load time.
package settings

import (
	"strings"

	"github.com/wildmap/listenkit/tlsconf"
	"github.com/wildmap/listenkit/xlog"
)

// Settings is the subset of server configuration consumed when
// preparing listeners. Construct with Default, adjust fields, then
// pass through Finalize before use.
type Settings struct {
	// Bind addresses expect TLS-wrapped traffic when certificate
	// material is configured, plain traffic otherwise.
	Bind []string
	// InsecureBind addresses always carry plain traffic.
	InsecureBind []string
	// QuicBind addresses are bound as datagram sockets for a
	// transport-encrypted UDP protocol.
	QuicBind []string

	// Workers is the number of processes that will share the
	// listeners.
	Workers int

	// User, Group and Umask shape ownership and permissions of unix
	// socket paths.
	User  *int
	Group *int
	Umask *int

	TLS tlsconf.Settings

	// CertReqs is the legacy certificate-requirement level
	// (0 none, 1 optional, 2 required).
	//
	// Deprecated: set TLS.VerifyMode instead. Finalize migrates the
	// value and warns.
	CertReqs *int
}

// Default returns the baseline settings.
func Default() Settings {
	return Settings{
		Bind:    []string{"127.0.0.1:8000"},
		Workers: 1,
		TLS: tlsconf.Settings{
			Ciphers:       tlsconf.DefaultCiphers,
			ALPNProtocols: []string{"h2", "http/1.1"},
		},
	}
}

// Finalize returns a copy with bind lists canonicalized and legacy
// fields migrated. It is idempotent; callers that assemble listeners
// apply it once at load time.
func (s Settings) Finalize() Settings {
	s.Bind = normalizeBinds(s.Bind)
	s.InsecureBind = normalizeBinds(s.InsecureBind)
	s.QuicBind = normalizeBinds(s.QuicBind)
	if s.Workers < 1 {
		s.Workers = 1
	}
	return s.migrate()
}

// migrate translates deprecated fields into their modern form. The
// modern field wins when both are set.
func (s Settings) migrate() Settings {
	if s.CertReqs == nil {
		return s
	}
	if s.TLS.VerifyMode == nil {
		mode := tlsconf.VerifyMode(*s.CertReqs)
		s.TLS.VerifyMode = &mode
	}
	xlog.Warnw("cert_reqs is deprecated, use the TLS verify mode",
		"cert_reqs", *s.CertReqs, "verify_mode", s.TLS.VerifyMode.String())
	s.CertReqs = nil
	return s
}

// normalizeBinds trims entries and drops empties, preserving order.
// The result is a fresh slice so later mutation of the input cannot
// alias into finalized settings.
func normalizeBinds(binds []string) []string {
	out := make([]string, 0, len(binds))
	for _, b := range binds {
		b = strings.TrimSpace(b)
		if b != "" {
			out = append(out, b)
		}
	}
	return out
}
