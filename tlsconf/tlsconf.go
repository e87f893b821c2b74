// Package tlsconf builds the hardened tls.Config a server hands to its
// handshake path. TLS being switched off (no certificate material) is a
// valid state, reported as a nil config rather than an error.
package tlsconf

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Settings is the TLS subset of the server configuration.
type Settings struct {
	// CertFile and KeyFile form the server identity. Both must be set
	// for TLS to be enabled.
	CertFile string
	KeyFile  string

	// CACerts is an optional PEM bundle of trusted roots for peer
	// verification.
	CACerts string

	// Ciphers restricts the TLS 1.2 suite selection. See ParseCiphers
	// for the accepted policy syntax. Empty keeps the library default.
	Ciphers string

	// ALPNProtocols is offered in client preference order.
	ALPNProtocols []string

	// VerifyMode overrides the default peer-certificate requirement
	// when non-nil.
	VerifyMode *VerifyMode

	// VerifyFlags adds extra peer-certificate checks when non-nil.
	VerifyFlags *VerifyFlags
}

// Enabled reports whether certificate material is configured.
func (s Settings) Enabled() bool {
	return s.CertFile != "" && s.KeyFile != ""
}

// Build produces a reusable, connection-shareable tls.Config from the
// settings, or nil when TLS is not enabled.
//
// The config floors the protocol at TLS 1.2; crypto/tls has no SSLv2,
// SSLv3 or TLS compression to switch off, so the floor and the library
// itself cover the legacy-protocol and compression-oracle hardening.
func Build(s Settings) (*tls.Config, error) {
	if !s.Enabled() {
		return nil, nil
	}

	suites, err := ParseCiphers(s.Ciphers)
	if err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(s.CertFile, s.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load certificate chain: %w", err)
	}

	cfg := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		CipherSuites: suites,
		NextProtos:   append([]string(nil), s.ALPNProtocols...),
		Certificates: []tls.Certificate{cert},
	}

	if s.CACerts != "" {
		pool, err := loadCertPool(s.CACerts)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.RootCAs = pool
	}

	if s.VerifyMode != nil {
		cfg.ClientAuth = s.VerifyMode.clientAuth()
	}
	if s.VerifyFlags != nil && *s.VerifyFlags != 0 {
		cfg.VerifyPeerCertificate = peerVerifier(*s.VerifyFlags)
	}

	return cfg, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load CA bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("load CA bundle %s: no certificates found", path)
	}
	return pool, nil
}
