package tlsconf

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
)

// VerifyMode controls whether a peer certificate is requested and
// whether presenting one is mandatory.
type VerifyMode int

const (
	// VerifyNone requests no peer certificate.
	VerifyNone VerifyMode = iota
	// VerifyOptional requests and verifies a certificate if the peer
	// sends one.
	VerifyOptional
	// VerifyRequired refuses peers without a valid certificate.
	VerifyRequired
)

func (m VerifyMode) String() string {
	switch m {
	case VerifyNone:
		return "none"
	case VerifyOptional:
		return "optional"
	case VerifyRequired:
		return "required"
	default:
		return fmt.Sprintf("verifymode(%d)", int(m))
	}
}

func (m VerifyMode) clientAuth() tls.ClientAuthType {
	switch m {
	case VerifyOptional:
		return tls.VerifyClientCertIfGiven
	case VerifyRequired:
		return tls.RequireAndVerifyClientCert
	default:
		return tls.NoClientCert
	}
}

// VerifyFlags is a bitset of additional peer-certificate checks layered
// on top of the chain verification the mode already performs.
type VerifyFlags uint64

const (
	// VerifyX509Strict rejects leaf certificates signed with broken
	// digest algorithms.
	VerifyX509Strict VerifyFlags = 1 << iota
	// VerifyRequireSAN rejects leaf certificates carrying no subject
	// alternative name.
	VerifyRequireSAN
)

// Set sets the given flag bits.
func (f *VerifyFlags) Set(v VerifyFlags) {
	*f |= v
}

// Clear clears the given flag bits.
func (f *VerifyFlags) Clear(v VerifyFlags) {
	*f &^= v
}

// Include reports whether every bit of v is set.
func (f VerifyFlags) Include(v VerifyFlags) bool {
	return f&v == v
}

var weakSigAlgs = map[x509.SignatureAlgorithm]bool{
	x509.MD2WithRSA:    true,
	x509.MD5WithRSA:    true,
	x509.SHA1WithRSA:   true,
	x509.DSAWithSHA1:   true,
	x509.ECDSAWithSHA1: true,
}

// peerVerifier runs after the standard chain verification and applies
// the flag checks to the peer's leaf certificate. A peer that sent no
// certificate passes; whether one was required is the mode's job.
func peerVerifier(flags VerifyFlags) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return nil
		}
		leaf, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("parse peer certificate: %w", err)
		}
		if flags.Include(VerifyX509Strict) && weakSigAlgs[leaf.SignatureAlgorithm] {
			return fmt.Errorf("peer certificate uses weak signature algorithm %s", leaf.SignatureAlgorithm)
		}
		if flags.Include(VerifyRequireSAN) {
			if len(leaf.DNSNames)+len(leaf.IPAddresses)+len(leaf.EmailAddresses)+len(leaf.URIs) == 0 {
				return errors.New("peer certificate has no subject alternative name")
			}
		}
		return nil
	}
}
