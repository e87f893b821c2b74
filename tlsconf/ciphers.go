package tlsconf

import (
	"crypto/tls"
	"fmt"
	"strings"
)

// DefaultCiphers is the default suite policy: forward secrecy with
// AEAD ciphers only.
const DefaultCiphers = "ECDHE+AESGCM"

// groupAliases map OpenSSL-style cipher groups onto Go suite IDs.
// TLS 1.3 suites are not selectable in crypto/tls; a policy only
// constrains TLS 1.2 handshakes.
var groupAliases = map[string][]uint16{
	"ECDHE+AESGCM": {
		tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	},
	"ECDHE+CHACHA20": {
		tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
		tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
	},
}

// ParseCiphers turns a policy string into suite IDs. Tokens are split
// on ':' or ',' and may be group aliases (ECDHE+AESGCM) or exact Go
// suite names (TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256). Unknown tokens
// are an error; a server silently running weaker ciphers than asked
// for would be worse than refusing to start. Empty input selects the
// library default (nil).
func ParseCiphers(policy string) ([]uint16, error) {
	policy = strings.TrimSpace(policy)
	if policy == "" {
		return nil, nil
	}

	byName := make(map[string]uint16)
	for _, cs := range tls.CipherSuites() {
		byName[cs.Name] = cs.ID
	}

	var (
		suites []uint16
		seen   = make(map[uint16]bool)
	)
	add := func(id uint16) {
		if !seen[id] {
			seen[id] = true
			suites = append(suites, id)
		}
	}

	for _, token := range strings.FieldsFunc(policy, func(r rune) bool {
		return r == ':' || r == ','
	}) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if ids, ok := groupAliases[token]; ok {
			for _, id := range ids {
				add(id)
			}
			continue
		}
		if id, ok := byName[token]; ok {
			add(id)
			continue
		}
		return nil, fmt.Errorf("unknown cipher %q", token)
	}
	if len(suites) == 0 {
		return nil, fmt.Errorf("cipher policy %q selects no suites", policy)
	}
	return suites, nil
}
