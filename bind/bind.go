// Package bind parses textual bind specifications into structured form.
//
// Three syntaxes are understood:
//
//	unix:/run/app.sock   filesystem socket path
//	fd://3               descriptor inherited from the parent process
//	host:port            TCP endpoint, IPv6 literals may be bracketed
//
// Parsing never fails: a TCP spec without a usable trailing port falls
// back to the whole string as host with the default port. Silently
// defaulting the port keeps a typo in an operator-supplied address from
// refusing startup outright.
package bind

import (
	"strconv"
	"strings"
)

// DefaultPort is used when a TCP spec omits the port or the port does
// not parse as an integer.
const DefaultPort = 8000

// Kind discriminates the Spec variants.
type Kind int

const (
	// KindTCP is a host/port endpoint.
	KindTCP Kind = iota
	// KindUnix is a unix-domain socket path.
	KindUnix
	// KindFD is a descriptor inherited from the spawning process.
	KindFD
)

func (k Kind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindUnix:
		return "unix"
	case KindFD:
		return "fd"
	default:
		return "unknown"
	}
}

// Spec is a parsed bind specification. Exactly one variant is
// populated, selected by Kind.
type Spec struct {
	Kind Kind

	// KindTCP
	Host string
	Port int

	// KindUnix
	Path string

	// KindFD. FD is -1 when the fd:// remainder was not an integer;
	// socket creation treats that as a fatal caller error. Raw keeps
	// the unparsed remainder for the error message.
	FD  int
	Raw string
}

// Parse converts a bind string into a Spec. It is a total function;
// malformed TCP input degrades to the default port rather than failing.
func Parse(s string) Spec {
	if path, ok := strings.CutPrefix(s, "unix:"); ok {
		return Spec{Kind: KindUnix, Path: path}
	}
	if raw, ok := strings.CutPrefix(s, "fd://"); ok {
		fd, err := strconv.Atoi(raw)
		if err != nil || fd < 0 {
			fd = -1
		}
		return Spec{Kind: KindFD, FD: fd, Raw: raw}
	}

	s = strings.ReplaceAll(s, "[", "")
	s = strings.ReplaceAll(s, "]", "")
	host, portStr, found := cutLast(s, ":")
	if found {
		if port, err := strconv.Atoi(portStr); err == nil {
			return Spec{Kind: KindTCP, Host: host, Port: port}
		}
	}
	return Spec{Kind: KindTCP, Host: s, Port: DefaultPort}
}

// ParseAll parses a list of bind strings, preserving order.
func ParseAll(binds []string) []Spec {
	specs := make([]Spec, 0, len(binds))
	for _, b := range binds {
		specs = append(specs, Parse(b))
	}
	return specs
}

// IPv6 reports whether a TCP spec's host is an IPv6 literal. Brackets
// are already stripped by Parse, so any remaining colon means IPv6.
func (s Spec) IPv6() bool {
	return s.Kind == KindTCP && strings.Contains(s.Host, ":")
}

// Addr renders the spec back into a dialable address form.
func (s Spec) Addr() string {
	switch s.Kind {
	case KindUnix:
		return s.Path
	case KindFD:
		return "fd://" + s.Raw
	default:
		host := s.Host
		if s.IPv6() {
			host = "[" + host + "]"
		}
		return host + ":" + strconv.Itoa(s.Port)
	}
}

// cutLast splits s around the last occurrence of sep.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
