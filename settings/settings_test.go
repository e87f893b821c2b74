package settings

import (
	"testing"

	"github.com/wildmap/listenkit/tlsconf"
)

func TestDefault(t *testing.T) {
	s := Default()
	if len(s.Bind) != 1 || s.Bind[0] != "127.0.0.1:8000" {
		t.Errorf("Bind = %v", s.Bind)
	}
	if s.Workers != 1 {
		t.Errorf("Workers = %d", s.Workers)
	}
	if s.TLS.Ciphers != tlsconf.DefaultCiphers {
		t.Errorf("Ciphers = %q", s.TLS.Ciphers)
	}
	if len(s.TLS.ALPNProtocols) != 2 || s.TLS.ALPNProtocols[0] != "h2" {
		t.Errorf("ALPNProtocols = %v", s.TLS.ALPNProtocols)
	}
	if s.TLS.Enabled() {
		t.Error("TLS enabled without certificate material")
	}
}

func TestFinalizeNormalizesBinds(t *testing.T) {
	s := Default()
	s.Bind = []string{" 127.0.0.1:8000 ", "", "unix:/run/app.sock"}
	s.InsecureBind = []string{"   "}
	s.Workers = 0

	got := s.Finalize()
	if len(got.Bind) != 2 || got.Bind[0] != "127.0.0.1:8000" || got.Bind[1] != "unix:/run/app.sock" {
		t.Errorf("Bind = %v", got.Bind)
	}
	if len(got.InsecureBind) != 0 {
		t.Errorf("InsecureBind = %v", got.InsecureBind)
	}
	if got.Workers != 1 {
		t.Errorf("Workers = %d", got.Workers)
	}

	// The input slice must not alias into the finalized value.
	s.Bind[0] = "changed"
	if got.Bind[0] != "127.0.0.1:8000" {
		t.Error("finalized settings alias the input slice")
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	s := Default().Finalize()
	again := s.Finalize()
	if len(again.Bind) != len(s.Bind) || again.Workers != s.Workers {
		t.Errorf("Finalize not idempotent: %+v vs %+v", again, s)
	}
}

func TestMigrateCertReqs(t *testing.T) {
	cases := []struct {
		reqs int
		want tlsconf.VerifyMode
	}{
		{0, tlsconf.VerifyNone},
		{1, tlsconf.VerifyOptional},
		{2, tlsconf.VerifyRequired},
	}
	for _, c := range cases {
		s := Default()
		s.CertReqs = &c.reqs
		got := s.Finalize()
		if got.CertReqs != nil {
			t.Errorf("CertReqs survived migration")
		}
		if got.TLS.VerifyMode == nil || *got.TLS.VerifyMode != c.want {
			t.Errorf("CertReqs %d migrated to %v, want %v", c.reqs, got.TLS.VerifyMode, c.want)
		}
	}
}

func TestMigrateModernFieldWins(t *testing.T) {
	s := Default()
	legacy := 2
	mode := tlsconf.VerifyNone
	s.CertReqs = &legacy
	s.TLS.VerifyMode = &mode

	got := s.Finalize()
	if *got.TLS.VerifyMode != tlsconf.VerifyNone {
		t.Errorf("legacy field overrode verify mode: %v", *got.TLS.VerifyMode)
	}
}
