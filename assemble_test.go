package listenkit

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wildmap/listenkit/settings"
)

func testCertFiles(t *testing.T) (certFile, keyFile string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "assemble test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	writePEMFile(t, certFile, "CERTIFICATE", der)
	writePEMFile(t, keyFile, "EC PRIVATE KEY", keyDER)
	return certFile, keyFile
}

func writePEMFile(t *testing.T, path, typ string, der []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: typ, Bytes: der}); err != nil {
		t.Fatal(err)
	}
}

func TestAssembleWithoutTLS(t *testing.T) {
	s := settings.Default()
	s.Bind = []string{"127.0.0.1:0", "127.0.0.1:0"}
	s.InsecureBind = []string{"127.0.0.1:0"}
	s.QuicBind = []string{"127.0.0.1:0"}

	sks, tlsCfg, err := Assemble(testContext(t), s)
	if err != nil {
		t.Fatal(err)
	}
	defer sks.Close()

	if tlsCfg != nil {
		t.Error("TLS config without certificate material")
	}
	if len(sks.Secure) != 0 || len(sks.QUIC) != 0 {
		t.Errorf("secure = %d, quic = %d, want empty", len(sks.Secure), len(sks.QUIC))
	}
	// Fail-open: the secure binds come up as plain listeners.
	if len(sks.Insecure) != 2 {
		t.Errorf("insecure = %d, want the 2 secure binds", len(sks.Insecure))
	}
}

func TestAssembleWithTLS(t *testing.T) {
	certFile, keyFile := testCertFiles(t)

	s := settings.Default()
	s.Bind = []string{"127.0.0.1:0"}
	s.InsecureBind = []string{"127.0.0.1:0"}
	s.QuicBind = []string{"127.0.0.1:0"}
	s.TLS.CertFile = certFile
	s.TLS.KeyFile = keyFile

	sks, tlsCfg, err := Assemble(testContext(t), s)
	if err != nil {
		t.Fatal(err)
	}
	defer sks.Close()

	if tlsCfg == nil {
		t.Fatal("no TLS config")
	}
	if len(sks.Secure) != 1 || len(sks.Insecure) != 1 || len(sks.QUIC) != 1 {
		t.Errorf("groups = %d/%d/%d", len(sks.Secure), len(sks.Insecure), len(sks.QUIC))
	}
	if sks.QUIC[0].Packet == nil {
		t.Error("quic socket is not a datagram socket")
	}
	if len(tlsCfg.NextProtos) != 2 || tlsCfg.NextProtos[0] != "h2" || tlsCfg.NextProtos[1] != "http/1.1" {
		t.Errorf("NextProtos = %v", tlsCfg.NextProtos)
	}
}

func TestAssembleBindFailureCleansUp(t *testing.T) {
	first := settings.Default()
	first.Bind = []string{"127.0.0.1:0"}
	sks, _, err := Assemble(testContext(t), first)
	if err != nil {
		t.Fatal(err)
	}
	defer sks.Close()

	second := settings.Default()
	second.Bind = []string{sks.Insecure[0].Addr().String()}
	if _, _, err := Assemble(testContext(t), second); err == nil {
		t.Fatal("expected address-in-use failure")
	}
}
