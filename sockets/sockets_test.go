package sockets

import (
	"net"
	"strings"
	"testing"

	"github.com/wildmap/listenkit/bind"
)

func TestCreateTCP(t *testing.T) {
	f := NewFactory()
	sks, err := f.Create(testContext(t), bind.ParseAll([]string{"127.0.0.1:0"}), Stream)
	if err != nil {
		t.Fatal(err)
	}
	defer closeAll(sks)

	if len(sks) != 1 {
		t.Fatalf("got %d sockets", len(sks))
	}
	if sks[0].Listener == nil {
		t.Fatal("stream socket has no listener")
	}
	if sks[0].Packet != nil {
		t.Fatal("stream socket has a packet conn")
	}
	addr, ok := sks[0].Addr().(*net.TCPAddr)
	if !ok {
		t.Fatalf("addr type %T", sks[0].Addr())
	}
	if addr.Port == 0 {
		t.Error("ephemeral port not resolved")
	}
}

func TestCreateDatagram(t *testing.T) {
	f := NewFactory()
	sks, err := f.Create(testContext(t), bind.ParseAll([]string{"127.0.0.1:0"}), Datagram)
	if err != nil {
		t.Fatal(err)
	}
	defer closeAll(sks)

	if sks[0].Packet == nil {
		t.Fatal("datagram socket has no packet conn")
	}
	if sks[0].Listener != nil {
		t.Fatal("datagram socket has a listener")
	}
}

func TestCreateIPv6(t *testing.T) {
	f := NewFactory()
	sks, err := f.Create(testContext(t), bind.ParseAll([]string{"[::1]:0"}), Stream)
	if err != nil {
		t.Skipf("IPv6 unavailable: %v", err)
	}
	defer closeAll(sks)

	addr := sks[0].Addr().(*net.TCPAddr)
	if addr.IP.To4() != nil {
		t.Errorf("expected IPv6 address, got %s", addr)
	}
	if addr.Network() != "tcp" || !strings.Contains(addr.String(), "[") {
		t.Errorf("addr = %s", addr)
	}
}

func TestCreateOrderAndAbort(t *testing.T) {
	f := NewFactory()
	first, err := f.Create(testContext(t), bind.ParseAll([]string{"127.0.0.1:0"}), Stream)
	if err != nil {
		t.Fatal(err)
	}
	defer closeAll(first)
	taken := first[0].Addr().String()

	// Second spec collides with the live listener above; the whole
	// call must fail, nothing is returned.
	sks, err := f.Create(testContext(t), bind.ParseAll([]string{"127.0.0.1:0", taken}), Stream)
	if err == nil {
		closeAll(sks)
		t.Fatal("expected address-in-use error")
	}
	if sks != nil {
		t.Errorf("got sockets alongside error: %v", sks)
	}
}

// Address reuse must not mask a real conflict: two single-worker
// factories may not hold the same TCP address at once.
func TestDoubleBindConflict(t *testing.T) {
	f := NewFactory()
	f.Workers = 1
	sks, err := f.Create(testContext(t), bind.ParseAll([]string{"127.0.0.1:0"}), Stream)
	if err != nil {
		t.Fatal(err)
	}
	defer closeAll(sks)

	_, err = f.Create(testContext(t), bind.ParseAll([]string{sks[0].Addr().String()}), Stream)
	if err == nil {
		t.Fatal("expected second bind to fail")
	}
}

func TestInvalidInheritedFD(t *testing.T) {
	f := NewFactory()
	_, err := f.Create(testContext(t), bind.ParseAll([]string{"fd://sock"}), Stream)
	if err == nil {
		t.Fatal("expected error for non-numeric descriptor")
	}
	if !strings.Contains(err.Error(), "invalid inherited descriptor") {
		t.Errorf("err = %v", err)
	}
}

func closeAll(sks []Socket) {
	for _, s := range sks {
		_ = s.Close()
	}
}
