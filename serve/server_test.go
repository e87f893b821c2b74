package serve

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/wildmap/listenkit"
	"github.com/wildmap/listenkit/settings"
)

type echoAgent struct {
	conn IConn
}

func (a *echoAgent) OnInit(ctx context.Context) error { return nil }

func (a *echoAgent) Run(ctx context.Context) {
	for {
		data, err := a.conn.ReadMsg()
		if err != nil {
			return
		}
		if err := a.conn.WriteMsg(data); err != nil {
			return
		}
	}
}

func (a *echoAgent) OnClose(ctx context.Context) {}

func startEchoServer(t *testing.T) (*Server, string) {
	t.Helper()
	s := settings.Default()
	s.Bind = []string{"127.0.0.1:0"}

	sks, tlsCfg, err := listenkit.Assemble(testContext(t), s)
	if err != nil {
		t.Fatal(err)
	}

	srv := NewServer(sks, tlsCfg, func(conn IConn) IAgent {
		return &echoAgent{conn: conn}
	})
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(srv.Stop)
	return srv, sks.Insecure[0].Addr().String()
}

func TestEchoOverSocket(t *testing.T) {
	_, addr := startEchoServer(t)

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	sc := NewSocketConn(conn)
	if err := sc.WriteMsg([]byte("ping")); err != nil {
		t.Fatal(err)
	}
	reply, err := sc.ReadMsg()
	if err != nil {
		t.Fatal(err)
	}
	if string(reply) != "ping" {
		t.Errorf("reply = %q", reply)
	}
}

func TestConnCount(t *testing.T) {
	srv, addr := startEchoServer(t)

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	sc := NewSocketConn(conn)
	if err := sc.WriteMsg([]byte("hi")); err != nil {
		t.Fatal(err)
	}
	if _, err := sc.ReadMsg(); err != nil {
		t.Fatal(err)
	}
	if n := srv.GetConnCount(); n != 1 {
		t.Errorf("conn count = %d, want 1", n)
	}
}

func TestStartValidation(t *testing.T) {
	if err := NewServer(nil, nil, nil).Start(); err == nil {
		t.Error("nil sockets accepted")
	}

	s := settings.Default()
	s.Bind = []string{"127.0.0.1:0"}
	sks, _, err := listenkit.Assemble(testContext(t), s)
	if err != nil {
		t.Fatal(err)
	}
	defer sks.Close()

	if err := NewServer(sks, nil, nil).Start(); err == nil {
		t.Error("nil agent factory accepted")
	}
}
