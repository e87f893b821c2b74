// Package serve 消费listenkit装配好的监听集合,运行连接接受循环
// 普通Socket与WebSocket共享同一监听端口(通过cmux按协议路由)
// QUIC组的数据报socket承载KCP会话
package serve

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/pires/go-proxyproto"
	"github.com/soheilhy/cmux"
	"github.com/xtaci/kcp-go"
	"go.uber.org/atomic"

	"github.com/wildmap/listenkit"
	"github.com/wildmap/listenkit/xlog"
)

// MaxMsgLen 定义允许的最大消息大小(50MB)
const MaxMsgLen = 50 * 1024 * 1024

// Option 配置Server的可选项
type Option func(*Server)

// WithProxyProtocol 对流式监听器启用HAProxy PROXY协议解析
func WithProxyProtocol() Option {
	return func(s *Server) { s.proxyProto = true }
}

// Server 在装配好的socket集合上运行接受循环
// 特性:
// - 安全组监听器自动用TLS封装
// - 并发连接处理与连接跟踪
// - 优雅关闭
type Server struct {
	wg         sync.WaitGroup          // WaitGroup用于跟踪活动的goroutine
	ctx        context.Context         // 用于关闭信号的上下文
	cancel     context.CancelFunc      // 上下文的取消函数
	sks        *listenkit.Sockets      // 装配好的socket集合,Server接管其生命周期
	tlsCfg     *tls.Config             // 安全组的TLS配置
	newAgent   func(conn IConn) IAgent // 创建代理的工厂函数
	proxyProto bool                    // 是否解析PROXY协议头
	lns        []net.Listener          // 监听器列表
	conns      map[IConn]struct{}      // 活动连接集合
	mutexConns sync.Mutex              // 用于跟踪连接的互斥锁
	connCount  atomic.Int32            // 活动连接的原子计数器
	started    atomic.Bool             // 服务器是否已启动
}

// NewServer 创建Server实例
// 参数: sks - 装配好的socket集合, tlsCfg - 安全组TLS配置(无安全组时可为nil),
// newAgent - 创建代理的工厂函数
func NewServer(sks *listenkit.Sockets, tlsCfg *tls.Config, newAgent func(conn IConn) IAgent, opts ...Option) *Server {
	s := &Server{
		sks:      sks,
		tlsCfg:   tlsCfg,
		newAgent: newAgent,
		conns:    make(map[IConn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// validate 检查服务器配置是否有效
func (s *Server) validate() error {
	if s.sks == nil {
		return errors.New("sockets must not be nil")
	}
	if s.newAgent == nil {
		return errors.New("NewAgent must not be nil")
	}
	if len(s.sks.Secure) > 0 && s.tlsCfg == nil {
		return errors.New("secure sockets require a TLS config")
	}
	return nil
}

// Start 在所有socket上启动接受循环
// 该方法不阻塞;循环在独立的goroutine中运行,由Stop结束
func (s *Server) Start() error {
	if err := s.validate(); err != nil {
		return fmt.Errorf("validate failed: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	for _, sock := range s.sks.Insecure {
		s.serveStream(sock.Listener, nil)
	}
	for _, sock := range s.sks.Secure {
		s.serveStream(sock.Listener, s.tlsCfg)
	}
	for _, sock := range s.sks.QUIC {
		if err := s.serveKCP(sock.Packet); err != nil {
			xlog.Errorf("server failed to start: %v", err)
			s.cancel()
			for _, ln := range s.lns {
				_ = ln.Close()
			}
			s.wg.Wait()
			return err
		}
	}

	if !s.started.CompareAndSwap(false, true) {
		return errors.New("server already started")
	}
	return nil
}

// serveStream 在一个流式监听器上启动接受循环
// tlsCfg非nil时先用TLS封装;之后用cmux将HTTP/WebSocket流量
// 与普通socket流量分开处理
func (s *Server) serveStream(ln net.Listener, tlsCfg *tls.Config) {
	if s.proxyProto {
		// 用ProxyProtocol包装以支持HAProxy PROXY协议
		ln = &proxyproto.Listener{Listener: ln}
	}
	if tlsCfg != nil {
		ln = tls.NewListener(ln, tlsCfg)
	}
	s.lns = append(s.lns, ln)

	// 设置连接多路复用器
	cmuxSvr := cmux.New(ln)
	cmuxSvr.SetReadTimeout(5 * time.Second)

	// 匹配HTTP/WebSocket连接
	wsLn := cmuxSvr.Match(cmux.HTTP1Fast())
	s.lns = append(s.lns, wsLn)

	// 匹配所有其他连接
	socketLn := cmuxSvr.Match(cmux.Any())
	s.lns = append(s.lns, socketLn)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		xlog.Infof("websocket server listening at %s", ln.Addr())
		s.startWebsocketServer(wsLn)
	}()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		xlog.Infof("socket server listening at %s", ln.Addr())
		s.startSocketServer(socketLn)
	}()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = cmuxSvr.Serve()
	}()
}

// serveKCP 在一个数据报socket上承载KCP会话
func (s *Server) serveKCP(pc net.PacketConn) error {
	ln, err := kcp.ServeConn(nil, 0, 0, pc)
	if err != nil {
		return fmt.Errorf("create kcp listener failed: %w", err)
	}

	s.lns = append(s.lns, ln)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		xlog.Infof("kcp server listening at %s", ln.Addr())
		s.startSocketServer(ln)
	}()
	return nil
}

// Stop 优雅地关闭服务器
// 关闭流程:
// 1. 取消上下文以停止接受新连接
// 2. 关闭所有监听器(socket由Server接管,在此关闭)
// 3. 关闭所有活动连接
// 4. 等待所有goroutine完成
func (s *Server) Stop() {
	if !s.started.CompareAndSwap(true, false) {
		xlog.Warnf("server already stopped")
		return
	}

	xlog.Infof("shutting down server...")

	if s.cancel != nil {
		s.cancel()
	}

	for _, ln := range s.lns {
		_ = ln.Close()
	}

	// 关闭所有活动连接
	s.mutexConns.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mutexConns.Unlock()

	// 等待所有goroutine完成
	s.wg.Wait()

	xlog.Infof("server stopped")
}

// GetConnCount 返回当前活动连接数
func (s *Server) GetConnCount() int32 {
	return s.connCount.Load()
}

// handleConn 处理新连接:创建并初始化代理,注册连接,
// 在goroutine中启动代理的处理循环,结束时清理
// 该方法同时用于socket、WebSocket和KCP连接
func (s *Server) handleConn(conn IConn) {
	agent := s.newAgent(conn)
	if agent == nil {
		_ = conn.Close()
		return
	}

	if err := agent.OnInit(s.ctx); err != nil {
		agent.OnClose(s.ctx)
		_ = conn.Close()
		xlog.Errorf("%s agent OnInit error: %v", conn.RemoteAddr(), err)
		return
	}

	s.mutexConns.Lock()
	s.conns[conn] = struct{}{}
	s.mutexConns.Unlock()
	s.connCount.Add(1)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if rr := recover(); rr != nil {
				xlog.Errorf("%s agent panic, error: %v\n %s", conn.RemoteAddr(), rr, string(debug.Stack()))
			}

			agent.OnClose(s.ctx)
			_ = conn.Close()

			s.mutexConns.Lock()
			delete(s.conns, conn)
			s.mutexConns.Unlock()
			s.connCount.Add(-1)
		}()

		agent.Run(s.ctx)
	}()
}
