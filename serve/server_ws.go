package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soheilhy/cmux"

	"github.com/wildmap/listenkit/xlog"
)

// upgrader 配置WebSocket升级器:
// - 10秒握手超时
// - 4KB读写缓冲区
// - 宽松的来源检查(允许所有来源)
var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   4096,
	WriteBufferSize:  4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许来自任何来源的连接
	},
}

// startWebsocketServer 运行WebSocket服务器
func (s *Server) startWebsocketServer(ln net.Listener) {
	httpSvr := &http.Server{
		Handler:      http.HandlerFunc(s.handleWebsocketConn),
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return s.ctx
		},
	}

	if err := httpSvr.Serve(ln); err != nil &&
		!errors.Is(err, net.ErrClosed) &&
		!errors.Is(err, http.ErrServerClosed) &&
		!errors.Is(err, cmux.ErrServerClosed) &&
		!errors.Is(err, cmux.ErrListenerClosed) {
		xlog.Errorf("websocket server error: %v", err)
	}
}

// handleWebsocketConn 处理HTTP请求并将其升级为WebSocket连接
// 从panic中恢复以防止服务器崩溃
func (s *Server) handleWebsocketConn(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rr := recover(); rr != nil {
			xlog.Errorf("ws handler panic, error: %v\n%s", rr, string(debug.Stack()))
		}
	}()

	// 检查服务器是否正在关闭
	select {
	case <-s.ctx.Done():
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade已向客户端发送错误响应
		return
	}

	remoteAddr := &realAddr{network: "tcp", addr: s.getHTTPClientIP(r)}
	s.handleConn(NewWSConn(conn, remoteAddr))
}

// getHTTPClientIP 从HTTP请求中获取客户端真实IP
// 优先级: X-Forwarded-For第一个IP > X-Real-IP > RemoteAddr
func (s *Server) getHTTPClientIP(r *http.Request) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For可能包含多个IP,格式: client, proxy1, proxy2
		if parts := strings.Split(xff, ","); len(parts) > 0 {
			if ip := strings.TrimSpace(parts[0]); net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	return remoteIP
}

// realAddr 实现net.Addr接口,用于存储真实IP地址
type realAddr struct {
	network string
	addr    string
}

func (r *realAddr) Network() string {
	return r.network
}

func (r *realAddr) String() string {
	return r.addr
}
