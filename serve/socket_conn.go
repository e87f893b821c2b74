package serve

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

const (
	// MsgLenSize 消息长度字段的字节大小(4字节,用于uint32)
	MsgLenSize = 4
)

// SocketConn 封装net.Conn以提供带长度前缀的消息读写功能
// 消息格式: [4字节大端序长度][消息体]
// 通过互斥锁确保并发写入的线程安全性
type SocketConn struct {
	conn       net.Conn   // 底层网络连接
	writeMutex sync.Mutex // 互斥锁,确保写入操作的线程安全
}

// NewSocketConn 创建一个新的SocketConn实例,封装给定的net.Conn
func NewSocketConn(conn net.Conn) *SocketConn {
	return &SocketConn{
		conn: conn,
	}
}

// Close 关闭底层网络连接
func (t *SocketConn) Close() error {
	return t.conn.Close()
}

// RemoteAddr 返回远程网络地址
func (t *SocketConn) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// LocalAddr 返回本地网络地址
func (t *SocketConn) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// ReadMsg 从连接读取带长度前缀的消息
// 超过MaxMsgLen的消息被拒绝,避免恶意长度导致内存耗尽
func (t *SocketConn) ReadMsg() ([]byte, error) {
	var head [MsgLenSize]byte
	if _, err := io.ReadFull(t.conn, head[:]); err != nil {
		return nil, err
	}

	msgLen := binary.BigEndian.Uint32(head[:])
	if msgLen > MaxMsgLen {
		return nil, fmt.Errorf("message too long: %d", msgLen)
	}

	data := make([]byte, msgLen)
	if _, err := io.ReadFull(t.conn, data); err != nil {
		return nil, err
	}
	return data, nil
}

// WriteMsg 以线程安全的方式向连接写入带长度前缀的消息
func (t *SocketConn) WriteMsg(data []byte) error {
	if len(data) > MaxMsgLen {
		return errors.New("message too long")
	}

	t.writeMutex.Lock()
	defer t.writeMutex.Unlock()

	buf := make([]byte, MsgLenSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[MsgLenSize:], data)

	_, err := t.conn.Write(buf)
	return err
}
