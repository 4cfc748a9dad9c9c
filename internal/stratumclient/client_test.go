package stratumclient

import (
	"bufio"
	"encoding/json"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/heliopool/poolmanager/internal/interfaces"
	"github.com/heliopool/poolmanager/internal/lib"
)

// fakeServer accepts one connection and lets the test script lines back
// and forth over it, standing in for an upstream pool.
type fakeServer struct {
	listener net.Listener
	conns    chan net.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{listener: l, conns: make(chan net.Conn, 1)}
	go func() {
		conn, err := l.Accept()
		if err == nil {
			s.conns <- conn
		}
	}()
	return s
}

func (s *fakeServer) accept(t *testing.T) net.Conn {
	t.Helper()
	select {
	case c := <-s.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted a connection")
		return nil
	}
}

func (s *fakeServer) hostPort(t *testing.T) (string, uint16) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(s.listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.ParseUint(portStr, 10, 16)
	require.NoError(t, err)
	return host, uint16(port)
}

func TestClientConnectHandshakeAndWork(t *testing.T) {
	server := newFakeServer(t)
	defer server.listener.Close()

	c := New(lib.NewTestLogger())
	host, port := server.hostPort(t)
	c.SetConnection(interfaces.Endpoint{Host: host, Port: port, Credentials: "0xabc.rig1"})

	connected := make(chan struct{}, 1)
	c.OnConnected(func() { connected <- struct{}{} })

	workCh := make(chan interfaces.WorkPackage, 1)
	c.OnWorkReceived(func(wp interfaces.WorkPackage) { workCh <- wp })

	c.Connect()

	conn := server.accept(t)
	reader := bufio.NewReader(conn)

	// subscribe
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	var sub request
	require.NoError(t, json.Unmarshal(line, &sub))
	require.Equal(t, methodSubscribe, sub.Method)

	// authorize
	line, err = reader.ReadBytes('\n')
	require.NoError(t, err)
	var auth request
	require.NoError(t, json.Unmarshal(line, &auth))
	require.Equal(t, methodAuthorize, auth.Method)

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("OnConnected never fired")
	}
	require.True(t, c.IsConnected())

	notify := notification{
		Method: methodNotify,
		Params: []any{"job-1", "0x11", "0x00000000ffff00000000000000000000000000000000000000000000000000", "0x2a", true},
	}
	data, err := json.Marshal(notify)
	require.NoError(t, err)
	data = append(data, '\n')
	_, err = conn.Write(data)
	require.NoError(t, err)

	select {
	case wp := <-workCh:
		require.EqualValues(t, 42, wp.Epoch)
	case <-time.After(2 * time.Second):
		t.Fatal("OnWorkReceived never fired")
	}

	disconnected := make(chan struct{}, 1)
	c.OnDisconnected(func() { disconnected <- struct{}{} })
	c.Disconnect()

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("OnDisconnected never fired")
	}
	require.False(t, c.IsConnected())
}
