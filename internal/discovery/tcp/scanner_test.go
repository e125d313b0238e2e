package tcp

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stimjim-service/internal/protocol"
)

func TestScanFindsListeningBridge(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	closed, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedAddr := closed.Addr().String()
	closed.Close()

	s := NewScanner(zap.NewNop(), &Config{
		Endpoints: []string{listener.Addr().String(), closedAddr, "not-an-endpoint"},
	})
	require.True(t, s.IsAvailable())

	ports, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, ports, 1)
	assert.Equal(t, protocol.TransportTCP, ports[0].Transport)
	assert.Equal(t, "127.0.0.1", ports[0].ConnectionInfo["host"])
}

func TestScannerUnavailableWithoutEndpoints(t *testing.T) {
	assert.False(t, NewScanner(zap.NewNop(), nil).IsAvailable())
}
