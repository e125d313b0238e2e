package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stimjim-service/internal/config"
	"stimjim-service/internal/discovery"
	"stimjim-service/internal/protocol"
	"stimjim-service/internal/repository"
	"stimjim-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router     *gin.Engine
	stimulator *service.StimulatorService
	loopback   *protocol.LoopbackConnection
}

// newTestEnv wires every REST handler to a stimulator attached to a loopback
// device. repo may be nil to disable the library.
func newTestEnv(t *testing.T, repo repository.ProgramRepository) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	cfg := &config.DeviceConfig{Transport: string(protocol.TransportLoopback)}

	stimulator := service.NewStimulatorService(cfg, logger)
	loopback := protocol.NewLoopbackConnection(logger)
	require.NoError(t, stimulator.Attach(context.Background(), loopback, "loopback"))

	discoveryService := service.NewDiscoveryServiceWithManager(discovery.NewScannerManager(logger), cfg, logger)
	programService := service.NewProgramService(repo, stimulator, logger)

	router := gin.New()
	api := router.Group("/api/v1")
	NewStimulatorHandler(stimulator, discoveryService, logger).RegisterRoutes(api)
	NewProgramHandler(stimulator, logger).RegisterRoutes(api)
	NewWorkspaceHandler(stimulator, logger).RegisterRoutes(api)
	NewLibraryHandler(programService, logger).RegisterRoutes(api)
	NewDiscoveryHandler(discoveryService, logger).RegisterRoutes(api)
	NewHealthHandler(nil, stimulator, &config.Config{App: config.AppConfig{Name: "stimjim-service", Version: "test"}}, logger).
		RegisterRoutes(router.Group(""))

	return &testEnv{router: router, stimulator: stimulator, loopback: loopback}
}

// do performs a request; body may be nil, a string sent as is, or a value
// encoded as JSON
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func lastLine(t *testing.T, loopback *protocol.LoopbackConnection) string {
	t.Helper()
	lines := loopback.Lines()
	require.NotEmpty(t, lines)
	return lines[len(lines)-1]
}

