package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabucaps/brazilian/internal/infrastructure/config"
	progressv1 "github.com/sabucaps/brazilian/pkg/api/progress/v1"
	"github.com/sabucaps/brazilian/pkg/api/progress/v1/progressv1connect"
)

type summaryOnly struct {
	progressv1connect.UnimplementedProgressServiceHandler
}

func (summaryOnly) GetProgressSummary(_ context.Context, req *connect.Request[progressv1.GetProgressSummaryRequest]) (*connect.Response[progressv1.ProgressSummary], error) {
	if req.Msg.UserId == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("user id required"))
	}
	return connect.NewResponse(&progressv1.ProgressSummary{Total: 2, New: 2, Due: 2}), nil
}

func newTestServer(t *testing.T) (*httptest.Server, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", HTTPPort: 0, CORSOrigins: []string{"https://app.example"}}}

	srv := httptest.NewServer(NewServer(cfg, logger, summaryOnly{}).Handler())
	t.Cleanup(srv.Close)
	return srv, hook
}

func TestServerServesProgressService(t *testing.T) {
	srv, hook := newTestServer(t)
	client := progressv1connect.NewProgressServiceClient(srv.Client(), srv.URL)

	req := connect.NewRequest(&progressv1.GetProgressSummaryRequest{UserId: "u1"})
	req.Header().Set(requestIDHeader, "req-123")
	resp, err := client.GetProgressSummary(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), resp.Msg.Total)
	assert.Equal(t, "req-123", resp.Header().Get(requestIDHeader))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, progressv1connect.ProgressServiceGetProgressSummaryProcedure, entry.Data["procedure"])
	assert.Equal(t, "req-123", entry.Data["request_id"])
	assert.Equal(t, "ok", entry.Data["status"])
}

func TestServerLogsClientErrorsAsWarnings(t *testing.T) {
	srv, hook := newTestServer(t)
	client := progressv1connect.NewProgressServiceClient(srv.Client(), srv.URL)

	_, err := client.GetProgressSummary(context.Background(), connect.NewRequest(&progressv1.GetProgressSummaryRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "invalid_argument", entry.Data["status"])
	assert.NotContains(t, entry.Data, "response_bytes")
	assert.NotEmpty(t, entry.Data["request_id"], "a request id is generated when the caller sends none")

	_, err = client.PurgeWord(context.Background(), connect.NewRequest(&progressv1.PurgeWordRequest{WordId: "w1"}))
	assert.Equal(t, connect.CodeUnimplemented, connect.CodeOf(err))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLoggerToleratesTypedNilResponse(t *testing.T) {
	logger, hook := test.NewNullLogger()
	failing := func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		var resp *connect.Response[progressv1.ProgressSummary]
		return resp, connect.NewError(connect.CodeNotFound, errors.New("user not found"))
	}
	call := Logger(logger)(failing)

	var err error
	require.NotPanics(t, func() {
		_, err = call(context.Background(), connect.NewRequest(&progressv1.GetProgressSummaryRequest{UserId: "ghost"}))
	})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "not_found", hook.LastEntry().Data["status"])
}

func TestServerCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+progressv1connect.ProgressServiceReviewWordProcedure, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "connect-protocol-version,content-type")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&config.Config{Log: config.LogConfig{Level: "debug", Format: "text"}})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	_, err = NewLogger(&config.Config{Log: config.LogConfig{Level: "loud"}})
	assert.Error(t, err)
}
