package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sabucaps/brazilian/internal/infrastructure/config"
)

const requestIDHeader = "X-Request-Id"

// Logger logs one line per unary call and opens the server span the usecase
// spans hang off.
func Logger(logger logrus.FieldLogger) connect.UnaryInterceptorFunc {
	tracer := otel.Tracer("github.com/sabucaps/brazilian/internal/infrastructure/server")
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			requestID := req.Header().Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
				req.Header().Set(requestIDHeader, requestID)
			}

			ctx, span := tracer.Start(ctx, req.Spec().Procedure,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("request.id", requestID)),
			)
			defer span.End()

			start := time.Now()
			resp, err := next(ctx, req)

			duration := time.Since(start)
			var (
				code   connect.Code
				logged connect.AnyResponse
			)
			// Alongside an error connect hands back a typed nil response, so
			// only successful responses are inspected.
			if err != nil {
				code = connect.CodeOf(err)
				span.SetStatus(codes.Error, err.Error())
			} else if resp != nil {
				logged = resp
				resp.Header().Set(requestIDHeader, requestID)
			}

			entry := logger.WithFields(buildLogFields(req, logged, code, duration, requestID))
			if err != nil {
				entry = entry.WithError(err)
			}
			entry.Log(determineLogLevel(code, err), "request completed")

			return resp, err
		}
	}
}

func determineLogLevel(code connect.Code, err error) logrus.Level {
	if err == nil {
		return logrus.InfoLevel
	}
	switch code {
	case connect.CodeInvalidArgument, connect.CodeFailedPrecondition, connect.CodeNotFound,
		connect.CodeAlreadyExists, connect.CodeAborted, connect.CodeCanceled,
		connect.CodePermissionDenied, connect.CodeUnauthenticated:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func buildLogFields(req connect.AnyRequest, resp connect.AnyResponse, code connect.Code, duration time.Duration, requestID string) logrus.Fields {
	fields := logrus.Fields{
		"procedure":  req.Spec().Procedure,
		"status":     statusText(code),
		"duration":   duration.String(),
		"request_id": requestID,
	}

	setField(fields, "http_method", req.HTTPMethod())
	peer := req.Peer()
	setField(fields, "peer_addr", peer.Addr)
	setField(fields, "protocol", peer.Protocol)

	header := req.Header()
	setField(fields, "user_agent", header.Get("User-Agent"))
	setField(fields, "client_ip", firstForwardedFor(header))
	setField(fields, "content_type", header.Get("Content-Type"))
	if cl := contentLength(header); cl >= 0 {
		fields["request_bytes"] = cl
	}

	if resp != nil {
		if cl := contentLength(resp.Header()); cl >= 0 {
			fields["response_bytes"] = cl
		}
		if n := headerCount(resp.Trailer()); n > 0 {
			fields["response_trailer_count"] = n
		}
	}
	return fields
}

// connect.Code(0) stringifies as code_0.
func statusText(code connect.Code) string {
	if code == 0 {
		return "ok"
	}
	return code.String()
}

func setField(fields logrus.Fields, key, value string) {
	if value == "" {
		return
	}
	fields[key] = value
}

func firstForwardedFor(header http.Header) string {
	forwarded := header.Get("X-Forwarded-For")
	if forwarded == "" {
		return ""
	}
	for _, part := range strings.Split(forwarded, ",") {
		if candidate := strings.TrimSpace(part); candidate != "" {
			return candidate
		}
	}
	return ""
}

func headerCount(header http.Header) int {
	count := 0
	for key := range header {
		count += len(header[key])
	}
	return count
}

func contentLength(header http.Header) int {
	if header == nil {
		return -1
	}
	if cl := header.Get("Content-Length"); cl != "" {
		if parsed, err := strconv.Atoi(cl); err == nil {
			return parsed
		}
	}
	return -1
}

// NewLogger builds a configured logrus logger from application config.
func NewLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}
