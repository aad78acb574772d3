// Package progressv1connect exposes the progress service over the Connect
// protocol using JSON messages from progressv1.
package progressv1connect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	progressv1 "github.com/sabucaps/brazilian/pkg/api/progress/v1"
)

// ProgressServiceName is the fully-qualified name of the ProgressService service.
const ProgressServiceName = "progress.v1.ProgressService"

const (
	ProgressServiceGetProgressListProcedure    = "/progress.v1.ProgressService/GetProgressList"
	ProgressServiceReviewWordProcedure         = "/progress.v1.ProgressService/ReviewWord"
	ProgressServiceGetDueListProcedure         = "/progress.v1.ProgressService/GetDueList"
	ProgressServiceGetProgressSummaryProcedure = "/progress.v1.ProgressService/GetProgressSummary"
	ProgressServicePurgeWordProcedure          = "/progress.v1.ProgressService/PurgeWord"
)

// ProgressServiceHandler is implemented by servers of the progress service.
type ProgressServiceHandler interface {
	GetProgressList(context.Context, *connect.Request[progressv1.GetProgressListRequest]) (*connect.Response[progressv1.GetProgressListResponse], error)
	ReviewWord(context.Context, *connect.Request[progressv1.ReviewWordRequest]) (*connect.Response[progressv1.ReviewWordResponse], error)
	GetDueList(context.Context, *connect.Request[progressv1.GetDueListRequest]) (*connect.Response[progressv1.GetDueListResponse], error)
	GetProgressSummary(context.Context, *connect.Request[progressv1.GetProgressSummaryRequest]) (*connect.Response[progressv1.ProgressSummary], error)
	PurgeWord(context.Context, *connect.Request[progressv1.PurgeWordRequest]) (*connect.Response[progressv1.PurgeWordResponse], error)
}

// NewProgressServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewProgressServiceHandler(svc ProgressServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	readOpts := append([]connect.HandlerOption{connect.WithIdempotency(connect.IdempotencyNoSideEffects)}, opts...)

	getProgressList := connect.NewUnaryHandler(ProgressServiceGetProgressListProcedure, svc.GetProgressList, readOpts...)
	reviewWord := connect.NewUnaryHandler(ProgressServiceReviewWordProcedure, svc.ReviewWord, opts...)
	getDueList := connect.NewUnaryHandler(ProgressServiceGetDueListProcedure, svc.GetDueList, readOpts...)
	getProgressSummary := connect.NewUnaryHandler(ProgressServiceGetProgressSummaryProcedure, svc.GetProgressSummary, readOpts...)
	purgeWord := connect.NewUnaryHandler(ProgressServicePurgeWordProcedure, svc.PurgeWord, opts...)

	return "/" + ProgressServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ProgressServiceGetProgressListProcedure:
			getProgressList.ServeHTTP(w, r)
		case ProgressServiceReviewWordProcedure:
			reviewWord.ServeHTTP(w, r)
		case ProgressServiceGetDueListProcedure:
			getDueList.ServeHTTP(w, r)
		case ProgressServiceGetProgressSummaryProcedure:
			getProgressSummary.ServeHTTP(w, r)
		case ProgressServicePurgeWordProcedure:
			purgeWord.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// ProgressServiceClient is a client for the progress service.
type ProgressServiceClient interface {
	GetProgressList(context.Context, *connect.Request[progressv1.GetProgressListRequest]) (*connect.Response[progressv1.GetProgressListResponse], error)
	ReviewWord(context.Context, *connect.Request[progressv1.ReviewWordRequest]) (*connect.Response[progressv1.ReviewWordResponse], error)
	GetDueList(context.Context, *connect.Request[progressv1.GetDueListRequest]) (*connect.Response[progressv1.GetDueListResponse], error)
	GetProgressSummary(context.Context, *connect.Request[progressv1.GetProgressSummaryRequest]) (*connect.Response[progressv1.ProgressSummary], error)
	PurgeWord(context.Context, *connect.Request[progressv1.PurgeWordRequest]) (*connect.Response[progressv1.PurgeWordResponse], error)
}

// NewProgressServiceClient constructs a client for the service rooted at
// baseURL, for example http://localhost:8080.
func NewProgressServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ProgressServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &progressServiceClient{
		getProgressList:    connect.NewClient[progressv1.GetProgressListRequest, progressv1.GetProgressListResponse](httpClient, baseURL+ProgressServiceGetProgressListProcedure, opts...),
		reviewWord:         connect.NewClient[progressv1.ReviewWordRequest, progressv1.ReviewWordResponse](httpClient, baseURL+ProgressServiceReviewWordProcedure, opts...),
		getDueList:         connect.NewClient[progressv1.GetDueListRequest, progressv1.GetDueListResponse](httpClient, baseURL+ProgressServiceGetDueListProcedure, opts...),
		getProgressSummary: connect.NewClient[progressv1.GetProgressSummaryRequest, progressv1.ProgressSummary](httpClient, baseURL+ProgressServiceGetProgressSummaryProcedure, opts...),
		purgeWord:          connect.NewClient[progressv1.PurgeWordRequest, progressv1.PurgeWordResponse](httpClient, baseURL+ProgressServicePurgeWordProcedure, opts...),
	}
}

type progressServiceClient struct {
	getProgressList    *connect.Client[progressv1.GetProgressListRequest, progressv1.GetProgressListResponse]
	reviewWord         *connect.Client[progressv1.ReviewWordRequest, progressv1.ReviewWordResponse]
	getDueList         *connect.Client[progressv1.GetDueListRequest, progressv1.GetDueListResponse]
	getProgressSummary *connect.Client[progressv1.GetProgressSummaryRequest, progressv1.ProgressSummary]
	purgeWord          *connect.Client[progressv1.PurgeWordRequest, progressv1.PurgeWordResponse]
}

func (c *progressServiceClient) GetProgressList(ctx context.Context, req *connect.Request[progressv1.GetProgressListRequest]) (*connect.Response[progressv1.GetProgressListResponse], error) {
	return c.getProgressList.CallUnary(ctx, req)
}

func (c *progressServiceClient) ReviewWord(ctx context.Context, req *connect.Request[progressv1.ReviewWordRequest]) (*connect.Response[progressv1.ReviewWordResponse], error) {
	return c.reviewWord.CallUnary(ctx, req)
}

func (c *progressServiceClient) GetDueList(ctx context.Context, req *connect.Request[progressv1.GetDueListRequest]) (*connect.Response[progressv1.GetDueListResponse], error) {
	return c.getDueList.CallUnary(ctx, req)
}

func (c *progressServiceClient) GetProgressSummary(ctx context.Context, req *connect.Request[progressv1.GetProgressSummaryRequest]) (*connect.Response[progressv1.ProgressSummary], error) {
	return c.getProgressSummary.CallUnary(ctx, req)
}

func (c *progressServiceClient) PurgeWord(ctx context.Context, req *connect.Request[progressv1.PurgeWordRequest]) (*connect.Response[progressv1.PurgeWordResponse], error) {
	return c.purgeWord.CallUnary(ctx, req)
}

// UnimplementedProgressServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedProgressServiceHandler struct{}

func (UnimplementedProgressServiceHandler) GetProgressList(context.Context, *connect.Request[progressv1.GetProgressListRequest]) (*connect.Response[progressv1.GetProgressListResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("progress.v1.ProgressService.GetProgressList is not implemented"))
}

func (UnimplementedProgressServiceHandler) ReviewWord(context.Context, *connect.Request[progressv1.ReviewWordRequest]) (*connect.Response[progressv1.ReviewWordResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("progress.v1.ProgressService.ReviewWord is not implemented"))
}

func (UnimplementedProgressServiceHandler) GetDueList(context.Context, *connect.Request[progressv1.GetDueListRequest]) (*connect.Response[progressv1.GetDueListResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("progress.v1.ProgressService.GetDueList is not implemented"))
}

func (UnimplementedProgressServiceHandler) GetProgressSummary(context.Context, *connect.Request[progressv1.GetProgressSummaryRequest]) (*connect.Response[progressv1.ProgressSummary], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("progress.v1.ProgressService.GetProgressSummary is not implemented"))
}

func (UnimplementedProgressServiceHandler) PurgeWord(context.Context, *connect.Request[progressv1.PurgeWordRequest]) (*connect.Response[progressv1.PurgeWordResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("progress.v1.ProgressService.PurgeWord is not implemented"))
}
