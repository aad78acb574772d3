package connectrpc

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"

	"github.com/sabucaps/brazilian/internal/adapter/mapping"
	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/repository"
	"github.com/sabucaps/brazilian/internal/usecase"
	progressv1 "github.com/sabucaps/brazilian/pkg/api/progress/v1"
	"github.com/sabucaps/brazilian/pkg/api/progress/v1/progressv1connect"
)

var _ progressv1connect.ProgressServiceHandler = (*ProgressServiceServer)(nil)

var errRequestRequired = errors.New("request required")

type ProgressServiceServer struct {
	progressv1connect.UnimplementedProgressServiceHandler

	uc    usecase.ProgressUsecase
	clock func() time.Time
}

func NewProgressServiceServer(uc usecase.ProgressUsecase) *ProgressServiceServer {
	return &ProgressServiceServer{uc: uc, clock: time.Now}
}

func (s *ProgressServiceServer) GetProgressList(ctx context.Context, req *connect.Request[progressv1.GetProgressListRequest]) (*connect.Response[progressv1.GetProgressListResponse], error) {
	if req == nil || req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errRequestRequired)
	}
	msg := req.Msg
	query := &repository.ListProgressQuery{
		Pagination: convertPagination(msg.GetPagination()),
		FilterOrder: repository.FilterOrder{
			Filter:  msg.GetFilter(),
			OrderBy: msg.GetOrderBy(),
		},
		UserID: msg.GetUserId(),
		Now:    requestTime(msg.GetNow(), s.clock),
	}
	items, total, err := s.uc.GetProgressList(ctx, query)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}

	total32, err := safeInt32("total progress items", total)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := &progressv1.GetProgressListResponse{
		Items: mapping.ToAPIVocabularyProgressList(items, query.Now),
		Pagination: &progressv1.PaginationResponse{
			Total:  total32,
			PageNo: query.PageNo,
		},
	}
	return connect.NewResponse(resp), nil
}

func (s *ProgressServiceServer) ReviewWord(ctx context.Context, req *connect.Request[progressv1.ReviewWordRequest]) (*connect.Response[progressv1.ReviewWordResponse], error) {
	if req == nil || req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errRequestRequired)
	}
	msg := req.Msg
	outcome, err := entity.ParseReviewOutcome(msg.GetOutcome())
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}

	result, err := s.uc.ReviewWord(ctx, msg.GetUserId(), msg.GetWordId(), outcome)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}

	return connect.NewResponse(&progressv1.ReviewWordResponse{
		Progress: mapping.ToAPIProgress(result.Progress),
		Tier:     string(mapping.TierOf(result.Progress)),
	}), nil
}

func (s *ProgressServiceServer) GetDueList(ctx context.Context, req *connect.Request[progressv1.GetDueListRequest]) (*connect.Response[progressv1.GetDueListResponse], error) {
	if req == nil || req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errRequestRequired)
	}
	msg := req.Msg
	query := &repository.DueListQuery{
		FilterOrder: repository.FilterOrder{
			Filter:  msg.GetFilter(),
			OrderBy: msg.GetOrderBy(),
		},
		UserID: msg.GetUserId(),
		Now:    requestTime(msg.GetNow(), s.clock),
	}
	items, err := s.uc.GetDueList(ctx, query)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}

	return connect.NewResponse(&progressv1.GetDueListResponse{
		Items: mapping.ToAPIVocabularyProgressList(items, query.Now),
	}), nil
}

func (s *ProgressServiceServer) GetProgressSummary(ctx context.Context, req *connect.Request[progressv1.GetProgressSummaryRequest]) (*connect.Response[progressv1.ProgressSummary], error) {
	if req == nil || req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errRequestRequired)
	}
	msg := req.Msg
	summary, err := s.uc.GetSummary(ctx, msg.GetUserId(), requestTime(msg.GetNow(), s.clock))
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(mapping.ToAPISummary(summary)), nil
}

func (s *ProgressServiceServer) PurgeWord(ctx context.Context, req *connect.Request[progressv1.PurgeWordRequest]) (*connect.Response[progressv1.PurgeWordResponse], error) {
	if req == nil || req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errRequestRequired)
	}
	affected, err := s.uc.PurgeWord(ctx, req.Msg.GetWordId())
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}

	affected32, err := safeInt32("affected users", int64(affected))
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&progressv1.PurgeWordResponse{AffectedUsers: affected32}), nil
}
