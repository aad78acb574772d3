package connectrpc

import (
	"time"

	"github.com/sabucaps/brazilian/internal/repository"
	progressv1 "github.com/sabucaps/brazilian/pkg/api/progress/v1"
)

const _maxPageSize = 10000

// convertPagination leaves paging off when the caller sent no page size.
func convertPagination(p *progressv1.PaginationRequest) repository.Pagination {
	pageSize := p.GetPageSize()
	if pageSize <= 0 {
		return repository.Pagination{}
	}
	if pageSize > _maxPageSize {
		pageSize = _maxPageSize
	}
	pageNo := p.GetPageNo()
	if pageNo <= 0 {
		pageNo = 1
	}
	return repository.Pagination{PageNo: pageNo, PageSize: pageSize}
}

func requestTime(now *time.Time, clock func() time.Time) time.Time {
	if now == nil || now.IsZero() {
		return clock()
	}
	return *now
}
