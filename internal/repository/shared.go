package repository

// Pagination holds pagination parameters for listing entities.
type Pagination struct {
	PageNo   int32
	PageSize int32
}

func (p *Pagination) Offset() int32 { return (p.PageNo - 1) * p.PageSize }

// Enabled reports whether the caller asked for a page at all.
func (p *Pagination) Enabled() bool { return p.PageSize > 0 }

// Normalize fills in the first page when only a size was given.
func (p *Pagination) Normalize() {
	if p.PageNo <= 0 {
		p.PageNo = 1
	}
	if p.PageSize < 0 {
		p.PageSize = 0
	}
}

type FilterOrder struct {
	Filter  string
	OrderBy string
}

func (fo *FilterOrder) GetFilter() string { return fo.Filter }

func (fo *FilterOrder) GetOrderBy() string { return fo.OrderBy }
