package usecase

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/repository"
	"github.com/sabucaps/brazilian/internal/srs"
	"github.com/sabucaps/brazilian/pkg/filterexpr"
)

// progressFilterSchema lists the variables a progress filter may use.
var progressFilterSchema = filterexpr.Schema{
	Fields: map[string]filterexpr.ValueKind{
		"id":            filterexpr.KindString,
		"term":          filterexpr.KindString,
		"translation":   filterexpr.KindString,
		"group":         filterexpr.KindString,
		"ease":          filterexpr.KindNumber,
		"interval":      filterexpr.KindInt,
		"review_count":  filterexpr.KindInt,
		"tier":          filterexpr.KindString,
		"due":           filterexpr.KindBool,
		"last_reviewed": filterexpr.KindTimestamp,
		"next_review":   filterexpr.KindTimestamp,
	},
}

var progressOrderSchema = filterexpr.OrderSchema{
	Fields: map[string]struct{}{
		"term":         {},
		"ease":         {},
		"interval":     {},
		"review_count": {},
		"next_review":  {},
	},
}

var dueOrderSchema = filterexpr.OrderSchema{
	Fields:  map[string]struct{}{"next_review": {}},
	MaxKeys: 1,
}

type listView struct {
	filter *filterexpr.Filter
	order  []filterexpr.OrderKey
}

func compileListView(msg filterexpr.Msg, orderSchema filterexpr.OrderSchema) (*listView, error) {
	filter, err := filterexpr.Compile(msg.GetFilter(), progressFilterSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}
	order, err := filterexpr.ParseOrderBy(msg.GetOrderBy(), orderSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: order_by: %v", entity.ErrInvalidFilter, err)
	}
	return &listView{filter: filter, order: order}, nil
}

// apply filters items and, when an order was requested, sorts them stably so
// ties keep catalog order.
func (v *listView) apply(items []entity.VocabularyProgress, tiers srs.Tiers, now time.Time) ([]entity.VocabularyProgress, error) {
	out := items[:0:0]
	for _, item := range items {
		ok, err := v.filter.Match(progressVars(item, tiers, now))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
		}
		if ok {
			out = append(out, item)
		}
	}
	if len(v.order) > 0 {
		slices.SortStableFunc(out, func(a, b entity.VocabularyProgress) int {
			for _, key := range v.order {
				c := compareBy(key.Key, a, b)
				if key.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}
	return out, nil
}

func compareBy(key string, a, b entity.VocabularyProgress) int {
	switch key {
	case "term":
		return strings.Compare(a.Term, b.Term)
	case "ease":
		return cmp.Compare(a.Progress.Ease, b.Progress.Ease)
	case "interval":
		return cmp.Compare(a.Progress.Interval, b.Progress.Interval)
	case "review_count":
		return cmp.Compare(a.Progress.ReviewCount, b.Progress.ReviewCount)
	case "next_review":
		return srs.CompareNextReview(a.Progress.NextReview, b.Progress.NextReview)
	default:
		return 0
	}
}

func progressVars(item entity.VocabularyProgress, tiers srs.Tiers, now time.Time) map[string]any {
	return map[string]any{
		"id":            item.ID,
		"term":          item.Term,
		"translation":   item.Translation,
		"group":         item.Group,
		"ease":          item.Progress.Ease,
		"interval":      int64(item.Progress.Interval),
		"review_count":  int64(item.Progress.ReviewCount),
		"tier":          string(tiers.Of(item.ID, item.Progress)),
		"due":           item.Progress.IsDue(now),
		"last_reviewed": filterexpr.Timestamp(item.Progress.LastReviewed),
		"next_review":   filterexpr.Timestamp(item.Progress.NextReview),
	}
}

func paginate(items []entity.VocabularyProgress, page repository.Pagination) []entity.VocabularyProgress {
	if !page.Enabled() {
		return items
	}
	page.Normalize()
	offset := int(page.Offset())
	if offset >= len(items) {
		return []entity.VocabularyProgress{}
	}
	end := min(offset+int(page.PageSize), len(items))
	return items[offset:end]
}
