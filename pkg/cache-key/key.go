package cachekey

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidListParams = errors.New("invalid list parameters")

const (
	DefaultLimit   = 10
	MaxLimit       = 100
	DefaultOrderBy = "updated_at"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ListParams selects a page of a sorted list.
// Values are always canonical (defaults applied, lowercase order) so that
// two requests asking for the same page produce equal keys.
type ListParams struct {
	Limit   int
	Offset  int
	OrderBy string
	Order   Order
}

// DefaultListParams is what an empty query string means.
func DefaultListParams() ListParams {
	return ListParams{
		Limit:   DefaultLimit,
		Offset:  0,
		OrderBy: DefaultOrderBy,
		Order:   Desc,
	}
}

// ParseListParams reads limit, offset, order_by and order from a query string.
// order_by must be one of orderable (DefaultOrderBy is always accepted).
func ParseListParams(q url.Values, orderable []string) (ListParams, error) {
	p := DefaultListParams()

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > MaxLimit {
			return p, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidListParams, MaxLimit)
		}
		p.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return p, fmt.Errorf("%w: offset must be a non-negative integer", ErrInvalidListParams)
		}
		p.Offset = offset
	}
	if v := q.Get("order_by"); v != "" {
		v = strings.ToLower(v)
		if v != DefaultOrderBy && !contains(orderable, v) {
			return p, fmt.Errorf("%w: cannot order by %q", ErrInvalidListParams, v)
		}
		p.OrderBy = v
	}
	if v := q.Get("order"); v != "" {
		switch Order(strings.ToLower(v)) {
		case Asc:
			p.Order = Asc
		case Desc:
			p.Order = Desc
		default:
			return p, fmt.Errorf("%w: order must be asc or desc", ErrInvalidListParams)
		}
	}
	return p, nil
}

// OrderClause renders the ORDER BY expression. The column has been validated by ParseListParams.
func (p ListParams) OrderClause() string {
	return p.OrderBy + " " + strings.ToUpper(string(p.Order))
}

func (p ListParams) String() string {
	return fmt.Sprintf("limit=%d&offset=%d&order_by=%s&order=%s", p.Limit, p.Offset, p.OrderBy, p.Order)
}

// ShopList is the key of a list scoped to one shop.
type ShopList struct {
	ShopID int64
	ListParams
}

func (k ShopList) String() string {
	return fmt.Sprintf("shop_id=%d&%s", k.ShopID, k.ListParams)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
