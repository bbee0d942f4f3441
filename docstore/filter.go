// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
)

type parsedDocument struct {
	doc  Document
	body *gabs.Container
}

// ApplyQuery filters, orders and limits documents in memory. Backends that
// cannot push a query down to the database scan the collection and call this.
func ApplyQuery(docs []Document, q Query) ([]Document, error) {
	for _, f := range q.Filters {
		if !isValidOp(f.Op) {
			return nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}

	parsed := make([]parsedDocument, 0, len(docs))
	for _, d := range docs {
		body, err := gabs.ParseJSON(d.Body)
		if err != nil {
			return nil, fmt.Errorf("document %s is not valid JSON: %w", d.ID, err)
		}
		if matches(body, q.Filters) {
			parsed = append(parsed, parsedDocument{doc: d, body: body})
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(parsed, func(i, j int) bool {
			c := orderValues(parsed[i].body.Path(q.OrderBy).Data(), parsed[j].body.Path(q.OrderBy).Data())
			if q.Descending {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(parsed) > q.Limit {
		parsed = parsed[:q.Limit]
	}

	out := make([]Document, len(parsed))
	for i, p := range parsed {
		out[i] = p.doc
	}
	return out, nil
}

func matches(body *gabs.Container, filters []Filter) bool {
	for _, f := range filters {
		v := body.Path(f.Path).Data()
		c, ok := compareValues(v, f.Value)
		if !ok {
			if f.Op == OpNotEqual {
				continue
			}
			return false
		}
		switch f.Op {
		case OpEqual:
			if c != 0 {
				return false
			}
		case OpNotEqual:
			if c == 0 {
				return false
			}
		case OpLess:
			if c >= 0 {
				return false
			}
		case OpLessEqual:
			if c > 0 {
				return false
			}
		case OpGreater:
			if c <= 0 {
				return false
			}
		case OpGreaterEqual:
			if c < 0 {
				return false
			}
		}
	}
	return true
}

func isValidOp(op string) bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

// compareValues orders two JSON values of the same kind. RFC 3339 strings
// compare as instants so timestamps written with different offsets agree.
func compareValues(a, b any) (int, bool) {
	a, b = normalize(a), normalize(b)
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case bv:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// orderValues is a total order over JSON values for sorting. Values rank by
// kind first: missing, bool, number, string, time, then anything else.
func orderValues(a, b any) int {
	a, b = normalize(a), normalize(b)
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	c, _ := compareValues(a, b)
	return c
}

func kindRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	case time.Time:
		return 4
	}
	return 5
}

func normalize(v any) any {
	switch x := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return t
		}
		return x
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case float32:
		return float64(x)
	}
	return v
}
