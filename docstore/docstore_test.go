// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/danielhkuo/pollbooth/db"
)

type storeSuite struct {
	suite.Suite
	newStore func() (Store, error)
	store    Store
	ctx      context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &storeSuite{newStore: func() (Store, error) { return NewMemoryStore(), nil }})
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, &storeSuite{newStore: func() (Store, error) {
		return OpenSQLStore(db.DialectSQLite, ":memory:")
	}})
}

func (s *storeSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := s.newStore()
	s.Require().NoError(err)
	s.store = store
}

func (s *storeSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *storeSuite) TestCreateAndGet() {
	doc, err := s.store.Create(s.ctx, "polls", "p1", []byte(`{"question":"Red or blue?"}`))
	s.Require().NoError(err)
	s.Require().Equal(int64(1), doc.Version)

	got, err := s.store.Get(s.ctx, "polls", "p1")
	s.Require().NoError(err)
	s.Require().Equal("p1", got.ID)
	s.Require().Equal(int64(1), got.Version)
	s.Require().JSONEq(`{"question":"Red or blue?"}`, string(got.Body))
}

func (s *storeSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "polls", "nope")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *storeSuite) TestCreateDuplicate() {
	_, err := s.store.Create(s.ctx, "polls", "p1", []byte(`{}`))
	s.Require().NoError(err)

	_, err = s.store.Create(s.ctx, "polls", "p1", []byte(`{}`))
	s.Require().ErrorIs(err, ErrAlreadyExists)

	// Same id in another collection is fine
	_, err = s.store.Create(s.ctx, "users", "p1", []byte(`{}`))
	s.Require().NoError(err)
}

func (s *storeSuite) TestConditionalUpdate() {
	_, err := s.store.Create(s.ctx, "polls", "p1", []byte(`{"n":0}`))
	s.Require().NoError(err)

	doc, err := s.store.Update(s.ctx, "polls", "p1", []byte(`{"n":1}`), 1)
	s.Require().NoError(err)
	s.Require().Equal(int64(2), doc.Version)

	// Stale version is rejected and leaves the document untouched
	_, err = s.store.Update(s.ctx, "polls", "p1", []byte(`{"n":99}`), 1)
	s.Require().ErrorIs(err, ErrConflict)

	got, err := s.store.Get(s.ctx, "polls", "p1")
	s.Require().NoError(err)
	s.Require().Equal(int64(2), got.Version)
	s.Require().JSONEq(`{"n":1}`, string(got.Body))
}

func (s *storeSuite) TestUpdateMissing() {
	_, err := s.store.Update(s.ctx, "polls", "ghost", []byte(`{}`), 1)
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *storeSuite) TestDelete() {
	_, err := s.store.Create(s.ctx, "polls", "p1", []byte(`{}`))
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, "polls", "p1"))
	s.Require().ErrorIs(s.store.Delete(s.ctx, "polls", "p1"), ErrNotFound)

	_, err = s.store.Get(s.ctx, "polls", "p1")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *storeSuite) TestQuery() {
	polls := []struct {
		id, visibility, createdAt string
		votes                     int
	}{
		{"a", "public", "2025-01-01T10:00:00Z", 3},
		{"b", "draft", "2025-01-02T10:00:00Z", 1},
		{"c", "public", "2025-01-03T10:00:00+02:00", 7},
		{"d", "public", "2025-01-04T10:00:00Z", 0},
	}
	for _, p := range polls {
		body := fmt.Sprintf(`{"visibility":%q,"createdAt":%q,"stats":{"votes":%d}}`, p.visibility, p.createdAt, p.votes)
		_, err := s.store.Create(s.ctx, "polls", p.id, []byte(body))
		s.Require().NoError(err)
	}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"scan", Query{}, []string{"a", "b", "c", "d"}},
		{"equality", Where("visibility", OpEqual, "public"), []string{"a", "c", "d"}},
		{"not equal", Where("visibility", OpNotEqual, "public"), []string{"b"}},
		{"nested numeric", Where("stats.votes", OpGreaterEqual, 3), []string{"a", "c"}},
		{
			"ordered desc with limit",
			Query{
				Filters:    []Filter{{Path: "visibility", Op: OpEqual, Value: "public"}},
				OrderBy:    "createdAt",
				Descending: true,
				Limit:      2,
			},
			[]string{"d", "c"},
		},
		{"ordered asc", Query{OrderBy: "stats.votes"}, []string{"d", "b", "a", "c"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			docs, err := s.store.Query(s.ctx, "polls", tt.q)
			s.Require().NoError(err)

			ids := make([]string, len(docs))
			for i, d := range docs {
				ids[i] = d.ID
			}
			s.Require().Equal(tt.want, ids)
		})
	}
}

func (s *storeSuite) TestQueryRejectsUnknownOperator() {
	_, err := s.store.Query(s.ctx, "polls", Where("visibility", "~=", "x"))
	s.Require().Error(err)
}

// Exactly one of several writers holding the same version may win.
func (s *storeSuite) TestConcurrentConditionalUpdates() {
	_, err := s.store.Create(s.ctx, "polls", "p1", []byte(`{"n":0}`))
	s.Require().NoError(err)

	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.store.Update(s.ctx, "polls", "p1", []byte(fmt.Sprintf(`{"n":%d}`, i)), 1)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrConflict):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Require().Equal(int32(1), wins.Load())
	s.Require().Equal(int32(7), conflicts.Load())
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
		ok   bool
	}{
		{"numbers", float64(1), 2, -1, true},
		{"strings", "b", "a", 1, true},
		{"times across offsets", "2025-01-01T12:00:00+02:00", "2025-01-01T10:00:00Z", 0, true},
		{"bool equal", true, true, 0, true},
		{"false before true", false, true, -1, true},
		{"true after false", true, false, 1, true},
		{"mismatched kinds", "1", float64(1), 0, false},
		{"missing", nil, "x", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := compareValues(tt.a, tt.b)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("compareValues(%v, %v) = %d, %v; want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestOrderValues(t *testing.T) {
	values := []any{nil, false, true, float64(-1), 3, "a", "b", "2025-01-01T10:00:00Z", map[string]any{}}
	for i, a := range values {
		for j, b := range values {
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}
			if got := orderValues(a, b); got != want {
				t.Errorf("orderValues(%v, %v) = %d; want %d", a, b, got, want)
			}
		}
	}
}

func TestApplyQueryOrdersMixedKinds(t *testing.T) {
	bodies := map[string]string{
		"str":     `{"k":"x"}`,
		"num":     `{"k":2}`,
		"missing": `{}`,
		"bool":    `{"k":true}`,
		"time":    `{"k":"2025-01-01T00:00:00Z"}`,
		"num2":    `{"k":1}`,
	}
	// Every starting order has to produce the same result.
	orders := [][]string{
		{"str", "num", "missing", "bool", "time", "num2"},
		{"num2", "time", "bool", "missing", "num", "str"},
		{"bool", "str", "num2", "time", "missing", "num"},
	}
	for _, order := range orders {
		docs := make([]Document, len(order))
		for i, id := range order {
			docs[i] = Document{ID: id, Body: []byte(bodies[id])}
		}

		asc, err := ApplyQuery(docs, Query{OrderBy: "k"})
		if err != nil {
			t.Fatal(err)
		}
		desc, err := ApplyQuery(docs, Query{OrderBy: "k", Descending: true})
		if err != nil {
			t.Fatal(err)
		}

		var gotAsc, gotDesc []string
		for i := range asc {
			gotAsc = append(gotAsc, asc[i].ID)
			gotDesc = append(gotDesc, desc[i].ID)
		}
		wantAsc := []string{"missing", "bool", "num2", "num", "str", "time"}
		wantDesc := []string{"time", "str", "num", "num2", "bool", "missing"}
		if fmt.Sprint(gotAsc) != fmt.Sprint(wantAsc) {
			t.Errorf("ascending from %v = %v; want %v", order, gotAsc, wantAsc)
		}
		if fmt.Sprint(gotDesc) != fmt.Sprint(wantDesc) {
			t.Errorf("descending from %v = %v; want %v", order, gotDesc, wantDesc)
		}
	}
}
