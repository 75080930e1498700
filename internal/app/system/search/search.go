// Package search implements the universal search: one range query per
// entity kind, a substring pass over the folded field, and the results
// concatenated in kind order. A failing kind never hides the others.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
)

const (
	DefaultCap = 10
	MaxCap     = 50
)

// Status is the state of a search as shown to the client.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// Candidate is a facet row before the substring pass. Text is the folded
// value of the field the facet queried.
type Candidate struct {
	Hit  Hit
	Text string
}

// Facet searches one entity kind.
type Facet interface {
	Kind() Kind
	Query(ctx context.Context, folded string, limit int64) ([]Candidate, error)
}

// Result is the merged outcome of one search.
type Result struct {
	Query    string
	Status   Status
	Hits     []Hit
	Failures map[Kind]error
}

// Failed lists the kinds whose query failed, in kind order.
func (r Result) Failed() []Kind {
	var out []Kind
	for _, k := range Kinds {
		if _, ok := r.Failures[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Err is non-nil only when every facet failed.
func (r Result) Err() error {
	if r.Status != StatusError {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, k := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", k, r.Failures[k]))
	}
	return &failedError{cause: errors.Join(errs...)}
}

type failedError struct{ cause error }

func (e *failedError) Error() string     { return "search failed: " + e.cause.Error() }
func (e *failedError) Unwrap() error     { return e.cause }
func (e *failedError) Kind() apperr.Kind { return apperr.Transient }

// Searcher fans a query out over its facets.
type Searcher struct {
	facets []Facet
	log    *zap.Logger
}

// New builds a Searcher over the given facets. Hits are concatenated in
// the order the facets are given.
func New(log *zap.Logger, facets ...Facet) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{facets: facets, log: log}
}

// Search runs every facet concurrently. An empty or whitespace query
// returns StatusIdle without calling any facet. capPerKind is clamped to
// [1, MaxCap]; zero means DefaultCap.
func (s *Searcher) Search(ctx context.Context, query string, capPerKind int) Result {
	q := text.Fold(strings.TrimSpace(query))
	res := Result{Query: strings.TrimSpace(query), Status: StatusIdle, Hits: []Hit{}}
	if q == "" {
		return res
	}
	switch {
	case capPerKind <= 0:
		capPerKind = DefaultCap
	case capPerKind > MaxCap:
		capPerKind = MaxCap
	}

	type outcome struct {
		hits []Hit
		err  error
	}
	outs := make([]outcome, len(s.facets))

	var wg sync.WaitGroup
	for i, f := range s.facets {
		wg.Add(1)
		go func(i int, f Facet) {
			defer wg.Done()
			cands, err := f.Query(ctx, q, int64(capPerKind))
			if err != nil {
				outs[i].err = err
				return
			}
			for _, c := range cands {
				if strings.Contains(c.Text, q) {
					outs[i].hits = append(outs[i].hits, c.Hit)
				}
			}
		}(i, f)
	}
	wg.Wait()

	for i, o := range outs {
		if o.err != nil {
			if res.Failures == nil {
				res.Failures = make(map[Kind]error)
			}
			res.Failures[s.facets[i].Kind()] = o.err
			s.log.Warn("search facet failed", zap.String("kind", string(s.facets[i].Kind())), zap.Error(o.err))
			continue
		}
		res.Hits = append(res.Hits, o.hits...)
	}

	switch {
	case len(res.Failures) == 0:
		res.Status = StatusOK
	case len(res.Failures) == len(s.facets):
		res.Status = StatusError
	default:
		res.Status = StatusPartial
	}
	return res
}
