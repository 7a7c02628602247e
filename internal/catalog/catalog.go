// Package catalog defines the adapter contract shared by the remote model
// catalogs, and the two concrete adapters required by the resolver.
package catalog

import (
	"context"

	"github.com/nodegraph/modelresolver/internal/registry"
)

// Confidence is how strongly a SearchHit is believed to match the requested
// filename.
type Confidence string

const (
	ConfidenceExact         Confidence = "exact"
	ConfidenceFilenameMatch Confidence = "filename_match"
	ConfidenceKeywordMatch  Confidence = "keyword_match"
	ConfidenceSuggestive    Confidence = "suggestive"
)

// SearchHit is one candidate returned by a catalog adapter.
type SearchHit struct {
	SourceCatalog      string
	RepositoryOrAuthor string
	DisplayName        string
	DirectURL          string
	SizeBytes          int64 // 0 when unknown
	KindHint           registry.Kind
	Confidence         Confidence
	KeywordMatchScore  float64 // only meaningful when Confidence == keyword_match
}

// OutcomeKind tags which variant of SearchOutcome is populated. Replaces the
// ad-hoc exception chains a catalog client would otherwise raise: the
// ranker consumes the sum and never has to recover from a panic or a typed
// error to know what happened.
type OutcomeKind string

const (
	OutcomeHits         OutcomeKind = "hits"
	OutcomeNotFound     OutcomeKind = "not_found"
	OutcomeTransient    OutcomeKind = "transient"
	OutcomePermanent    OutcomeKind = "permanent"
	OutcomeAuthRequired OutcomeKind = "auth_required"
	OutcomeCancelled    OutcomeKind = "cancelled"
)

// Outcome is the sum type SearchOutcome = Hits(xs) | NotFound |
// Transient(err) | Permanent(err) | AuthRequired | Cancelled (spec §9).
type Outcome struct {
	Kind OutcomeKind
	Hits []SearchHit
	Err  error
}

// Hits constructs a Hits outcome.
func Hits(hits []SearchHit) Outcome { return Outcome{Kind: OutcomeHits, Hits: hits} }

// NotFound constructs a NotFound outcome.
func NotFound() Outcome { return Outcome{Kind: OutcomeNotFound} }

// Transient constructs a Transient outcome wrapping err.
func Transient(err error) Outcome { return Outcome{Kind: OutcomeTransient, Err: err} }

// Permanent constructs a Permanent outcome wrapping err.
func Permanent(err error) Outcome { return Outcome{Kind: OutcomePermanent, Err: err} }

// AuthRequired constructs an AuthRequired outcome.
func AuthRequired() Outcome { return Outcome{Kind: OutcomeAuthRequired} }

// Cancelled constructs a Cancelled outcome.
func Cancelled() Outcome { return Outcome{Kind: OutcomeCancelled} }

// Adapter is the contract every catalog client implements.
type Adapter interface {
	// ID is the adapter's symbolic id, e.g. "catalog_H".
	ID() string
	// Search queries the remote catalog for filename (with kind hint) using
	// the synthesized query strings, in order, stopping at the first query
	// that yields a usable result.
	Search(ctx context.Context, filename string, kind registry.Kind, queries []string) Outcome
}
