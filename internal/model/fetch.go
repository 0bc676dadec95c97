package model

import (
	"fmt"
	"strings"
)

// Kind distinguishes the two instrument families.
type Kind string

const (
	KindEquity Kind = "equity"
	KindCrypto Kind = "crypto"
)

// FetchRequest identifies one provider call. It doubles as the cache key.
type FetchRequest struct {
	Kind       Kind   `json:"kind"`
	Source     string `json:"source"` // provider name or exchange id
	Instrument string `json:"instrument"`
	Period     string `json:"period,omitempty"`
	Interval   string `json:"interval"`
}

// Key returns a stable string form of the request.
func (r FetchRequest) Key() string {
	parts := []string{string(r.Kind), r.Source, r.Instrument, r.Period, r.Interval}
	return strings.Join(parts, ":")
}

func (r FetchRequest) String() string {
	if r.Kind == KindCrypto {
		return fmt.Sprintf("%s@%s[%s]", r.Instrument, r.Source, r.Interval)
	}
	return fmt.Sprintf("%s[%s/%s]", r.Instrument, r.Period, r.Interval)
}

// ErrorKind classifies a failed fetch.
type ErrorKind string

const (
	ErrTransport ErrorKind = "transport"
	ErrSchema    ErrorKind = "schema"
)

// Failure is the typed error variant of a FetchResult.
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// FetchResult is either a table (possibly empty) or a failure.
// Warnings carry advisory text such as an empty upstream payload.
type FetchResult struct {
	Table    Table    `json:"table"`
	Failure  *Failure `json:"failure,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Succeeded returns a result holding the table.
func Succeeded(t Table) FetchResult {
	return FetchResult{Table: t}
}

// Failed returns a result with an empty table and the given failure.
func Failed(kind ErrorKind, format string, args ...any) FetchResult {
	return FetchResult{Failure: &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// Failed reports whether the fetch failed.
func (r FetchResult) Failed() bool { return r.Failure != nil }

// Empty reports whether there is nothing to draw.
func (r FetchResult) Empty() bool { return r.Failure != nil || r.Table.Empty() }

// Message returns the advisory text for a failure, or "".
func (r FetchResult) Message() string {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Message
}
