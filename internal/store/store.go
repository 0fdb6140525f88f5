// Package store persists openfootprint records.
//
// Every record kind is a typed Collection over one SQLite table of JSON
// documents. Lists are returned in insertion order.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rshade/openfootprint/internal/model"
)

// Page bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Sentinel errors, wrapped with the kind and key involved.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidPage   = errors.New("invalid page")
)

// Page selects a window of a list. A zero Limit means DefaultLimit.
type Page struct {
	Skip  int
	Limit int
}

// Normalize applies the default limit and checks bounds.
func (p Page) Normalize() (Page, error) {
	if p.Skip < 0 {
		return p, fmt.Errorf("%w: skip must not be negative", ErrInvalidPage)
	}
	if p.Limit < 0 {
		return p, fmt.Errorf("%w: limit must not be negative", ErrInvalidPage)
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		return p, fmt.Errorf("%w: limit must be at most %d", ErrInvalidPage, MaxLimit)
	}
	return p, nil
}

// All returns a page covering the largest allowed window.
func All() Page {
	return Page{Limit: MaxLimit}
}

// Collection is the storage for one record kind.
type Collection[T any] interface {
	List(ctx context.Context, page Page) ([]T, error)
	Get(ctx context.Context, pk string) (T, error)
	// Create stores rec. CreatedAt is set to now unless already set.
	Create(ctx context.Context, rec T) (T, error)
	// Update replaces a stored record, keeping CreatedAt and setting UpdatedAt.
	Update(ctx context.Context, rec T) (T, error)
	Count(ctx context.Context) (int, error)
}

// Entry is a stored record of any kind, as returned by Recent.
type Entry struct {
	Kind      model.Kind
	PK        string
	CreatedAt time.Time
	Body      json.RawMessage
}

// Store gives access to every collection.
type Store interface {
	Organizations() Collection[model.Organization]
	Facilities() Collection[model.Facility]
	EmissionReports() Collection[model.EmissionReport]
	EmissionStatements() Collection[model.EmissionStatement]
	CSRDReports() Collection[model.CSRDReport]
	DataQuality() Collection[model.DataQuality]
	WaterActivityTypes() Collection[model.WaterActivityType]
	EnvironmentalProductDeclarations() Collection[model.EnvironmentalProductDeclaration]

	// Recent returns the n most recently inserted records across all kinds, newest first.
	Recent(ctx context.Context, n int) ([]Entry, error)
	Close() error
}

// recordPtr constrains a pointer to a record value type.
type recordPtr[T any] interface {
	*T
	model.Record
}

func notFound(kind model.Kind, pk string) error {
	return fmt.Errorf("%s %q: %w", kind.Title(), pk, ErrNotFound)
}

func alreadyExists(kind model.Kind, pk string) error {
	return fmt.Errorf("%s %q: %w", kind.Title(), pk, ErrAlreadyExists)
}

// IsNotFound reports whether err means a record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// ListAll pages through c until it is exhausted.
func ListAll[T any](ctx context.Context, c Collection[T]) ([]T, error) {
	out := make([]T, 0)
	page := All()
	for {
		recs, err := c.List(ctx, page)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
		if len(recs) < page.Limit {
			return out, nil
		}
		page.Skip += page.Limit
	}
}
