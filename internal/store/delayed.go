package store

import (
	"context"
	"time"

	"github.com/rshade/openfootprint/internal/model"
)

// Delayed wraps a Store and waits before every read, simulating a slow
// backend. Writes are not delayed.
type Delayed struct {
	Store
	delay time.Duration
}

// NewDelayed returns s unchanged when delay is not positive.
func NewDelayed(s Store, delay time.Duration) Store {
	if delay <= 0 {
		return s
	}
	return &Delayed{Store: s, delay: delay}
}

func (d *Delayed) wait(ctx context.Context) error {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Delayed) Organizations() Collection[model.Organization] {
	return delayedCollection[model.Organization]{Collection: d.Store.Organizations(), d: d}
}

func (d *Delayed) Facilities() Collection[model.Facility] {
	return delayedCollection[model.Facility]{Collection: d.Store.Facilities(), d: d}
}

func (d *Delayed) EmissionReports() Collection[model.EmissionReport] {
	return delayedCollection[model.EmissionReport]{Collection: d.Store.EmissionReports(), d: d}
}

func (d *Delayed) EmissionStatements() Collection[model.EmissionStatement] {
	return delayedCollection[model.EmissionStatement]{Collection: d.Store.EmissionStatements(), d: d}
}

func (d *Delayed) CSRDReports() Collection[model.CSRDReport] {
	return delayedCollection[model.CSRDReport]{Collection: d.Store.CSRDReports(), d: d}
}

func (d *Delayed) DataQuality() Collection[model.DataQuality] {
	return delayedCollection[model.DataQuality]{Collection: d.Store.DataQuality(), d: d}
}

func (d *Delayed) WaterActivityTypes() Collection[model.WaterActivityType] {
	return delayedCollection[model.WaterActivityType]{Collection: d.Store.WaterActivityTypes(), d: d}
}

func (d *Delayed) EnvironmentalProductDeclarations() Collection[model.EnvironmentalProductDeclaration] {
	return delayedCollection[model.EnvironmentalProductDeclaration]{
		Collection: d.Store.EnvironmentalProductDeclarations(), d: d,
	}
}

// Recent waits before delegating.
func (d *Delayed) Recent(ctx context.Context, n int) ([]Entry, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return d.Store.Recent(ctx, n)
}

type delayedCollection[T any] struct {
	Collection[T]
	d *Delayed
}

func (c delayedCollection[T]) List(ctx context.Context, page Page) ([]T, error) {
	if err := c.d.wait(ctx); err != nil {
		return nil, err
	}
	return c.Collection.List(ctx, page)
}

func (c delayedCollection[T]) Get(ctx context.Context, pk string) (T, error) {
	if err := c.d.wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	return c.Collection.Get(ctx, pk)
}
