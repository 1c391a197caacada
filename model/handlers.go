package model

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Keyed is implemented by pointer models with a uuid primary key.
type Keyed[E any] interface {
	*E
	PrimaryKey() uuid.UUID
	SetPrimaryKey(uuid.UUID)
}

// NewHandlers returns repository handlers for a keyed model. identifier is
// the column GetByIdentifier looks up.
func NewHandlers[T Keyed[E], E any](identifier string) repository.ModelHandlers[T] {
	return repository.ModelHandlers[T]{
		NewRecord: func() T {
			return T(new(E))
		},
		GetID: func(record T) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.PrimaryKey()
		},
		SetID: func(record T, id uuid.UUID) {
			record.SetPrimaryKey(id)
		},
		GetIdentifier: func() string {
			return identifier
		},
	}
}

func (c *Customer) PrimaryKey() uuid.UUID           { return c.ID }
func (c *Customer) SetPrimaryKey(id uuid.UUID)      { c.ID = id }
func (o *Order) PrimaryKey() uuid.UUID              { return o.ID }
func (o *Order) SetPrimaryKey(id uuid.UUID)         { o.ID = id }
func (i *OrderItem) PrimaryKey() uuid.UUID          { return i.ID }
func (i *OrderItem) SetPrimaryKey(id uuid.UUID)     { i.ID = id }
func (s *Sku) PrimaryKey() uuid.UUID                { return s.ID }
func (s *Sku) SetPrimaryKey(id uuid.UUID)           { s.ID = id }
func (p *Product) PrimaryKey() uuid.UUID            { return p.ID }
func (p *Product) SetPrimaryKey(id uuid.UUID)       { p.ID = id }
func (c *Color) PrimaryKey() uuid.UUID              { return c.ID }
func (c *Color) SetPrimaryKey(id uuid.UUID)         { c.ID = id }
func (pc *ProductColor) PrimaryKey() uuid.UUID      { return pc.ID }
func (pc *ProductColor) SetPrimaryKey(id uuid.UUID) { pc.ID = id }
