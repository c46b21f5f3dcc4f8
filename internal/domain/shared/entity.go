package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps every stored entity has.
// Times are UTC.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns a fresh identity stamped now
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// IsTransient reports whether the entity has not been given an ID yet
func (e *BaseEntity) IsTransient() bool {
	return e.ID == uuid.Nil
}

// Touch moves UpdatedAt to now
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// Base lets generic repositories reach the embedded identity
func (e *BaseEntity) Base() *BaseEntity {
	return e
}
