package domain

import "time"

// EntityMeta carries the identity, audit timestamps, and optimistic
// concurrency stamp shared by every aggregate. It is embedded by value;
// there is no entity base type beyond this.
type EntityMeta struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

func newEntityMeta(id string, now time.Time) EntityMeta {
	return EntityMeta{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Touch records a mutation for optimistic concurrency purposes.
func (m *EntityMeta) Touch(now time.Time) {
	m.UpdatedAt = now
	m.Version++
}
