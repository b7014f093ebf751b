// Package submission holds the record of a submitted form and the
// persistence interface for it.
//
// The package has no infrastructure dependencies; internal/infrastructure/sqlite
// provides the Repository implementation.
package submission

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Value is one field of a submission.
type Value struct {
	Name     string
	Value    string
	Complete bool
}

// Submission is a set of field values submitted together.
// Fields are unexported; use the constructors and getters.
type Submission struct {
	id        int64
	guid      string
	values    []Value
	createdAt time.Time
}

// New creates a submission with a fresh GUID. The ID is assigned by the
// repository on Save.
func New(values []Value) *Submission {
	return &Submission{
		guid:      uuid.NewString(),
		values:    append([]Value(nil), values...),
		createdAt: time.Now(),
	}
}

// Reconstitute creates a Submission from stored data.
func Reconstitute(id int64, guid string, values []Value, createdAt time.Time) *Submission {
	return &Submission{
		id:        id,
		guid:      guid,
		values:    values,
		createdAt: createdAt,
	}
}

func (s *Submission) ID() int64            { return s.id }
func (s *Submission) GUID() string         { return s.guid }
func (s *Submission) CreatedAt() time.Time { return s.createdAt }

// Values returns a copy of the submitted values in field order.
func (s *Submission) Values() []Value {
	return append([]Value(nil), s.values...)
}

// Complete reports whether every value filled its mask.
func (s *Submission) Complete() bool {
	for _, v := range s.values {
		if !v.Complete {
			return false
		}
	}
	return true
}

// SetID is called by the repository after insert.
func (s *Submission) SetID(id int64) {
	s.id = id
}

// Repository persists submissions.
type Repository interface {
	// Save inserts a new submission and sets its ID.
	Save(s *Submission) error

	// FindByGUID returns NotFoundError when no submission has the GUID.
	FindByGUID(guid string) (*Submission, error)

	// List returns the most recent submissions first. A limit of 0 means all.
	List(limit int) ([]*Submission, error)

	// Close releases any resources held by the repository.
	Close() error
}

// NotFoundError is returned when a submission lookup has no match.
type NotFoundError struct {
	GUID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("submission not found: %s", e.GUID)
}
