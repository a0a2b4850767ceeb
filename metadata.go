package barter

import "github.com/iov-one/barter/errors"

// Metadata is attached to every model and message. The schema version lets
// an extension migrate stored data when its format changes.
type Metadata struct {
	Schema uint32 `json:"schema"`
}

// Validate returns an error if the metadata does not declare a schema.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrMetadata, "missing metadata")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrMetadata, "schema version must be at least 1")
	}
	return nil
}

// Copy returns an independent copy, as needed by orm.Model implementations.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}
