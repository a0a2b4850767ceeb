package bartertest

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

var errNoCodec = errors.Wrap(errors.ErrHuman, "test types have no binary encoding")

// Tx carries a single message. Encoding is not supported.
type Tx struct {
	Msg barter.Msg
	// Err is returned together with Msg from GetMsg.
	Err error
}

var _ barter.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (barter.Msg, error) { return tx.Msg, tx.Err }
func (tx *Tx) Marshal() ([]byte, error)    { return nil, errNoCodec }
func (tx *Tx) Unmarshal([]byte) error      { return errNoCodec }

// Msg routes to RoutePath and fails validation and encoding with Err.
// Unmarshal stores the raw input in Serialized.
type Msg struct {
	RoutePath  string
	Serialized []byte
	Err        error
}

var _ barter.Msg = (*Msg)(nil)

func (m *Msg) Path() string             { return m.RoutePath }
func (m *Msg) Validate() error          { return m.Err }
func (m *Msg) Marshal() ([]byte, error) { return m.Serialized, m.Err }

func (m *Msg) Unmarshal(raw []byte) error {
	m.Serialized = raw
	return m.Err
}
