package barter

import (
	"reflect"

	"github.com/iov-one/barter/errors"
)

// Persistent can be written to and read back from its binary form.
// Unmarshal almost always needs a pointer receiver.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// Msg is the request part of a transaction. It carries no authentication,
// that is the job of the Tx wrapping it.
type Msg interface {
	Persistent

	// Path routes the message to its handler. It must match
	// [0-9A-Za-z_\-/]+ and several message types may share one.
	Path() string

	// Validate checks the message on its own, without looking at state.
	Validate() error
}

// Tx is what a client submits: a message plus whatever the decorators
// need to authenticate it.
type Tx interface {
	Persistent
	GetMsg() (Msg, error)
}

// GetPath is the path of the message in tx, or (missing) when it cannot be
// read.
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg validates the message in tx and stores it in destination, which
// must point to a variable of the exact message type:
//
//   var msg *FundMsg
//   if err := barter.LoadMsg(tx, &msg); err != nil {
//       return err
//   }
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	switch {
	case err != nil:
		return errors.Wrap(err, "cannot get transaction message")
	case msg == nil:
		return errors.Wrap(errors.ErrMsg, "nil message")
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrapf(errors.ErrType, "invalid destination %T, not a pointer", destination)
	}
	if want, got := dest.Elem().Type(), reflect.TypeOf(msg); want != got {
		return errors.Wrapf(errors.ErrType, "want %s message, got %s", want, got)
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	dest.Elem().Set(reflect.ValueOf(msg))
	return nil
}
