package orm

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/x"
)

// Model is implemented by any entity that can be stored in a bucket.
type Model interface {
	x.Validater
	barter.Persistent
	Copy() Model
}

// Object is a model together with its primary key. Indexers receive one.
type Object interface {
	Key() []byte
	Value() Model
}

type object struct {
	key   []byte
	value Model
}

func (o object) Key() []byte  { return o.key }
func (o object) Value() Model { return o.value }
