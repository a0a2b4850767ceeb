package gconf

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// ReadStore is the part of barter.ReadOnlyKVStore needed to load.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is the part of barter.KVStore needed to save.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler can check and serialize itself.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler can load itself from its serialized form.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is implemented by every configuration object.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

// key is the singleton key of the configuration of pkg.
func key(pkg string) []byte {
	return append([]byte("_c:"), pkg...)
}

// Save validates src and writes it as the configuration of pkg.
func Save(db Store, pkg string, src ValidMarshaler) error {
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "configuration %q", pkg)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal configuration %q", pkg)
	}
	if err := db.Set(key(pkg), raw); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "save configuration %q: %s", pkg, err)
	}
	return nil
}

// Load reads the configuration of pkg into dst. ErrNotFound is returned
// when nothing was saved yet.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	raw, err := db.Get(key(pkg))
	switch {
	case err != nil:
		return errors.Wrapf(errors.ErrDatabase, "load configuration %q: %s", pkg, err)
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "configuration %q", pkg)
	}
	return errors.Wrapf(dst.Unmarshal(raw), "unmarshal configuration %q", pkg)
}

// InitConfig reads opts["conf"][pkg] into conf and saves it. A genesis
// without a section for pkg is an ErrNotFound.
func InitConfig(db Store, opts barter.Options, pkg string, conf Configuration) error {
	var sections barter.Options
	if err := opts.ReadOptions("conf", &sections); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if _, ok := sections[pkg]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q", pkg)
	}
	if err := sections.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read configuration %q", pkg)
	}
	return Save(db, pkg, conf)
}
