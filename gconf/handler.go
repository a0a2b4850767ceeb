package gconf

import (
	"reflect"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x"
)

const updateConfigurationCost int64 = 50

// OwnedConfig is a configuration that names the party allowed to change it.
type OwnedConfig interface {
	Configuration
	GetOwner() barter.Address
}

// Patcher is implemented by update messages. ConfigPatch returns the
// partial configuration to apply, or nil when the message carries none.
type Patcher interface {
	ConfigPatch() OwnedConfig
}

// AdminFunc returns the address allowed to create a configuration that
// does not exist yet.
type AdminFunc func(barter.ReadOnlyKVStore) (barter.Address, error)

// UpdateConfigurationHandler applies a configuration patch signed by the
// current owner. Only non zero fields of the patch replace stored values.
type UpdateConfigurationHandler struct {
	pkg       string
	prototype OwnedConfig
	auth      x.Authenticator
	initAdmin AdminFunc
}

var _ barter.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a handler for the configuration of
// pkg. prototype is only used for its type.
//
// A configuration that was not created at genesis has no owner. initAdmin,
// when not nil, names who may create it. Once it exists only the owner
// recorded in the configuration is accepted.
func NewUpdateConfigurationHandler(pkg string, prototype OwnedConfig, auth x.Authenticator, initAdmin AdminFunc) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{pkg: pkg, prototype: prototype, auth: auth, initAdmin: initAdmin}
}

func (h UpdateConfigurationHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return barter.NewCheck(updateConfigurationCost, ""), nil
}

func (h UpdateConfigurationHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Info("configuration updated", "package", h.pkg)
	return &barter.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) apply(ctx barter.Context, db barter.KVStore, tx barter.Tx) error {
	patch, err := readPatch(tx)
	if err != nil {
		return err
	}

	// A fresh instance per call, the prototype is never written to.
	current := reflect.New(reflect.TypeOf(h.prototype).Elem()).Interface().(OwnedConfig)
	if err := h.authorize(ctx, db, current); err != nil {
		return err
	}
	if err := merge(current, patch); err != nil {
		return err
	}
	return errors.Wrap(Save(db, h.pkg, current), "save configuration")
}

// authorize loads the stored configuration into current and checks that
// whoever may change it signed the transaction.
func (h UpdateConfigurationHandler) authorize(ctx barter.Context, db barter.KVStore, current OwnedConfig) error {
	err := Load(db, h.pkg, current)
	switch {
	case err == nil:
		owner := current.GetOwner()
		if owner == nil {
			return errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
		}
		if !h.auth.HasAddress(ctx, owner) {
			return errors.Wrap(errors.ErrUnauthorized, "owner did not sign transaction")
		}
		return nil
	case !errors.ErrNotFound.Is(err):
		return errors.Wrap(err, "load configuration")
	case h.initAdmin == nil:
		return errors.Wrap(errors.ErrUnauthorized, "configuration does not exist and cannot be initialized")
	}
	admin, err := h.initAdmin(db)
	if err != nil {
		return errors.Wrap(err, "init admin")
	}
	if !h.auth.HasAddress(ctx, admin) {
		return errors.Wrap(errors.ErrUnauthorized, "initialization admin signature required")
	}
	return nil
}

func readPatch(tx barter.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	p, ok := msg.(Patcher)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "message %T carries no configuration patch", msg)
	}
	patch := p.ConfigPatch()
	if patch == nil || reflect.ValueOf(patch).IsNil() {
		return nil, errors.Wrap(errors.ErrEmpty, "patch")
	}
	return patch, nil
}

// merge copies every non zero field of patch into dst. Both must point to
// structs of the same type.
func merge(dst, patch OwnedConfig) error {
	if reflect.TypeOf(dst) != reflect.TypeOf(patch) {
		return errors.Wrapf(errors.ErrMsg, "patch %T does not match configuration %T", patch, dst)
	}
	dv := reflect.ValueOf(dst).Elem()
	pv := reflect.ValueOf(patch).Elem()
	for i := 0; i < pv.NumField(); i++ {
		f := pv.Field(i)
		if reflect.DeepEqual(f.Interface(), reflect.Zero(f.Type()).Interface()) {
			continue
		}
		dv.Field(i).Set(f)
	}
	return nil
}
