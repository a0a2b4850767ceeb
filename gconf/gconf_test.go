package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/bartertest/assert"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
)

// myconfig is a configuration used only in tests. It serializes to JSON.
type myconfig struct {
	Owner barter.Address `json:"owner"`
	Num   int64          `json:"num"`
	Str   string         `json:"str"`
}

var _ OwnedConfig = (*myconfig)(nil)

func (c *myconfig) Marshal() ([]byte, error) { return json.Marshal(c) }

func (c *myconfig) Unmarshal(raw []byte) error { return json.Unmarshal(raw, c) }

func (c *myconfig) GetOwner() barter.Address { return c.Owner }

func (c *myconfig) Validate() error {
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if c.Num < 0 {
		return errors.Wrap(errors.ErrInput, "num must not be negative")
	}
	return nil
}

func TestSaveLoad(t *testing.T) {
	owner := bartertest.NewCondition().Address()

	cases := map[string]struct {
		conf        *myconfig
		wantSaveErr *errors.Error
	}{
		"valid configuration": {
			conf: &myconfig{Owner: owner, Num: 42, Str: "hello"},
		},
		"invalid configuration cannot be saved": {
			conf:        &myconfig{Owner: owner, Num: -1},
			wantSaveErr: errors.ErrInput,
		},
		"configuration without an owner cannot be saved": {
			conf:        &myconfig{Num: 1},
			wantSaveErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			err := Save(db, "mypkg", tc.conf)
			assert.IsErr(t, tc.wantSaveErr, err)
			if tc.wantSaveErr != nil {
				var got myconfig
				assert.IsErr(t, errors.ErrNotFound, Load(db, "mypkg", &got))
				return
			}
			var got myconfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.conf, &got)

			// Configuration is bound to the package name.
			assert.IsErr(t, errors.ErrNotFound, Load(db, "otherpkg", &got))
		})
	}
}

func TestInitConfig(t *testing.T) {
	owner := bartertest.NewCondition().Address()
	ownerJSON, err := json.Marshal(owner)
	assert.Nil(t, err)

	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
		want    *myconfig
	}{
		"configuration is loaded": {
			genesis: `{"conf": {"mypkg": {"owner": ` + string(ownerJSON) + `, "num": 7, "str": "x"}}}`,
			want:    &myconfig{Owner: owner, Num: 7, Str: "x"},
		},
		"missing package configuration": {
			genesis: `{"conf": {"otherpkg": {}}}`,
			wantErr: errors.ErrNotFound,
		},
		"missing conf section": {
			genesis: `{}`,
			wantErr: errors.ErrNotFound,
		},
		"malformed configuration": {
			genesis: `{"conf": {"mypkg": {"num": "seven"}}}`,
			wantErr: errors.ErrInput,
		},
		"invalid configuration": {
			genesis: `{"conf": {"mypkg": {"owner": ` + string(ownerJSON) + `, "num": -3}}}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts barter.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))

			db := store.MemStore()
			err := InitConfig(db, opts, "mypkg", &myconfig{})
			assert.IsErr(t, tc.wantErr, err)
			if tc.want == nil {
				return
			}
			var got myconfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.want, &got)
		})
	}
}
