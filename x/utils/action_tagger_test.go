package utils

import (
	"context"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTagger(t *testing.T) {
	cases := map[string]struct {
		tx       barter.Tx
		handler  *bartertest.Handler
		wantErr  *errors.Error
		wantTags int
	}{
		"successful message is tagged with its path": {
			tx:       &bartertest.Tx{Msg: &bartertest.Msg{RoutePath: "escrow/finalize"}},
			handler:  &bartertest.Handler{},
			wantTags: 1,
		},
		"failed message is not tagged": {
			tx:      &bartertest.Tx{Msg: &bartertest.Msg{RoutePath: "escrow/fund"}},
			handler: &bartertest.Handler{DeliverErr: errors.ErrUnauthorized},
			wantErr: errors.ErrUnauthorized,
		},
		"message that cannot be read is not dispatched": {
			tx:      &bartertest.Tx{Err: errors.ErrMsg},
			handler: &bartertest.Handler{},
			wantErr: errors.ErrMsg,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res, err := NewActionTagger().Deliver(context.Background(), store.MemStore(), tc.tx, tc.handler)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			require.Len(t, res.Tags, tc.wantTags)
			msg, _ := tc.tx.GetMsg()
			assert.Equal(t, ActionKey, string(res.Tags[0].Key))
			assert.Equal(t, msg.Path(), string(res.Tags[0].Value))
		})
	}
}
