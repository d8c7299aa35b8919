package orders

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lunaredge/storefront/internal/app/domain/order"
	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/internal/app/storage/memory"
	"github.com/lunaredge/storefront/pkg/logger"
)

func newService(t *testing.T) (*Service, *state.Store) {
	t.Helper()
	log := logger.NewDefault("test")
	log.SetOutput(io.Discard)
	st := state.New(memory.New(), log)
	return New(st, log), st
}

func place(st *state.Store, id int, total string) {
	st.PlaceOrder(order.Order{ID: id, CreatedAt: time.Now(), Total: total})
}

func TestListIsMostRecentFirst(t *testing.T) {
	svc, st := newService(t)
	place(st, 111111, "10.00")
	place(st, 222222, "20.00")

	got := svc.List()
	assert.Len(t, got, 2)
	assert.Equal(t, 222222, got[0].ID)
	assert.Equal(t, 111111, got[1].ID)
}

func TestGetResolvesByID(t *testing.T) {
	svc, st := newService(t)
	place(st, 123456, "15.50")

	o, ok := svc.Get(123456)
	assert.True(t, ok)
	assert.Equal(t, "15.50", o.Total)

	_, ok = svc.Get(654321)
	assert.False(t, ok)
}

func TestCancelDeletesFromLedger(t *testing.T) {
	svc, st := newService(t)
	place(st, 111111, "10.00")
	place(st, 222222, "20.00")

	svc.Cancel(111111)

	got := svc.List()
	assert.Len(t, got, 1)
	assert.Equal(t, 222222, got[0].ID)
}

func TestCancelUnknownIDIsNoOp(t *testing.T) {
	svc, st := newService(t)
	place(st, 111111, "10.00")

	svc.Cancel(999999)

	assert.Len(t, svc.List(), 1)
}
