package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
)

type stubPlacer struct {
	calls   int
	err     error
	cart    *Cart
	reenter error
}

func (s *stubPlacer) PlaceOrder(ctx context.Context, lines []Line) error {
	s.calls++
	if s.cart != nil {
		// Simulate a double-submit while the first call is still pending.
		s.reenter = s.cart.PlaceOrder(ctx, noopPlacer{})
	}
	return s.err
}

type noopPlacer struct{}

func (noopPlacer) PlaceOrder(context.Context, []Line) error { return nil }

func TestAdd_AccumulatesSameProduct(t *testing.T) {
	c := New()
	p1 := uuid.New()

	c.Add(p1, 2)
	require.Equal(t, 1, c.Len())
	require.Equal(t, 2, c.Quantity(p1))

	c.Add(p1, 3)
	require.Equal(t, 1, c.Len(), "same product must not create a second line")
	require.Equal(t, 5, c.Quantity(p1))
}

func TestAdd_NonPositiveQuantityIsNoOp(t *testing.T) {
	c := New()
	c.Add(uuid.New(), 0)
	c.Add(uuid.New(), -4)
	assert.Equal(t, 0, c.Len())
}

func TestRemove_IsIdempotent(t *testing.T) {
	c := New()
	p1 := uuid.New()
	c.Add(p1, 1)

	c.Remove(p1)
	assert.Equal(t, 0, c.Len())
	c.Remove(p1)
	assert.Equal(t, 0, c.Len())
}

func TestSetQuantity_RoundTripAndRemoveAtZero(t *testing.T) {
	c := New()
	p1 := uuid.New()
	p2 := uuid.New()
	c.Add(p1, 1)
	c.Add(p2, 1)

	for _, q := range []int{1, 7, 42} {
		c.SetQuantity(p1, q)
		assert.Equal(t, q, c.Quantity(p1))
	}
	assert.Equal(t, p1, c.Lines()[0].ProductID, "position preserved across updates")

	c.SetQuantity(p1, 0)
	assert.Equal(t, 0, c.Quantity(p1))
	assert.Equal(t, 1, c.Len())
}

func TestCartScenario_AddAccumulateThenZeroOut(t *testing.T) {
	c := New()
	p1 := uuid.New()

	c.Add(p1, 2)
	require.Equal(t, []Line{{ProductID: p1, Quantity: 2}}, c.Lines())

	c.Add(p1, 3)
	require.Equal(t, []Line{{ProductID: p1, Quantity: 5}}, c.Lines())

	c.SetQuantity(p1, 0)
	require.Empty(t, c.Lines())
}

func TestPlaceOrder_ClearsCartOnSuccessOnly(t *testing.T) {
	c := New()
	c.Add(uuid.New(), 2)

	placer := &stubPlacer{err: errors.New("boom")}
	err := c.PlaceOrder(context.Background(), placer)
	require.Error(t, err)
	assert.Equal(t, 1, c.Len(), "failed submit leaves the cart untouched")

	placer.err = nil
	require.NoError(t, c.PlaceOrder(context.Background(), placer))
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Submitting())
}

func TestPlaceOrder_EmptyCartRejected(t *testing.T) {
	c := New()
	err := c.PlaceOrder(context.Background(), noopPlacer{})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestPlaceOrder_RefusesDoubleSubmitWhileInFlight(t *testing.T) {
	c := New()
	c.Add(uuid.New(), 1)

	placer := &stubPlacer{cart: c}
	require.NoError(t, c.PlaceOrder(context.Background(), placer))

	require.Equal(t, 1, placer.calls)
	require.Error(t, placer.reenter)
	require.Equal(t, apperrors.CodeConflict, apperrors.As(placer.reenter).Code())
}
