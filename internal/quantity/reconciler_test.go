package quantity

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdit_CommitsPositiveIntegersImmediately(t *testing.T) {
	r := NewReconciler()
	out := r.Edit("l1", "7")
	require.Equal(t, ActionCommit, out.Action)
	require.Equal(t, 7, out.Value)
	assert.Equal(t, "7", r.Displayed("l1", 3))
}

func TestEdit_InvalidInputNeverTouchesAuthoritativeState(t *testing.T) {
	r := NewReconciler()
	for _, v := range []string{"", "-2", "abc", "1.5", " 3"} {
		out := r.Edit("l1", v)
		assert.Equal(t, ActionNone, out.Action, "input %q", v)
		assert.Equal(t, v, r.Displayed("l1", 4), "buffer keeps raw input %q", v)
	}
}

func TestEdit_ZeroIsARemovalRequest(t *testing.T) {
	r := NewReconciler()
	out := r.Edit("l1", "0")
	require.Equal(t, ActionRemove, out.Action)
}

func TestBlur_ResetsAbandonedEditsToAuthoritative(t *testing.T) {
	r := NewReconciler()

	r.Edit("l1", "")
	assert.Equal(t, "5", r.Blur("l1", 5))
	assert.Equal(t, "5", r.Displayed("l1", 5))

	r.Edit("l1", "-3")
	assert.Equal(t, "5", r.Blur("l1", 5))

	r.Edit("l1", "12")
	assert.Equal(t, "12", r.Blur("l1", 5), "committed value survives blur")
}

func TestResync_IsFullReplaceNotMerge(t *testing.T) {
	r := NewReconciler()
	r.Edit("l1", "")
	r.Edit("l2", "9")

	r.Resync(map[string]int{"l1": 2, "l3": 6})

	assert.Equal(t, "2", r.Displayed("l1", 2))
	assert.Equal(t, "6", r.Displayed("l3", 6))
	assert.Equal(t, "4", r.Displayed("l2", 4), "dropped buffer falls back to authoritative")
}

func TestDisplayed_FallsBackToAuthoritative(t *testing.T) {
	r := NewReconciler()
	assert.Equal(t, "11", r.Displayed("never-touched", 11))
}

func TestEdit_RoundTripPositiveQuantities(t *testing.T) {
	r := NewReconciler()
	for _, q := range []int{1, 2, 10, 999} {
		out := r.Edit("l1", strconv.Itoa(q))
		require.Equal(t, ActionCommit, out.Action)
		require.Equal(t, q, out.Value)
	}
}

func TestDelta_FloorBehaviorDependsOnContext(t *testing.T) {
	out := Delta(3, 1, false)
	require.Equal(t, ActionCommit, out.Action)
	require.Equal(t, 4, out.Value)

	out = Delta(1, -1, false)
	assert.Equal(t, ActionNone, out.Action, "minus stays inert at quantity 1 in the cart")

	out = Delta(1, -1, true)
	assert.Equal(t, ActionRemove, out.Action, "decrement-to-remove contexts remove at 1")

	out = Delta(2, -1, true)
	require.Equal(t, ActionCommit, out.Action)
	require.Equal(t, 1, out.Value)
}
