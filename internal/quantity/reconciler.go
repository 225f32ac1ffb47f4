// Package quantity bridges free-form text entry to an authoritative integer
// quantity. Each line keeps a display buffer the user can type into freely;
// only well-formed positive values are ever committed, and zero is treated as
// a removal request rather than a quantity.
package quantity

import (
	"strconv"
)

// Action tells the owning collection what an edit asks for.
type Action int

const (
	// ActionNone means only the display buffer changed.
	ActionNone Action = iota
	// ActionCommit means Value is the new authoritative quantity.
	ActionCommit
	// ActionRemove means the line should be removed from the collection.
	ActionRemove
)

// Outcome is the result of applying a keystroke or button delta.
type Outcome struct {
	Action Action
	Value  int
}

// Reconciler holds per-line display buffers keyed by line id.
type Reconciler struct {
	displayed map[string]string
}

// NewReconciler returns an empty reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{displayed: make(map[string]string)}
}

// Resync replaces every display buffer with the string form of the
// authoritative quantities. Buffers for lines absent from quantities are
// dropped; this is a full resync, not a merge.
func (r *Reconciler) Resync(quantities map[string]int) {
	next := make(map[string]string, len(quantities))
	for id, q := range quantities {
		next[id] = strconv.Itoa(q)
	}
	r.displayed = next
}

// Displayed returns the buffer for a line, falling back to the authoritative
// quantity when the line has never been touched.
func (r *Reconciler) Displayed(lineID string, authoritative int) string {
	if v, ok := r.displayed[lineID]; ok {
		return v
	}
	return strconv.Itoa(authoritative)
}

// Edit applies a keystroke producing text v. The buffer is always stored so
// the user can keep typing through an invalid intermediate state; authoritative
// state only moves on a clean non-negative parse.
func (r *Reconciler) Edit(lineID, v string) Outcome {
	r.displayed[lineID] = v
	if v == "" {
		return Outcome{Action: ActionNone}
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return Outcome{Action: ActionNone}
	}
	if n == 0 {
		delete(r.displayed, lineID)
		return Outcome{Action: ActionRemove}
	}
	return Outcome{Action: ActionCommit, Value: n}
}

// Blur abandons an in-progress edit: if the buffer does not hold a committed
// positive value it is reset to the authoritative quantity's string form. The
// resulting display string is returned.
func (r *Reconciler) Blur(lineID string, authoritative int) string {
	v, ok := r.displayed[lineID]
	if ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return v
		}
	}
	reset := strconv.Itoa(authoritative)
	r.displayed[lineID] = reset
	return reset
}

// Forget drops the buffer for a removed line.
func (r *Reconciler) Forget(lineID string) {
	delete(r.displayed, lineID)
}

// Delta applies a button-driven +/- step against the authoritative quantity,
// bypassing the text buffer. When the step would take the quantity below 1,
// allowRemove decides between a removal request and a no-op: the cart's minus
// button stays inert at quantity 1, while contexts with decrement-to-remove
// semantics pass true.
func Delta(quantity, step int, allowRemove bool) Outcome {
	next := quantity + step
	if next < 1 {
		if allowRemove {
			return Outcome{Action: ActionRemove}
		}
		return Outcome{Action: ActionNone}
	}
	return Outcome{Action: ActionCommit, Value: next}
}
