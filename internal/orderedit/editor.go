// Package orderedit holds the working copy a market amends before submitting
// a revised line list for a still-new order as one atomic PATCH.
package orderedit

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/enums"
)

// Line is a working-copy row. ProductID is Nil until the user selects one.
type Line struct {
	ID        string
	ProductID uuid.UUID
	Quantity  int
}

// Saver submits the filtered line list for the order.
type Saver interface {
	SaveOrderLines(ctx context.Context, orderID uuid.UUID, lines []Line) error
}

// Editor tracks edit mode and the working lines for one order.
type Editor struct {
	orderID  uuid.UUID
	status   enums.OrderStatus
	snapshot []Line
	working  []Line
	editing  bool
}

// NewEditor builds an editor over an order's last-fetched snapshot.
func NewEditor(orderID uuid.UUID, status enums.OrderStatus, lines []Line) *Editor {
	e := &Editor{orderID: orderID, status: status}
	e.snapshot = cloneLines(lines)
	e.working = cloneLines(lines)
	return e
}

// Editing reports whether edit mode is active.
func (e *Editor) Editing() bool {
	return e.editing
}

// Lines returns a copy of the working lines.
func (e *Editor) Lines() []Line {
	return cloneLines(e.working)
}

// BeginEdit enters edit mode. Only orders still awaiting the delivery side
// may be amended.
func (e *Editor) BeginEdit() error {
	if !e.status.Editable() {
		return apperrors.New(apperrors.CodeStateConflict, "order can no longer be edited")
	}
	e.editing = true
	return nil
}

// CancelEdit leaves edit mode and restores the snapshot; nothing from the
// abandoned edit survives.
func (e *Editor) CancelEdit() {
	e.editing = false
	e.working = cloneLines(e.snapshot)
}

// SetLineQuantity parses value and updates the working line. Unparseable or
// negative input is ignored; nothing is submitted until Save.
func (e *Editor) SetLineQuantity(lineID, value string) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return
	}
	for i := range e.working {
		if e.working[i].ID == lineID {
			e.working[i].Quantity = n
			return
		}
	}
}

// SetLineProduct reassigns which product a line refers to. Quantity is left
// as is.
func (e *Editor) SetLineProduct(lineID string, productID uuid.UUID) {
	for i := range e.working {
		if e.working[i].ID == lineID {
			e.working[i].ProductID = productID
			return
		}
	}
}

// AddLine appends a fresh working line with a generated id, quantity 1 and no
// product selected. The new line's id is returned.
func (e *Editor) AddLine() string {
	id := uuid.NewString()
	e.working = append(e.working, Line{ID: id, Quantity: 1})
	return id
}

// RemoveLine deletes a working line. Absent ids are ignored.
func (e *Editor) RemoveLine(lineID string) {
	for i := range e.working {
		if e.working[i].ID == lineID {
			e.working = append(e.working[:i], e.working[i+1:]...)
			return
		}
	}
}

// Save filters the working lines to those with a selected product and a
// positive quantity and submits them as one full-list PATCH. An empty
// filtered set is a validation failure and never reaches the saver; a
// non-editable status is a precondition failure likewise caught before any
// network call. On success the editor leaves edit mode and the saved lines
// become the new snapshot; on failure edit mode stays active so the user
// keeps their context.
func (e *Editor) Save(ctx context.Context, saver Saver) error {
	if saver == nil {
		return apperrors.New(apperrors.CodeInternal, "order saver not configured")
	}
	if !e.status.Editable() {
		return apperrors.New(apperrors.CodeStateConflict, "order can no longer be edited")
	}
	filtered := make([]Line, 0, len(e.working))
	for _, l := range e.working {
		if l.ProductID != uuid.Nil && l.Quantity > 0 {
			filtered = append(filtered, l)
		}
	}
	if len(filtered) == 0 {
		return apperrors.New(apperrors.CodeValidation, "order must keep at least one product with a quantity")
	}
	if err := saver.SaveOrderLines(ctx, e.orderID, filtered); err != nil {
		return err
	}
	e.editing = false
	e.snapshot = cloneLines(filtered)
	e.working = cloneLines(filtered)
	return nil
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
