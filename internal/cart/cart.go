// Package cart owns the line collection for a shopping session. It performs
// no network calls of its own; placing the order is delegated to a Placer and
// guarded against concurrent double-submit.
package cart

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/toychauz/toycha-backend/pkg/errors"
)

// Line is one product entry in the cart. Quantity is never observably zero.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// Placer submits the cart's lines as one order.
type Placer interface {
	PlaceOrder(ctx context.Context, lines []Line) error
}

// Cart accumulates lines in insertion order.
type Cart struct {
	lines    []Line
	inFlight bool
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends quantity to an existing line or creates a new one. Non-positive
// quantities are a no-op.
func (c *Cart) Add(productID uuid.UUID, quantity int) {
	if quantity <= 0 {
		return
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity += quantity
			return
		}
	}
	c.lines = append(c.lines, Line{ProductID: productID, Quantity: quantity})
}

// Remove deletes a line. Absent lines are ignored.
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces a line's quantity in place, preserving its position.
// Values below 1 delegate to Remove.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) {
	if quantity < 1 {
		c.Remove(productID)
		return
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Quantity reports a line's quantity, zero when absent.
func (c *Cart) Quantity(productID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return c.lines[i].Quantity
		}
	}
	return 0
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len reports the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Submitting reports whether a PlaceOrder call is still in flight.
func (c *Cart) Submitting() bool {
	return c.inFlight
}

// PlaceOrder submits the cart through the placer. While a submission is in
// flight further calls are refused, and the cart is only cleared once the
// call resolves successfully; on failure the lines are left untouched.
func (c *Cart) PlaceOrder(ctx context.Context, placer Placer) error {
	if placer == nil {
		return apperrors.New(apperrors.CodeInternal, "order placer not configured")
	}
	if len(c.lines) == 0 {
		return apperrors.New(apperrors.CodeValidation, "cart is empty")
	}
	if c.inFlight {
		return apperrors.New(apperrors.CodeConflict, "order submission already in progress")
	}
	c.inFlight = true
	defer func() { c.inFlight = false }()

	if err := placer.PlaceOrder(ctx, c.Lines()); err != nil {
		return err
	}
	c.lines = nil
	return nil
}
