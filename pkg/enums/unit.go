package enums

import "fmt"

// Unit is the measurement unit a product is sold in.
type Unit string

const (
	UnitPiece Unit = "piece"
	UnitLiter Unit = "liter"
	UnitKg    Unit = "kg"
	UnitMeter Unit = "m"
)

var validUnits = []Unit{
	UnitPiece,
	UnitLiter,
	UnitKg,
	UnitMeter,
}

// String implements fmt.Stringer.
func (u Unit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known Unit.
func (u Unit) IsValid() bool {
	for _, candidate := range validUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnit converts raw input into a Unit.
func ParseUnit(value string) (Unit, error) {
	for _, candidate := range validUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit %q", value)
}
