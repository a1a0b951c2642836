package domain

import (
	"fmt"
	"strings"
)

// MeasurementType is the family a unit belongs to. Families never interconvert.
type MeasurementType string

const (
	Volume MeasurementType = "volume"
	Mass   MeasurementType = "mass"
)

// BaseUnit returns the canonical unit of the family (ml for volume, g for mass)
func (m MeasurementType) BaseUnit() Unit {
	if m == Mass {
		return Gram
	}
	return Milliliter
}

// Unit is a supported culinary unit
type Unit string

// Volume units
const (
	Milliliter Unit = "ml"
	Liter      Unit = "L"
	Teaspoon   Unit = "tsp"
	Tablespoon Unit = "tbsp"
	FluidOunce Unit = "fl oz"
	Cup        Unit = "cup"
)

// Mass units
const (
	Gram     Unit = "g"
	Kilogram Unit = "kg"
	Ounce    Unit = "oz"
	Pound    Unit = "lb"
)

var (
	volumeUnits = []Unit{Milliliter, Liter, Teaspoon, Tablespoon, FluidOunce, Cup}
	massUnits   = []Unit{Gram, Kilogram, Ounce, Pound}
)

// unitDef describes one entry of the closed unit table
type unitDef struct {
	family   MeasurementType
	factor   Quantity // exact multiplier to the family base unit
	singular string
	plural   string
}

// definition is the single source of truth for the unit table. Adding a Unit constant
// without a case here makes it unknown everywhere.
func (u Unit) definition() (unitDef, bool) {
	switch u {
	case Milliliter:
		return unitDef{Volume, WholeQuantity(1), "ml", "ml"}, true
	case Liter:
		return unitDef{Volume, WholeQuantity(1000), "liter", "liters"}, true
	case Teaspoon:
		return unitDef{Volume, NewQuantity(4, 92892, 100000).Normalize(), "teaspoon", "teaspoons"}, true
	case Tablespoon:
		return unitDef{Volume, NewQuantity(14, 7868, 10000).Normalize(), "tablespoon", "tablespoons"}, true
	case FluidOunce:
		return unitDef{Volume, NewQuantity(29, 5735, 10000).Normalize(), "fluid ounce", "fluid ounces"}, true
	case Cup:
		return unitDef{Volume, NewQuantity(236, 588, 1000).Normalize(), "cup", "cups"}, true
	case Gram:
		return unitDef{Mass, WholeQuantity(1), "g", "g"}, true
	case Kilogram:
		return unitDef{Mass, WholeQuantity(1000), "kg", "kg"}, true
	case Ounce:
		return unitDef{Mass, NewQuantity(28, 3495, 10000).Normalize(), "ounce", "ounces"}, true
	case Pound:
		return unitDef{Mass, NewQuantity(453, 592, 1000).Normalize(), "pound", "pounds"}, true
	}
	return unitDef{}, false
}

// Valid reports whether u is in one of the conversion tables
func (u Unit) Valid() bool {
	_, ok := u.definition()
	return ok
}

// MeasurementType returns the family of u
func (u Unit) MeasurementType() (MeasurementType, error) {
	s, ok := u.definition()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
	}
	return s.family, nil
}

// Factor returns the exact multiplier from u to its family base unit
func (u Unit) Factor() (Quantity, error) {
	s, ok := u.definition()
	if !ok {
		return Quantity{}, fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
	}
	return s.factor, nil
}

// Label returns the long display name, pluralized when plural is true.
// Unknown units render as their raw tag.
func (u Unit) Label(plural bool) string {
	s, ok := u.definition()
	if !ok {
		return string(u)
	}
	if plural {
		return s.plural
	}
	return s.singular
}

// IsBaseUnit reports whether u is ml or g
func (u Unit) IsBaseUnit() bool {
	return u == Milliliter || u == Gram
}

// VolumeUnits lists all volume units
func VolumeUnits() []Unit {
	return append([]Unit(nil), volumeUnits...)
}

// MassUnits lists all mass units
func MassUnits() []Unit {
	return append([]Unit(nil), massUnits...)
}

// unitAliases maps lowercase spellings to canonical units
var unitAliases = map[string]Unit{
	"ml": Milliliter, "milliliter": Milliliter, "milliliters": Milliliter, "millilitre": Milliliter, "millilitres": Milliliter,
	"l": Liter, "liter": Liter, "liters": Liter, "litre": Liter, "litres": Liter,
	"tsp": Teaspoon, "teaspoon": Teaspoon, "teaspoons": Teaspoon,
	"tbsp": Tablespoon, "tablespoon": Tablespoon, "tablespoons": Tablespoon,
	"fl oz": FluidOunce, "floz": FluidOunce, "fluid ounce": FluidOunce, "fluid ounces": FluidOunce,
	"cup": Cup, "cups": Cup,
	"g": Gram, "gram": Gram, "grams": Gram,
	"kg": Kilogram, "kilogram": Kilogram, "kilograms": Kilogram,
	"oz": Ounce, "ounce": Ounce, "ounces": Ounce,
	"lb": Pound, "lbs": Pound, "pound": Pound, "pounds": Pound,
}

// ParseUnit resolves a unit tag or a common spelling of it
func ParseUnit(s string) (Unit, error) {
	trimmed := strings.TrimSpace(s)
	if u := Unit(trimmed); u.Valid() {
		return u, nil
	}

	key := strings.Join(strings.Fields(strings.ToLower(trimmed)), " ")
	if u, ok := unitAliases[key]; ok {
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}
