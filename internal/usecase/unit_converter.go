package usecase

import (
	"fmt"
	"math/big"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultKitchenDenominator rounds converted quantities to the nearest 1/16
const DefaultKitchenDenominator = 16

// DisplayPlaces is the precision of decimal conversions and base-unit totals
const DisplayPlaces = 2

// BaseAmount is a value expressed in its family's base unit (ml or g)
type BaseAmount struct {
	Value decimal.Decimal `json:"value"`
	Unit  domain.Unit     `json:"unit"`
}

// UnitConverter converts quantities within a measurement family.
//
// Two result shapes are offered: Convert returns a kitchen fraction rounded to
// 1/kitchenDenominator, ConvertValue returns a decimal rounded to DisplayPlaces.
type UnitConverter struct {
	kitchenDenominator int64
}

// NewUnitConverter creates a converter; kitchenDenominator <= 0 uses 16
func NewUnitConverter(kitchenDenominator int64) *UnitConverter {
	if kitchenDenominator <= 0 {
		kitchenDenominator = DefaultKitchenDenominator
	}
	return &UnitConverter{kitchenDenominator: kitchenDenominator}
}

// MeasurementType returns whether unit measures volume or mass
func (c *UnitConverter) MeasurementType(unit domain.Unit) (domain.MeasurementType, error) {
	return unit.MeasurementType()
}

// Convert converts q between units of the same family, rounding to a kitchen fraction.
// Converting a unit to itself returns q unchanged. The product is rounded before
// it is narrowed back to int64, so long decimal inputs convert without overflow.
func (c *UnitConverter) Convert(q domain.Quantity, from, to domain.Unit) (domain.Quantity, error) {
	ratio, err := conversionRatio(from, to)
	if err != nil {
		return domain.Quantity{}, err
	}
	if from == to {
		return q, nil
	}
	if err := q.Validate(); err != nil {
		return domain.Quantity{}, err
	}

	product := new(big.Rat).Mul(q.Rat(), ratio.Rat())
	converted, err := domain.RoundRat(product, c.kitchenDenominator)
	if err != nil {
		return domain.Quantity{}, fmt.Errorf("converting %s to %s: %w", from, to, err)
	}
	return converted, nil
}

// ConvertValue converts a decimal value between units of the same family,
// rounding to DisplayPlaces. E.g. 1 cup is 236.59 ml.
func (c *UnitConverter) ConvertValue(value decimal.Decimal, from, to domain.Unit) (decimal.Decimal, error) {
	ratio, err := conversionRatio(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return value, nil
	}

	r := ratio.Rat()
	result := value.Mul(decimal.NewFromBigInt(r.Num(), 0)).DivRound(decimal.NewFromBigInt(r.Denom(), 0), DisplayPlaces)
	return result, nil
}

// ToBaseUnits converts q to ml or g
func (c *UnitConverter) ToBaseUnits(q domain.Quantity, unit domain.Unit) (BaseAmount, error) {
	family, err := unit.MeasurementType()
	if err != nil {
		return BaseAmount{}, err
	}
	factor, err := unit.Factor()
	if err != nil {
		return BaseAmount{}, err
	}
	if err := q.Validate(); err != nil {
		return BaseAmount{}, err
	}

	return BaseAmount{
		Value: ratDecimal(new(big.Rat).Mul(q.Rat(), factor.Rat()), DisplayPlaces),
		Unit:  family.BaseUnit(),
	}, nil
}

// FromBaseUnits converts a base-unit value into targetUnit. The base unit must
// belong to the target's family.
func (c *UnitConverter) FromBaseUnits(value decimal.Decimal, baseUnit, targetUnit domain.Unit) (decimal.Decimal, error) {
	if !baseUnit.IsBaseUnit() {
		return decimal.Zero, fmt.Errorf("%w: %q is not a base unit", domain.ErrUnknownUnit, string(baseUnit))
	}
	return c.ConvertValue(value, baseUnit, targetUnit)
}

// conversionRatio returns factor(from)/factor(to), failing across families
func conversionRatio(from, to domain.Unit) (domain.Quantity, error) {
	fromType, err := from.MeasurementType()
	if err != nil {
		return domain.Quantity{}, err
	}
	toType, err := to.MeasurementType()
	if err != nil {
		return domain.Quantity{}, err
	}
	if fromType != toType {
		return domain.Quantity{}, fmt.Errorf("%w: %s is %s, %s is %s",
			domain.ErrCrossFamilyConversion, from, fromType, to, toType)
	}

	fromFactor, _ := from.Factor()
	toFactor, _ := to.Factor()
	return fromFactor.DivQuantity(toFactor)
}
