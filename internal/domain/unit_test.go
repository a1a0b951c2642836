package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit_MeasurementType(t *testing.T) {
	for _, u := range VolumeUnits() {
		mt, err := u.MeasurementType()
		require.NoError(t, err)
		assert.Equal(t, Volume, mt, "unit %s", u)
	}
	for _, u := range MassUnits() {
		mt, err := u.MeasurementType()
		require.NoError(t, err)
		assert.Equal(t, Mass, mt, "unit %s", u)
	}

	_, err := Unit("pinch").MeasurementType()
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestUnit_Factor(t *testing.T) {
	tests := []struct {
		unit Unit
		want float64
	}{
		{Milliliter, 1},
		{Liter, 1000},
		{Teaspoon, 4.92892},
		{Tablespoon, 14.7868},
		{FluidOunce, 29.5735},
		{Cup, 236.588},
		{Gram, 1},
		{Kilogram, 1000},
		{Ounce, 28.3495},
		{Pound, 453.592},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			f, err := tt.unit.Factor()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, f.Float64(), 1e-9)
		})
	}
}

func TestMeasurementType_BaseUnit(t *testing.T) {
	assert.Equal(t, Milliliter, Volume.BaseUnit())
	assert.Equal(t, Gram, Mass.BaseUnit())
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		input string
		want  Unit
	}{
		{"cup", Cup},
		{"Cups", Cup},
		{"L", Liter},
		{"l", Liter},
		{"fl oz", FluidOunce},
		{"Fl  Oz", FluidOunce},
		{"tablespoons", Tablespoon},
		{" tsp ", Teaspoon},
		{"lbs", Pound},
		{"grams", Gram},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseUnit(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseUnit("handful")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestUnit_Label(t *testing.T) {
	assert.Equal(t, "cup", Cup.Label(false))
	assert.Equal(t, "cups", Cup.Label(true))
	assert.Equal(t, "fluid ounces", FluidOunce.Label(true))
	assert.Equal(t, "ml", Milliliter.Label(true))
	assert.Equal(t, "clove", Unit("clove").Label(true))
}

func TestUnitLists_AreCopies(t *testing.T) {
	units := VolumeUnits()
	units[0] = Pound
	assert.Equal(t, Milliliter, VolumeUnits()[0])
	assert.Len(t, MassUnits(), 4)
}
