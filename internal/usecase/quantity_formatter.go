package usecase

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// FormatMode selects how a quantity is rendered
type FormatMode string

const (
	FormatAuto     FormatMode = "auto"
	FormatFraction FormatMode = "fraction"
	FormatDecimal  FormatMode = "decimal"
)

// DefaultDecimalPlaces is the precision of decimal rendering
const DefaultDecimalPlaces = 4

// ParseFormatMode validates a format mode name; empty means auto
func ParseFormatMode(s string) (FormatMode, error) {
	switch FormatMode(strings.ToLower(strings.TrimSpace(s))) {
	case FormatAuto, "":
		return FormatAuto, nil
	case FormatFraction:
		return FormatFraction, nil
	case FormatDecimal:
		return FormatDecimal, nil
	}
	return "", fmt.Errorf("%w: unknown format mode %q", domain.ErrInvalidRequest, s)
}

// QuantityFormatter renders quantities for display
type QuantityFormatter struct {
	decimalPlaces int32
}

// NewQuantityFormatter creates a formatter; decimalPlaces <= 0 uses the default of 4.
// The server config rejects 0, so a configured precision is always applied.
func NewQuantityFormatter(decimalPlaces int) *QuantityFormatter {
	if decimalPlaces <= 0 {
		decimalPlaces = DefaultDecimalPlaces
	}
	return &QuantityFormatter{decimalPlaces: int32(decimalPlaces)}
}

var defaultFormatter = NewQuantityFormatter(DefaultDecimalPlaces)

// FormatQuantity renders q with the default formatter
func FormatQuantity(q domain.Quantity, mode FormatMode) string {
	return defaultFormatter.Format(q, mode)
}

// Format renders q. The quantity is always normalized first, so 2/4 prints as 1/2.
func (f *QuantityFormatter) Format(q domain.Quantity, mode FormatMode) string {
	n := q.Normalize()

	switch mode {
	case FormatDecimal:
		return f.decimalString(n)
	case FormatFraction:
		return fractionString(n)
	default:
		if n.Num == 0 {
			return strconv.FormatInt(n.Whole, 10)
		}
		return fractionString(n)
	}
}

// FormatWithUnit renders "1 1/2 cup" or, with long labels, "1 1/2 cups"
func (f *QuantityFormatter) FormatWithUnit(q domain.Quantity, unit domain.Unit, mode FormatMode, long bool) string {
	label := string(unit)
	if long {
		plural := !q.Equal(domain.WholeQuantity(1)) && !q.Equal(domain.WholeQuantity(-1))
		label = unit.Label(plural)
	}
	return f.Format(q, mode) + " " + label
}

// decimalString renders whole + num/denom with trailing zeros trimmed
func (f *QuantityFormatter) decimalString(n domain.Quantity) string {
	return DecimalValue(n, f.decimalPlaces).String()
}

// DecimalValue returns q as a decimal rounded to places
func DecimalValue(q domain.Quantity, places int32) decimal.Decimal {
	return ratDecimal(q.Rat(), places)
}

func ratDecimal(r *big.Rat, places int32) decimal.Decimal {
	return decimal.NewFromBigInt(r.Num(), 0).DivRound(decimal.NewFromBigInt(r.Denom(), 0), places)
}

// fractionString renders "{whole} {num}/{denom}" dropping zero parts
func fractionString(n domain.Quantity) string {
	whole, num := n.Whole, n.Num
	sign := ""
	if whole < 0 || num < 0 {
		sign = "-"
		whole, num = -whole, -num
	}

	var parts []string
	if whole != 0 {
		parts = append(parts, strconv.FormatInt(whole, 10))
	}
	if num != 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", num, n.Denom))
	}
	if len(parts) == 0 {
		return "0"
	}
	return sign + strings.Join(parts, " ")
}
