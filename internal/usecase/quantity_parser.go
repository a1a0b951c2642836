package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// InputMode selects which quantity grammar an API boundary accepts
type InputMode string

const (
	// InputModeFraction accepts integers, fractions, mixed numbers and decimals
	InputModeFraction InputMode = "fraction"
	// InputModeDecimal accepts plain decimals only and rejects fraction syntax
	InputModeDecimal InputMode = "decimal"
)

// ParseInputMode validates an input mode name
func ParseInputMode(s string) (InputMode, error) {
	switch InputMode(strings.ToLower(strings.TrimSpace(s))) {
	case InputModeFraction, "":
		return InputModeFraction, nil
	case InputModeDecimal:
		return InputModeDecimal, nil
	}
	return "", fmt.Errorf("%w: unknown quantity input mode %q", domain.ErrInvalidRequest, s)
}

// Package-level compiled patterns, tried in this order
var (
	mixedNumberPattern = regexp.MustCompile(`^(\d+)\s+(\d+)/(\d+)$`)
	fractionPattern    = regexp.MustCompile(`^(\d+)/(\d+)$`)
	decimalPattern     = regexp.MustCompile(`^(\d+)\.(\d+)$`)
	integerPattern     = regexp.MustCompile(`^\d+$`)
)

// Bounds of the decimal input mode
var (
	MinDecimalQuantity = decimal.RequireFromString("0.01")
	MaxDecimalQuantity = decimal.RequireFromString("9999.99")
)

// maxDecimalDigits keeps 10^digits inside int64
const maxDecimalDigits = 18

// QuantityParser parses quantity strings in a single, fixed input mode
type QuantityParser struct {
	mode InputMode
}

// NewQuantityParser creates a parser for the given mode
func NewQuantityParser(mode InputMode) *QuantityParser {
	if mode != InputModeDecimal {
		mode = InputModeFraction
	}
	return &QuantityParser{mode: mode}
}

// Mode returns the parser's input mode
func (p *QuantityParser) Mode() InputMode {
	return p.mode
}

// Parse parses input according to the parser's mode
func (p *QuantityParser) Parse(input string) (domain.Quantity, error) {
	if p.mode == InputModeDecimal {
		d, err := ParseDecimalQuantity(input)
		if err != nil {
			return domain.Quantity{}, err
		}
		return QuantityFromDecimal(d)
	}
	return ParseQuantity(input)
}

// ParseQuantity parses "2", "1/2", "1 1/2", "0.5" or "1.5".
// Mixed numbers and fractions are returned as written, not normalized;
// decimals come back reduced with any overflow carried into Whole.
func ParseQuantity(input string) (domain.Quantity, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.Quantity{}, domain.ErrEmptyInput
	}

	if m := mixedNumberPattern.FindStringSubmatch(trimmed); m != nil {
		whole, num, denom, err := parseInts(input, m[1], m[2], m[3])
		if err != nil {
			return domain.Quantity{}, err
		}
		if denom == 0 {
			return domain.Quantity{}, fmt.Errorf("%w: %q", domain.ErrZeroDenominator, input)
		}
		return domain.NewQuantity(whole, num, denom), nil
	}

	if m := fractionPattern.FindStringSubmatch(trimmed); m != nil {
		num, denom, _, err := parseInts(input, m[1], m[2], "0")
		if err != nil {
			return domain.Quantity{}, err
		}
		if denom == 0 {
			return domain.Quantity{}, fmt.Errorf("%w: %q", domain.ErrZeroDenominator, input)
		}
		return domain.NewQuantity(0, num, denom), nil
	}

	if m := decimalPattern.FindStringSubmatch(trimmed); m != nil {
		if len(m[2]) > maxDecimalDigits {
			return domain.Quantity{}, fmt.Errorf("%w: too many decimal places in %q", domain.ErrInvalidFormat, input)
		}
		whole, num, _, err := parseInts(input, m[1], m[2], "0")
		if err != nil {
			return domain.Quantity{}, err
		}
		return decimalToQuantity(whole, num, len(m[2])), nil
	}

	if integerPattern.MatchString(trimmed) {
		whole, _, _, err := parseInts(input, trimmed, "0", "0")
		if err != nil {
			return domain.Quantity{}, err
		}
		return domain.WholeQuantity(whole), nil
	}

	return domain.Quantity{}, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, input)
}

// decimalToQuantity turns whole.digits into whole + num/10^places reduced
func decimalToQuantity(whole, num int64, places int) domain.Quantity {
	denom := int64(1)
	for i := 0; i < places; i++ {
		denom *= 10
	}

	if num == 0 {
		return domain.WholeQuantity(whole)
	}

	g := gcdInt64(num, denom)
	num, denom = num/g, denom/g

	if num >= denom {
		whole += num / denom
		num %= denom
	}
	return domain.NewQuantity(whole, num, denom)
}

// parseInts converts up to three digit strings, reporting overflow as a format error
func parseInts(input string, parts ...string) (int64, int64, int64, error) {
	var out [3]int64
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, input)
		}
		out[i] = n
	}
	return out[0], out[1], out[2], nil
}

// ParseDecimalQuantity parses the decimal-only API form ("2", "1.5", "0.75").
// Fraction syntax is rejected, as are values outside [0.01, 9999.99] or with
// more than 2 decimal places.
func ParseDecimalQuantity(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Zero, domain.ErrEmptyInput
	}
	if strings.Contains(trimmed, "/") {
		return decimal.Zero, domain.ErrFractionNotSupported
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q, expected a decimal number", domain.ErrInvalidFormat, input)
	}

	if err := ValidateDecimalQuantity(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateDecimalQuantity enforces the decimal input mode bounds
func ValidateDecimalQuantity(d decimal.Decimal) error {
	if d.LessThan(MinDecimalQuantity) {
		return fmt.Errorf("%w: must be at least %s", domain.ErrQuantityOutOfRange, MinDecimalQuantity)
	}
	if d.GreaterThan(MaxDecimalQuantity) {
		return fmt.Errorf("%w: must be less than 10000", domain.ErrQuantityOutOfRange)
	}
	if !d.Equal(d.Round(2)) {
		return fmt.Errorf("%w: at most 2 decimal places", domain.ErrQuantityOutOfRange)
	}
	return nil
}

// QuantityFromDecimal converts an exact decimal into a normalized Quantity
func QuantityFromDecimal(d decimal.Decimal) (domain.Quantity, error) {
	q, ok := domain.QuantityFromRat(d.Rat())
	if !ok {
		return domain.Quantity{}, fmt.Errorf("%w: %s", domain.ErrQuantityOutOfRange, d)
	}
	return q, nil
}

// QuantityToDecimal returns whole + num/denom as a float
func QuantityToDecimal(q domain.Quantity) float64 {
	return q.Float64()
}

func gcdInt64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
