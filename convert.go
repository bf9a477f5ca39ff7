package qframe

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// toDecimal reads a driver value as an exact number. Drivers report
// DECIMAL and NUMERIC columns as text, so strings and byte slices are parsed.
func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int8:
		return decimal.NewFromInt(int64(x)), nil
	case int16:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(x)), 0), nil
	case uint8:
		return decimal.NewFromInt(int64(x)), nil
	case uint16:
		return decimal.NewFromInt(int64(x)), nil
	case uint32:
		return decimal.NewFromInt(int64(x)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case bool:
		if x {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case []byte:
		return parseDecimal(string(x))
	case string:
		return parseDecimal(x)
	case nil:
		return decimal.Decimal{}, fmt.Errorf("%w: NULL", ErrNotNumeric)
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return d, nil
}

func toInt(v any) (int64, error) {
	d, err := toDecimal(v)
	if err != nil {
		return 0, err
	}
	return d.IntPart(), nil
}

func toFloat(v any) (float64, error) {
	// Keep float precision when the driver already returned one.
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	}
	d, err := toDecimal(v)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

func toRounded(v any) (int64, error) {
	d, err := toDecimal(v)
	if err != nil {
		return 0, err
	}
	return d.RoundBank(0).IntPart(), nil
}
