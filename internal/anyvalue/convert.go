package anyvalue

import (
	"fmt"
	"math"
)

// AsBool extracts a bool scalar
func (v AnyValue) AsBool() (bool, error) {
	if v.typ.Code != TypeBool {
		return false, fmt.Errorf("%w: %s is not bool", ErrTypeMismatch, v.typ.String())
	}
	return v.scalar.(bool), nil
}

// AsInt64 extracts any integer scalar as a signed 64-bit value
func (v AnyValue) AsInt64() (int64, error) {
	switch s := v.scalar.(type) {
	case int64:
		return s, nil
	case uint64:
		if s > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrTypeMismatch, s)
		}
		return int64(s), nil
	case float64:
		return int64(s), nil
	}
	return 0, fmt.Errorf("%w: %s is not numeric", ErrTypeMismatch, v.typ.String())
}

// AsUInt64 extracts any non-negative integer scalar as an unsigned value
func (v AnyValue) AsUInt64() (uint64, error) {
	switch s := v.scalar.(type) {
	case uint64:
		return s, nil
	case int64:
		if s < 0 {
			return 0, fmt.Errorf("%w: negative value %d", ErrTypeMismatch, s)
		}
		return uint64(s), nil
	case float64:
		if s < 0 {
			return 0, fmt.Errorf("%w: negative value %g", ErrTypeMismatch, s)
		}
		return uint64(s), nil
	}
	return 0, fmt.Errorf("%w: %s is not numeric", ErrTypeMismatch, v.typ.String())
}

// AsFloat64 extracts any numeric scalar as a float
func (v AnyValue) AsFloat64() (float64, error) {
	switch s := v.scalar.(type) {
	case float64:
		return s, nil
	case int64:
		return float64(s), nil
	case uint64:
		return float64(s), nil
	}
	return 0, fmt.Errorf("%w: %s is not numeric", ErrTypeMismatch, v.typ.String())
}

// AsString extracts a string scalar
func (v AnyValue) AsString() (string, error) {
	if v.typ.Code != TypeString {
		return "", fmt.Errorf("%w: %s is not string", ErrTypeMismatch, v.typ.String())
	}
	return v.scalar.(string), nil
}

// ConvertTo converts the value to the target type. Identical types copy;
// numeric scalars convert between each other with range checks; everything
// else requires structural type equality.
func (v AnyValue) ConvertTo(target AnyType) (AnyValue, error) {
	if v.typ.Equals(target) {
		out := v.Copy()
		out.typ = target
		return out, nil
	}
	if v.typ.Code.IsScalar() && target.Code.IsScalar() {
		return convertScalar(v, target)
	}
	return Empty(), fmt.Errorf("%w: cannot convert %s to %s",
		ErrTypeMismatch, v.typ.String(), target.String())
}

func convertScalar(v AnyValue, target AnyType) (AnyValue, error) {
	fail := func() (AnyValue, error) {
		return Empty(), fmt.Errorf("%w: cannot convert %s to %s",
			ErrTypeMismatch, v.typ.String(), target.String())
	}
	switch {
	case target.Code == TypeBool:
		if v.typ.Code != TypeBool {
			return fail()
		}
		return FromBool(v.scalar.(bool)), nil
	case target.Code == TypeString:
		if v.typ.Code != TypeString {
			return fail()
		}
		return FromString(v.scalar.(string)), nil
	case target.Code.IsSigned():
		i, err := v.AsInt64()
		if err != nil {
			return fail()
		}
		if !fitsSigned(i, target.Code) {
			return Empty(), fmt.Errorf("%w: %d out of range for %s",
				ErrTypeMismatch, i, target.String())
		}
		return FromInt64(target, i), nil
	case target.Code.IsInteger():
		u, err := v.AsUInt64()
		if err != nil {
			return fail()
		}
		if !fitsUnsigned(u, target.Code) {
			return Empty(), fmt.Errorf("%w: %d out of range for %s",
				ErrTypeMismatch, u, target.String())
		}
		return FromUInt64(target, u), nil
	case target.Code.IsFloat():
		f, err := v.AsFloat64()
		if err != nil {
			return fail()
		}
		return FromFloat64(target, f), nil
	}
	return fail()
}

func fitsSigned(i int64, code TypeCode) bool {
	switch code {
	case TypeInt8:
		return i >= math.MinInt8 && i <= math.MaxInt8
	case TypeInt16:
		return i >= math.MinInt16 && i <= math.MaxInt16
	case TypeInt32:
		return i >= math.MinInt32 && i <= math.MaxInt32
	}
	return true
}

func fitsUnsigned(u uint64, code TypeCode) bool {
	switch code {
	case TypeUInt8:
		return u <= math.MaxUint8
	case TypeUInt16:
		return u <= math.MaxUint16
	case TypeUInt32:
		return u <= math.MaxUint32
	}
	return true
}

// Increment adds delta to an integer or float scalar in place
func (v *AnyValue) Increment(delta int64) error {
	switch s := v.scalar.(type) {
	case int64:
		v.scalar = s + delta
	case uint64:
		if delta < 0 && uint64(-delta) > s {
			return fmt.Errorf("%w: decrement below zero on %s", ErrTypeMismatch, v.typ.String())
		}
		v.scalar = uint64(int64(s) + delta)
	case float64:
		v.scalar = s + float64(delta)
	default:
		return fmt.Errorf("%w: %s is not numeric", ErrTypeMismatch, v.typ.String())
	}
	return nil
}

// Compare orders two numeric scalars: -1, 0 or 1. Strings compare
// lexicographically. Mixed numeric kinds compare as floats.
func Compare(a, b AnyValue) (int, error) {
	if a.typ.Code == TypeString && b.typ.Code == TypeString {
		as := a.scalar.(string)
		bs := b.scalar.(string)
		switch {
		case as < bs:
			return -1, nil
		case as > bs:
			return 1, nil
		}
		return 0, nil
	}
	af, err := a.AsFloat64()
	if err != nil {
		return 0, err
	}
	bf, err := b.AsFloat64()
	if err != nil {
		return 0, err
	}
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	}
	return 0, nil
}
