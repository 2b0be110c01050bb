package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths. Layout works in CSS pixels,
// the unit colwidth is stored in; renderers convert at their boundary.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPX               // CSS pixels (96 per inch)
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96
	MmToPx = 96 / 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// mm converts to millimeters; ok is false for unit-less values.
func (l Length) mm() (float64, bool) {
	switch l.Unit {
	case UnitPX:
		return l.Value * PxToMm, true
	case UnitMM:
		return l.Value, true
	case UnitCM:
		return l.Value * 10, true
	case UnitIN:
		return l.Value * 25.4, true
	case UnitPT:
		return l.Value * PtToMm, true
	}
	return 0, false
}

// To converts this length to target unit. Unit-less values are returned as-is.
func (l Length) To(target Unit) float64 {
	mm, ok := l.mm()
	if !ok {
		return l.Value
	}
	switch target {
	case UnitPX:
		return mm * MmToPx
	case UnitCM:
		return mm / 10
	case UnitIN:
		return mm / 25.4
	case UnitPT:
		return mm * MmToPt
	default:
		return mm
	}
}

func (l Length) ToPX() float64 { return l.To(UnitPX) }
func (l Length) ToMM() float64 { return l.To(UnitMM) }

// ParseRawLengthStr parses a length string preserving its unit.
// A bare number is read as pixels.
func ParseRawLengthStr(value string) Length {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{Unit: UnitNone}
	}
	unit := UnitPX
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec is either a factor of the font size (1.4) or an absolute length (18px).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight reads "1.4" as a factor and anything with a unit as absolute.
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.TrimSpace(value)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l := ParseRawLengthStr(v)
	if l.Unit == UnitNone || l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Resolve computes the absolute line height in target unit using the given fontSize.
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize.To(target) * s.Factor
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		return fontSize.To(target) * 1.4
	}
}
