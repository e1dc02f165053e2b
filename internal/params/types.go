// Package params extracts parameter declarations from PowerShell script text,
// coerces their defaults into typed values and serializes user-supplied
// values back into an argument string.
package params

import (
	"math/big"
	"strings"
)

// Type is the semantic value type of a declared parameter.
type Type int

const (
	TypeString Type = iota
	TypeBool
	TypeDateTime
	TypeInt
	TypeDecimal
	TypeDouble
	TypeFloat
	TypeByte
	TypeChar
	TypeLong
)

var typeNames = [...]string{
	TypeString:   "string",
	TypeBool:     "bool",
	TypeDateTime: "datetime",
	TypeInt:      "int",
	TypeDecimal:  "decimal",
	TypeDouble:   "double",
	TypeFloat:    "float",
	TypeByte:     "byte",
	TypeChar:     "char",
	TypeLong:     "long",
}

// String returns the lower-case name of the type.
func (valueType Type) String() string {
	if valueType < 0 || int(valueType) >= len(typeNames) {
		return typeNames[TypeString]
	}
	return typeNames[valueType]
}

// MarshalText renders the type name for JSON, XML and YAML encoders.
func (valueType Type) MarshalText() ([]byte, error) {
	return []byte(valueType.String()), nil
}

// IsNumeric reports whether values of the type are numbers.
func (valueType Type) IsNumeric() bool {
	switch valueType {
	case TypeInt, TypeDecimal, TypeDouble, TypeFloat, TypeByte, TypeLong:
		return true
	default:
		return false
	}
}

// Declaration is a single parameter declared by a script.
type Declaration struct {
	Name      string `json:"name" yaml:"name" xml:"name"`
	TypeName  string `json:"typeName" yaml:"typeName" xml:"typeName"`
	Type      Type   `json:"type" yaml:"type" xml:"type"`
	Default   any    `json:"default,omitempty" yaml:"default,omitempty" xml:"-"`
	DependsOn string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty" xml:"dependsOn,omitempty"`
}

// HasDefault reports whether a default value was recognised.
func (declaration Declaration) HasDefault() bool {
	return declaration.Default != nil
}

// Dependencies maps a parameter name to the name of the parameter it depends on.
// Referenced names are not guaranteed to exist.
type Dependencies map[string]string

// Decimal is an exact decimal number that keeps its literal spelling.
type Decimal struct {
	literal string
	value   *big.Rat
}

// ParseDecimal parses an invariant-culture decimal literal.
func ParseDecimal(text string) (Decimal, bool) {
	trimmed := strings.TrimSpace(text)
	if !isPlainDecimal(trimmed) {
		return Decimal{}, false
	}
	value, ok := new(big.Rat).SetString(trimmed)
	if !ok {
		return Decimal{}, false
	}
	return Decimal{literal: strings.TrimPrefix(trimmed, "+"), value: value}, true
}

// isPlainDecimal accepts an optional sign, digits and at most one decimal
// point with at least one digit overall. Base prefixes, exponents, fractions
// and digit separators are rejected.
func isPlainDecimal(text string) bool {
	digits := text
	if strings.HasPrefix(digits, "+") || strings.HasPrefix(digits, "-") {
		digits = digits[1:]
	}
	seenDigit, seenPoint := false, false
	for index := 0; index < len(digits); index++ {
		character := digits[index]
		switch {
		case character >= '0' && character <= '9':
			seenDigit = true
		case character == '.' && !seenPoint:
			seenPoint = true
		default:
			return false
		}
	}
	return seenDigit
}

// DecimalFromFloat builds a decimal rounded to the given number of places.
func DecimalFromFloat(number float64, places int) Decimal {
	value := new(big.Rat).SetFloat64(number)
	if value == nil {
		value = new(big.Rat)
	}
	return Decimal{literal: value.FloatString(places), value: value}
}

// String returns the literal form of the decimal.
func (decimal Decimal) String() string {
	if decimal.literal == "" {
		return "0"
	}
	return decimal.literal
}

// Float64 returns the nearest float64 value.
func (decimal Decimal) Float64() float64 {
	if decimal.value == nil {
		return 0
	}
	number, _ := decimal.value.Float64()
	return number
}

// IsZero reports whether the decimal equals zero.
func (decimal Decimal) IsZero() bool {
	return decimal.value == nil || decimal.value.Sign() == 0
}

// MarshalText renders the literal form.
func (decimal Decimal) MarshalText() ([]byte, error) {
	return []byte(decimal.String()), nil
}

// Char is a single character value.
type Char rune

// String returns the character as text.
func (character Char) String() string {
	return string(rune(character))
}

// MarshalText renders the character as text.
func (character Char) MarshalText() ([]byte, error) {
	return []byte(character.String()), nil
}
