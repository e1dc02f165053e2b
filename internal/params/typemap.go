package params

import "strings"

const (
	switchTypeName = "switch"
	boolTypeName   = "bool"
)

var declaredTypes = map[string]Type{
	"string":       TypeString,
	boolTypeName:   TypeBool,
	switchTypeName: TypeBool,
	"datetime":     TypeDateTime,
	"int":          TypeInt,
	"decimal":      TypeDecimal,
	"double":       TypeDouble,
	"float":        TypeFloat,
	"byte":         TypeByte,
	"char":         TypeChar,
	"long":         TypeLong,
}

// MapType maps a declared PowerShell type token to its semantic type.
// Unknown tokens map to TypeString.
func MapType(typeName string) Type {
	if mapped, known := declaredTypes[strings.ToLower(strings.TrimSpace(typeName))]; known {
		return mapped
	}
	return TypeString
}
