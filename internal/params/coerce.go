package params

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"
)

const booleanTrueLiteral = "true"

// dateLayouts supplements the layouts understood by cast with the
// month/day/year forms of the invariant culture.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04",
}

// Coerce converts raw default or argument text into a value of the target type.
// It never fails: text that cannot be converted yields no value. Bool targets
// always yield a value, false unless the text is "true" in any case.
func Coerce(raw string, target Type) (any, bool) {
	text := unquote(strings.TrimSpace(raw))
	if target == TypeBool {
		return strings.EqualFold(text, booleanTrueLiteral), true
	}
	if text == "" {
		return nil, false
	}
	switch target {
	case TypeDateTime:
		return parseDateTime(text)
	case TypeInt:
		number, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, false
		}
		return int32(number), true
	case TypeLong:
		number, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, false
		}
		return number, true
	case TypeByte:
		number, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return nil, false
		}
		return uint8(number), true
	case TypeDouble:
		if !isDecimalNotation(text) {
			return nil, false
		}
		number, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, false
		}
		return number, true
	case TypeFloat:
		if !isDecimalNotation(text) {
			return nil, false
		}
		number, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, false
		}
		return float32(number), true
	case TypeDecimal:
		decimal, ok := ParseDecimal(text)
		if !ok {
			return nil, false
		}
		return decimal, true
	case TypeChar:
		if utf8.RuneCountInString(text) != 1 {
			return nil, false
		}
		character, _ := utf8.DecodeRuneInString(text)
		return Char(character), true
	default:
		return text, true
	}
}

// unquote strips one matching pair of single or double quotes.
func unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	first, last := text[0], text[len(text)-1]
	if first == last && (first == '\'' || first == '"') {
		return text[1 : len(text)-1]
	}
	return text
}

func parseDateTime(text string) (any, bool) {
	if parsed, err := cast.StringToDate(text); err == nil {
		return parsed, true
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, true
		}
	}
	return nil, false
}

// isDecimalNotation rejects hexadecimal and underscore forms that strconv
// accepts but invariant number parsing does not.
func isDecimalNotation(text string) bool {
	lowered := strings.ToLower(strings.TrimLeft(text, "+-"))
	return !strings.HasPrefix(lowered, "0x") && !strings.Contains(lowered, "_")
}
