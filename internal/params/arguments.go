package params

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateArgumentLayout formats DateTime values passed on the command line.
	DateArgumentLayout = "2006-01-02"

	flagPrefix        = "-"
	argumentSeparator = " "
	quoteCharacter    = '"'
	escapeCharacter   = '\\'
)

// Argument is a parameter name paired with a runtime value.
type Argument struct {
	Name  string
	Value any
}

// Arguments is an ordered sequence of parameter values. Setting a name that
// is already present replaces its value and keeps its position.
// The zero value is empty and ready to use.
type Arguments struct {
	entries []Argument
}

// Set assigns value to name.
func (arguments *Arguments) Set(name string, value any) {
	for index := range arguments.entries {
		if arguments.entries[index].Name == name {
			arguments.entries[index].Value = value
			return
		}
	}
	arguments.entries = append(arguments.entries, Argument{Name: name, Value: value})
}

// Get returns the value assigned to name.
func (arguments Arguments) Get(name string) (any, bool) {
	for _, entry := range arguments.entries {
		if entry.Name == name {
			return entry.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (arguments Arguments) Len() int {
	return len(arguments.entries)
}

// Entries returns a copy of the entries in insertion order.
func (arguments Arguments) Entries() []Argument {
	return append([]Argument(nil), arguments.entries...)
}

// Tokens returns the unquoted argv tokens for the entries. Switches set to
// false are omitted.
func (arguments Arguments) Tokens() []string {
	tokens := make([]string, 0, len(arguments.entries)*2)
	for _, entry := range arguments.entries {
		if flag, isBool := entry.Value.(bool); isBool {
			if flag {
				tokens = append(tokens, flagPrefix+entry.Name)
			}
			continue
		}
		tokens = append(tokens, flagPrefix+entry.Name, FormatValue(entry.Value))
	}
	return tokens
}

// String returns the serialized argument string.
func (arguments Arguments) String() string {
	return Serialize(arguments)
}

// Serialize renders arguments as a command line fragment. True switches
// become bare flags, false switches are omitted and every other value is
// passed as -Name "value".
func Serialize(arguments Arguments) string {
	parts := make([]string, 0, len(arguments.entries))
	for _, entry := range arguments.entries {
		if flag, isBool := entry.Value.(bool); isBool {
			if flag {
				parts = append(parts, flagPrefix+entry.Name)
			}
			continue
		}
		parts = append(parts, flagPrefix+entry.Name+argumentSeparator+QuoteArgument(FormatValue(entry.Value)))
	}
	return strings.Join(parts, argumentSeparator)
}

// ArgumentsFromDefaults builds arguments from the declarations that carry a
// default value, in declaration order.
func ArgumentsFromDefaults(declarations []Declaration) Arguments {
	var arguments Arguments
	for _, declaration := range declarations {
		if declaration.HasDefault() {
			arguments.Set(declaration.Name, declaration.Default)
		}
	}
	return arguments
}

// FormatValue renders a value the way it is passed to a script.
func FormatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case time.Time:
		return typed.Format(DateArgumentLayout)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

// QuoteArgument wraps text in double quotes, escaping embedded quotes and
// the backslashes that precede them so Windows argv splitting restores the
// original text.
func QuoteArgument(text string) string {
	var builder strings.Builder
	builder.Grow(len(text) + 2)
	builder.WriteByte(quoteCharacter)
	pendingBackslashes := 0
	for index := 0; index < len(text); index++ {
		character := text[index]
		switch character {
		case escapeCharacter:
			pendingBackslashes++
		case quoteCharacter:
			builder.WriteString(strings.Repeat(string(escapeCharacter), pendingBackslashes*2+1))
			builder.WriteByte(quoteCharacter)
			pendingBackslashes = 0
		default:
			builder.WriteString(strings.Repeat(string(escapeCharacter), pendingBackslashes))
			builder.WriteByte(character)
			pendingBackslashes = 0
		}
	}
	builder.WriteString(strings.Repeat(string(escapeCharacter), pendingBackslashes*2))
	builder.WriteByte(quoteCharacter)
	return builder.String()
}
