package params

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	dependencyTag           = "dependson"
	usageErrorMessageFormat = "parameter $%s is declared as [%s]: %v"
)

// ErrBoolParameter reports a boolean parameter that is not declared as a switch.
var ErrBoolParameter = errors.New("boolean parameters must be declared as [switch]")

// UsageError describes a declaration that the runner refuses to load.
type UsageError struct {
	Name     string
	TypeName string
}

// Error returns the error string.
func (usageError *UsageError) Error() string {
	return fmt.Sprintf(usageErrorMessageFormat, usageError.Name, usageError.TypeName, ErrBoolParameter)
}

// Unwrap exposes ErrBoolParameter.
func (usageError *UsageError) Unwrap() error {
	return ErrBoolParameter
}

// ParseDeclarations scans a param block for declarations of the form
//
//	[Type] $Name = default # DependsOn: Other
//
// The default and the annotation are optional. Declarations are returned in
// order of appearance without de-duplication. The only error is a UsageError
// for a parameter typed [bool].
func ParseDeclarations(block string) ([]Declaration, Dependencies, error) {
	scanner := declarationScanner{text: block}
	declarations := []Declaration{}
	dependencies := Dependencies{}
	for {
		match, found := scanner.next()
		if !found {
			break
		}
		if strings.EqualFold(match.typeName, boolTypeName) {
			return nil, nil, &UsageError{Name: match.name, TypeName: match.typeName}
		}
		declaration := Declaration{
			Name:      match.name,
			TypeName:  match.typeName,
			Type:      MapType(match.typeName),
			DependsOn: match.dependsOn,
		}
		if match.hasDefault || declaration.Type == TypeBool {
			if value, ok := Coerce(match.rawDefault, declaration.Type); ok {
				declaration.Default = value
			}
		}
		if declaration.DependsOn != "" {
			dependencies[declaration.Name] = declaration.DependsOn
		}
		declarations = append(declarations, declaration)
	}
	return declarations, dependencies, nil
}

// Parse extracts the param block from script text and parses its declarations.
// A script without a param block has no declarations.
func Parse(scriptText string) ([]Declaration, Dependencies, error) {
	block, found := ExtractBlock(scriptText)
	if !found {
		return []Declaration{}, Dependencies{}, nil
	}
	return ParseDeclarations(block)
}

type declarationMatch struct {
	typeName   string
	name       string
	rawDefault string
	hasDefault bool
	dependsOn  string
}

type declarationScanner struct {
	text     string
	position int
}

// next returns the following declaration. Quoted strings and comments
// between declarations are skipped.
func (scanner *declarationScanner) next() (declarationMatch, bool) {
	text := scanner.text
	for scanner.position < len(text) {
		character := text[scanner.position]
		switch {
		case character == '\'' || character == '"':
			scanner.position = skipQuoted(text, scanner.position)
		case strings.HasPrefix(text[scanner.position:], blockCommentOn):
			end := strings.Index(text[scanner.position+len(blockCommentOn):], blockCommentOff)
			if end < 0 {
				scanner.position = len(text)
			} else {
				scanner.position += len(blockCommentOn) + end + len(blockCommentOff)
			}
		case character == '#':
			scanner.position = skipToLineEnd(text, scanner.position)
		case character == '[':
			if match, end, ok := scanner.matchAt(scanner.position); ok {
				scanner.position = end
				return match, true
			}
			scanner.position++
		default:
			scanner.position++
		}
	}
	return declarationMatch{}, false
}

// matchAt attempts a declaration starting at the opening bracket at start and
// returns the match with the index just past it.
func (scanner *declarationScanner) matchAt(start int) (declarationMatch, int, bool) {
	text := scanner.text
	position := skipWhitespace(text, start+1)
	typeName, position := readWord(text, position)
	if typeName == "" {
		return declarationMatch{}, 0, false
	}
	position = skipWhitespace(text, position)
	if position >= len(text) || text[position] != ']' {
		return declarationMatch{}, 0, false
	}
	position = skipWhitespace(text, position+1)
	if position >= len(text) || text[position] != '$' {
		return declarationMatch{}, 0, false
	}
	name, position := readWord(text, position+1)
	if name == "" {
		return declarationMatch{}, 0, false
	}

	match := declarationMatch{typeName: typeName, name: name}
	if rawDefault, end, ok := readDefault(text, position); ok {
		match.rawDefault = rawDefault
		match.hasDefault = true
		position = end
	}
	if dependsOn, end, ok := readDependency(text, position); ok {
		match.dependsOn = dependsOn
		position = end
	}
	return match, position, true
}

// readDefault reads "= value" after a parameter name. A quoted literal closed
// on the same line wins; otherwise the value runs up to a comma, closing
// parenthesis, line break or comment marker.
func readDefault(text string, position int) (string, int, bool) {
	position = skipWhitespace(text, position)
	if position >= len(text) || text[position] != '=' {
		return "", 0, false
	}
	position = skipWhitespace(text, position+1)
	if position >= len(text) {
		return "", 0, false
	}
	if quote := text[position]; quote == '\'' || quote == '"' {
		lineEnd := skipToLineEnd(text, position+1)
		if closing := strings.IndexByte(text[position+1:lineEnd], quote); closing >= 0 {
			valueEnd := position + 1 + closing
			return strings.TrimSpace(text[position+1 : valueEnd]), valueEnd + 1, true
		}
	}
	end := position
	for end < len(text) && !strings.ContainsRune(",\r\n)#", rune(text[end])) {
		end++
	}
	if end == position {
		return "", 0, false
	}
	return strings.TrimSpace(text[position:end]), end, true
}

// readDependency reads a trailing "# DependsOn: Name" comment, optionally
// preceded by the comma that separates declarations.
func readDependency(text string, position int) (string, int, bool) {
	position = skipHorizontalSpace(text, position)
	if position < len(text) && text[position] == ',' {
		position = skipHorizontalSpace(text, position+1)
	}
	if position >= len(text) || text[position] != '#' || strings.HasPrefix(text[position:], blockCommentOff) {
		return "", 0, false
	}
	lineEnd := skipToLineEnd(text, position)
	comment := strings.TrimSpace(text[position+1 : lineEnd])
	if len(comment) < len(dependencyTag) || !strings.EqualFold(comment[:len(dependencyTag)], dependencyTag) {
		return "", 0, false
	}
	remainder := strings.TrimLeft(comment[len(dependencyTag):], " \t")
	if !strings.HasPrefix(remainder, ":") {
		return "", 0, false
	}
	remainder = strings.TrimLeft(remainder[1:], " \t")
	remainder = strings.TrimPrefix(remainder, "$")
	referenced, _ := readWord(remainder, 0)
	if referenced == "" {
		return "", 0, false
	}
	return referenced, lineEnd, true
}

func skipHorizontalSpace(text string, position int) int {
	for position < len(text) && (text[position] == ' ' || text[position] == '\t') {
		position++
	}
	return position
}

// readWord reads a run of letters, digits and underscores.
func readWord(text string, position int) (string, int) {
	end := position
	for end < len(text) {
		character, size := utf8.DecodeRuneInString(text[end:])
		if character != '_' && !unicode.IsLetter(character) && !unicode.IsDigit(character) && !unicode.Is(unicode.Mn, character) {
			break
		}
		end += size
	}
	return text[position:end], end
}
