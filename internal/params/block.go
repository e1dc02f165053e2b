package params

import (
	"strings"
	"unicode"
)

const (
	paramKeyword    = "param"
	byteOrderMark   = "\ufeff"
	blockCommentOn  = "<#"
	blockCommentOff = "#>"
)

// ExtractBlock returns the text between the parentheses of the param block
// that opens the script. Only whitespace may precede the param keyword.
// The closing parenthesis must be balanced and followed by the end of the
// line or the end of the text.
func ExtractBlock(scriptText string) (string, bool) {
	text := strings.TrimPrefix(scriptText, byteOrderMark)
	position := skipWhitespace(text, 0)
	if !hasKeywordAt(text, position, paramKeyword) {
		return "", false
	}
	position = skipWhitespace(text, position+len(paramKeyword))
	if position >= len(text) || text[position] != '(' {
		return "", false
	}
	bodyStart := position + 1
	closing, found := findClosingParenthesis(text, bodyStart)
	if !found || !endsLine(text, closing+1) {
		return "", false
	}
	return text[bodyStart:closing], true
}

func skipWhitespace(text string, position int) int {
	for position < len(text) && isSpace(text[position]) {
		position++
	}
	return position
}

func isSpace(character byte) bool {
	return character == ' ' || character == '\t' || character == '\n' || character == '\r' || character == '\f' || character == '\v'
}

func hasKeywordAt(text string, position int, keyword string) bool {
	end := position + len(keyword)
	if end > len(text) || !strings.EqualFold(text[position:end], keyword) {
		return false
	}
	return end == len(text) || !isIdentifierByte(text[end])
}

func isIdentifierByte(character byte) bool {
	return character == '_' || character >= 0x80 || unicode.IsLetter(rune(character)) || unicode.IsDigit(rune(character))
}

// findClosingParenthesis scans from start, one past an opening parenthesis,
// and returns the index of the parenthesis that balances it. Quoted strings
// and comments do not affect the depth.
func findClosingParenthesis(text string, start int) (int, bool) {
	depth := 1
	position := start
	for position < len(text) {
		switch character := text[position]; {
		case character == '\'' || character == '"':
			position = skipQuoted(text, position)
			continue
		case strings.HasPrefix(text[position:], blockCommentOn):
			end := strings.Index(text[position+len(blockCommentOn):], blockCommentOff)
			if end < 0 {
				return 0, false
			}
			position += len(blockCommentOn) + end + len(blockCommentOff)
			continue
		case character == '#':
			position = skipToLineEnd(text, position)
			continue
		case character == '(':
			depth++
		case character == ')':
			depth--
			if depth == 0 {
				return position, true
			}
		}
		position++
	}
	return 0, false
}

// skipQuoted returns the index after the quote that closes the string
// starting at position. A doubled quote inside the string is literal.
// An unterminated string consumes the rest of the line.
func skipQuoted(text string, position int) int {
	quote := text[position]
	position++
	for position < len(text) {
		character := text[position]
		if character == '\n' {
			return position
		}
		if character == '`' {
			position += 2
			continue
		}
		if character == quote {
			if position+1 < len(text) && text[position+1] == quote {
				position += 2
				continue
			}
			return position + 1
		}
		position++
	}
	return position
}

func skipToLineEnd(text string, position int) int {
	for position < len(text) && text[position] != '\n' {
		position++
	}
	return position
}

// endsLine reports whether only spaces or tabs separate position from a
// line break or the end of the text.
func endsLine(text string, position int) bool {
	for position < len(text) {
		switch text[position] {
		case ' ', '\t':
			position++
		case '\r', '\n':
			return true
		default:
			return false
		}
	}
	return true
}
