package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// Name is a PDF name operand such as /Im1, stored without the leading slash.
type Name string

// Array is a PDF array operand.
type Array []any

// Dict is a PDF dictionary operand keyed by name.
type Dict map[string]any

// Operation represents a single content stream operation consisting of an
// operator and its operands. Operands are the values that precede the
// operator: int64, float64, string, Name, Array, Dict, bool or nil.
type Operation struct {
	Operator string // The operator (e.g., "Do", "cm", "q")
	Operands []any  // The operands
}

// Parser parses PDF content streams into a sequence of operations.
// A Parser is not safe for concurrent use.
type Parser struct {
	data  []byte
	pos   int
	ops   []Operation
	stack []any
}

// NewParser creates a new content stream parser for the given data.
func NewParser(data []byte) *Parser {
	return &Parser{
		data: data,
		ops:  make([]Operation, 0),
	}
}

// Parse parses the content stream and returns all operations in order.
// Operands left on the stack at the end of the stream are discarded.
func (p *Parser) Parse() ([]Operation, error) {
	for p.pos < len(p.data) {
		p.skipWhitespaceAndComments()

		if p.pos >= len(p.data) {
			break
		}

		if err := p.parseNext(); err != nil {
			return nil, err
		}
	}

	p.stack = nil
	return p.ops, nil
}

// Parse is a convenience wrapper around NewParser(data).Parse().
func Parse(data []byte) ([]Operation, error) {
	return NewParser(data).Parse()
}

// parseNext parses the next token, which is either an operand (pushed onto the
// stack) or an operator (which consumes the operand stack and creates an Operation).
func (p *Parser) parseNext() error {
	start := p.pos
	c := p.data[p.pos]

	if isOperatorStart(c) {
		return p.parseOperator()
	}

	operand, err := p.parseOperand()
	if err != nil {
		return fmt.Errorf("at position %d: %w", start, err)
	}

	p.stack = append(p.stack, operand)
	return nil
}

// parseOperator reads a keyword. The keywords true, false and null are
// operands; anything else is an operator that takes the current stack.
func (p *Parser) parseOperator() error {
	start := p.pos
	keyword := p.readKeyword()
	if keyword == "" {
		return fmt.Errorf("empty operator at position %d", start)
	}

	switch keyword {
	case "true":
		p.stack = append(p.stack, true)
		return nil
	case "false":
		p.stack = append(p.stack, false)
		return nil
	case "null":
		p.stack = append(p.stack, nil)
		return nil
	case "BI":
		return p.parseInlineImage(start)
	}

	p.emit(keyword, p.stack)
	return nil
}

// emit appends an operation with a copy of operands and clears the stack.
func (p *Parser) emit(operator string, operands []any) {
	operation := Operation{
		Operator: operator,
		Operands: make([]any, len(operands)),
	}
	copy(operation.Operands, operands)

	p.ops = append(p.ops, operation)
	p.stack = p.stack[:0]
}

// readKeyword reads a run of regular characters.
func (p *Parser) readKeyword() string {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		p.pos++
	}
	return string(p.data[start:p.pos])
}

// parseInlineImage handles BI <key value pairs> ID <binary data> EI. The
// image parameters become the single Dict operand of a "BI" operation and
// the binary data is skipped.
func (p *Parser) parseInlineImage(start int) error {
	params := make(Dict)

	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return fmt.Errorf("inline image at position %d: missing ID", start)
		}

		if p.data[p.pos] != '/' {
			if keyword := p.readKeyword(); keyword == "ID" {
				break
			}
			return fmt.Errorf("inline image at position %d: expected parameter name", start)
		}

		key := p.parseName()
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return fmt.Errorf("inline image at position %d: missing value for /%s", start, key)
		}

		var value any
		if isOperatorStart(p.data[p.pos]) {
			keyword := p.readKeyword()
			switch keyword {
			case "true":
				value = true
			case "false":
				value = false
			case "null":
				value = nil
			default:
				return fmt.Errorf("inline image at position %d: unexpected keyword %q", start, keyword)
			}
		} else {
			v, err := p.parseOperand()
			if err != nil {
				return fmt.Errorf("inline image at position %d: %w", start, err)
			}
			value = v
		}
		params[string(key)] = value
	}

	// A single whitespace byte separates ID from the data.
	if p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}

	end := p.findInlineImageEnd()
	if end < 0 {
		return fmt.Errorf("inline image at position %d: missing EI", start)
	}
	p.pos = end

	p.emit("BI", []any{params})
	return nil
}

// findInlineImageEnd returns the position just past the EI keyword that ends
// inline image data, or -1. EI must be preceded by whitespace (or sit at the
// start of the data) and followed by whitespace, a delimiter or the end of
// the stream.
func (p *Parser) findInlineImageEnd() int {
	for i := p.pos; i+1 < len(p.data); i++ {
		if p.data[i] != 'E' || p.data[i+1] != 'I' {
			continue
		}
		if i > p.pos && !isWhitespace(p.data[i-1]) {
			continue
		}
		after := i + 2
		if after == len(p.data) || isWhitespace(p.data[after]) || isDelimiter(p.data[after]) {
			return after
		}
	}
	return -1
}

// parseOperand parses a single operand, which can be a number, string, name,
// array, dictionary, boolean, or null.
func (p *Parser) parseOperand() (any, error) {
	p.skipWhitespaceAndComments()

	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("unexpected end of stream")
	}

	c := p.data[p.pos]

	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '(':
		return p.parseString()
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString()
	case c == '/':
		return p.parseName(), nil
	case c == '[':
		return p.parseArray()
	case isOperatorStart(c):
		start := p.pos
		switch keyword := p.readKeyword(); keyword {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		default:
			p.pos = start
			return nil, fmt.Errorf("unexpected keyword %q in operand", keyword)
		}
	}

	return nil, fmt.Errorf("unexpected character at position %d: %c", p.pos, c)
}

// parseNumber parses an integer (int64) or real (float64) operand.
func (p *Parser) parseNumber() (any, error) {
	start := p.pos
	hasDecimal := false

	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDecimal {
			hasDecimal = true
			p.pos++
		} else {
			break
		}
	}

	numStr := string(p.data[start:p.pos])
	if numStr == "-" || numStr == "+" || numStr == "." || numStr == "-." || numStr == "+." {
		return nil, fmt.Errorf("invalid number %q", numStr)
	}

	if hasDecimal {
		val, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number %q: %w", numStr, err)
		}
		return val, nil
	}

	val, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", numStr, err)
	}
	return val, nil
}

// parseString parses a literal string (...) with escape sequence handling.
func (p *Parser) parseString() (any, error) {
	p.pos++ // skip '('

	var result bytes.Buffer
	depth := 1

	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]

		switch {
		case c == '\\' && p.pos+1 < len(p.data):
			p.pos++
			p.readEscape(&result)
		case c == '(':
			depth++
			result.WriteByte(c)
			p.pos++
		case c == ')':
			depth--
			if depth > 0 {
				result.WriteByte(c)
			}
			p.pos++
		default:
			result.WriteByte(c)
			p.pos++
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unclosed string")
	}

	return result.String(), nil
}

// readEscape decodes the escape sequence whose first byte is at p.pos.
func (p *Parser) readEscape(result *bytes.Buffer) {
	next := p.data[p.pos]
	p.pos++

	switch next {
	case 'n':
		result.WriteByte('\n')
	case 'r':
		result.WriteByte('\r')
	case 't':
		result.WriteByte('\t')
	case 'b':
		result.WriteByte('\b')
	case 'f':
		result.WriteByte('\f')
	case '\r':
		// Line continuation
		if p.pos < len(p.data) && p.data[p.pos] == '\n' {
			p.pos++
		}
	case '\n':
		// Line continuation
	case '0', '1', '2', '3', '4', '5', '6', '7':
		octalVal := int(next - '0')
		for i := 0; i < 2 && p.pos < len(p.data); i++ {
			digit := p.data[p.pos]
			if digit < '0' || digit > '7' {
				break
			}
			octalVal = octalVal*8 + int(digit-'0')
			p.pos++
		}
		result.WriteByte(byte(octalVal & 0xFF))
	default:
		// (, ), \ and unknown escapes drop the backslash
		result.WriteByte(next)
	}
}

// parseHexString parses a hexadecimal string <...>. An odd final digit is
// padded with 0.
func (p *Parser) parseHexString() (any, error) {
	p.pos++ // skip '<'

	var result bytes.Buffer
	var pending byte
	havePending := false

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++

		if c == '>' {
			if havePending {
				result.WriteByte(pending << 4)
			}
			return result.String(), nil
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit: %c", c)
		}

		if havePending {
			result.WriteByte(pending<<4 | hexValue(c))
			havePending = false
		} else {
			pending = hexValue(c)
			havePending = true
		}
	}

	return nil, fmt.Errorf("unclosed hex string")
}

// parseName parses a name /Name with # escape handling.
func (p *Parser) parseName() Name {
	p.pos++ // skip '/'

	var result bytes.Buffer

	for p.pos < len(p.data) {
		c := p.data[p.pos]

		if isWhitespace(c) || isDelimiter(c) {
			break
		}

		if c == '#' && p.pos+2 < len(p.data) &&
			isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			result.WriteByte(hexValue(p.data[p.pos+1])<<4 | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}

		result.WriteByte(c)
		p.pos++
	}

	return Name(result.String())
}

// parseArray parses an array [...] of operands.
func (p *Parser) parseArray() (any, error) {
	p.pos++ // skip '['

	arr := Array{}

	for {
		p.skipWhitespaceAndComments()

		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}

		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}

		obj, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		arr = append(arr, obj)
	}
}

// parseDict parses a dictionary <<...>>.
func (p *Parser) parseDict() (any, error) {
	p.pos += 2 // skip '<<'

	dict := make(Dict)

	for {
		p.skipWhitespaceAndComments()

		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed dictionary")
		}

		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}

		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name")
		}
		key := p.parseName()

		value, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		dict[string(key)] = value
	}
}

// skipWhitespaceAndComments advances past PDF whitespace and % comments.
func (p *Parser) skipWhitespaceAndComments() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case isWhitespace(c):
			p.pos++
		case c == '%':
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
		default:
			return
		}
	}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

// isLetter reports whether c is an ASCII letter.
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isOperatorStart reports whether c can begin a keyword. The text operators
// ' and " are the only keywords that do not start with a letter.
func isOperatorStart(c byte) bool {
	return isLetter(c) || c == '\'' || c == '"'
}

// isDelimiter reports whether c is a PDF delimiter character.
func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

// isHexDigit reports whether c is a hexadecimal digit.
func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// hexValue returns the numeric value of a hexadecimal digit.
func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
