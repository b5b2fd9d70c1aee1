package contentstream

// Float converts a numeric operand to float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Floats converts every operand to float64. It reports false if any operand
// is not a number.
func (op Operation) Floats() ([]float64, bool) {
	values := make([]float64, len(op.Operands))
	for i, operand := range op.Operands {
		f, ok := Float(operand)
		if !ok {
			return nil, false
		}
		values[i] = f
	}
	return values, true
}

// NameAt returns operand i when it is a name.
func (op Operation) NameAt(i int) (Name, bool) {
	if i < 0 || i >= len(op.Operands) {
		return "", false
	}
	name, ok := op.Operands[i].(Name)
	return name, ok
}

// Bool returns the boolean stored under key, with false for missing or
// non-boolean values.
func (d Dict) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Number returns the numeric value stored under key.
func (d Dict) Number(key string) (float64, bool) {
	return Float(d[key])
}
