package scattering

import "fmt"

// FormulaError reports a molecular formula that could not be interpreted.
type FormulaError struct {
	Formula string
	Reason  string
}

func (e FormulaError) Error() string {
	return fmt.Sprintf("formula %q: %s", e.Formula, e.Reason)
}

// ParseFormula expands a molecular formula into element counts. Supported
// syntax: element symbols ([A-Z][a-z]?), optional integer multiplicities,
// and parenthesised groups with an optional trailing multiplier.
func ParseFormula(formula string) (map[string]int, error) {
	if formula == "" {
		return nil, FormulaError{Formula: formula, Reason: "empty formula"}
	}
	p := &formulaParser{src: formula}
	counts, err := p.group(false)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, FormulaError{Formula: formula, Reason: fmt.Sprintf("unexpected %q at offset %d", p.src[p.pos], p.pos)}
	}
	return counts, nil
}

type formulaParser struct {
	src string
	pos int
}

// group parses a run of elements and nested groups. When nested is true it
// stops at the matching close parenthesis.
func (p *formulaParser) group(nested bool) (map[string]int, error) {
	counts := make(map[string]int)
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		switch {
		case ch == ')':
			if !nested {
				return nil, FormulaError{Formula: p.src, Reason: "unbalanced close parenthesis"}
			}
			return counts, nil
		case ch == '(':
			p.pos++
			inner, err := p.group(true)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.src) || p.src[p.pos] != ')' {
				return nil, FormulaError{Formula: p.src, Reason: "missing close parenthesis"}
			}
			p.pos++
			mult := p.count()
			for symbol, n := range inner {
				counts[symbol] += n * mult
			}
		case ch >= 'A' && ch <= 'Z':
			symbol := string(ch)
			p.pos++
			if p.pos < len(p.src) && p.src[p.pos] >= 'a' && p.src[p.pos] <= 'z' {
				symbol += string(p.src[p.pos])
				p.pos++
			}
			counts[symbol] += p.count()
		default:
			return nil, FormulaError{Formula: p.src, Reason: fmt.Sprintf("unexpected %q at offset %d", ch, p.pos)}
		}
	}
	if nested {
		return nil, FormulaError{Formula: p.src, Reason: "missing close parenthesis"}
	}
	return counts, nil
}

// count parses an optional integer multiplicity, defaulting to 1.
func (p *formulaParser) count() int {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 1
	}
	n := 0
	for _, ch := range p.src[start:p.pos] {
		n = n*10 + int(ch-'0')
	}
	return n
}
