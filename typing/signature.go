package typing

import (
	"fmt"
	"strings"
)

// Signature is a parsed textual type signature: a dotted name, optional
// generic arguments and postfix modifiers.  Postfixes apply left-to-right
// from the innermost name outward: `int[]?` is a nullable array of int.
type Signature struct {
	Name    string
	Args    []*Signature
	Postfix []Postfix
}

// Postfix enumerates the postfix modifiers of a type signature.
type Postfix int

// Enumeration of postfix modifiers.
const (
	PostfixArray    Postfix = iota // `[]`
	PostfixSequence                // `~`
	PostfixNullable                // `?`
)

func (sig *Signature) String() string {
	sb := strings.Builder{}
	sb.WriteString(sig.Name)

	if len(sig.Args) > 0 {
		sb.WriteRune('<')
		for i, arg := range sig.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(arg.String())
		}
		sb.WriteRune('>')
	}

	for _, pf := range sig.Postfix {
		switch pf {
		case PostfixArray:
			sb.WriteString("[]")
		case PostfixSequence:
			sb.WriteRune('~')
		case PostfixNullable:
			sb.WriteRune('?')
		}
	}

	return sb.String()
}

// ParseSignature parses a textual type signature.
func ParseSignature(text string) (*Signature, error) {
	p := &sigParser{text: text}
	sig, err := p.parseSig()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos < len(p.text) {
		return nil, p.errorf("unexpected `%c`", p.text[p.pos])
	}

	return sig, nil
}

// sigParser is a small recursive descent parser for type signatures.
type sigParser struct {
	text string
	pos  int
}

func (p *sigParser) errorf(msg string, args ...interface{}) error {
	return fmt.Errorf("invalid type signature `%s`: %s", p.text, fmt.Sprintf(msg, args...))
}

func (p *sigParser) skipSpace() {
	for p.pos < len(p.text) && (p.text[p.pos] == ' ' || p.text[p.pos] == '\t') {
		p.pos++
	}
}

func (p *sigParser) parseSig() (*Signature, error) {
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}

	sig := &Signature{Name: name}

	p.skipSpace()
	if p.pos < len(p.text) && p.text[p.pos] == '<' {
		p.pos++

		for {
			arg, err := p.parseSig()
			if err != nil {
				return nil, err
			}

			sig.Args = append(sig.Args, arg)

			p.skipSpace()
			if p.pos >= len(p.text) {
				return nil, p.errorf("unclosed generic argument list")
			}

			if p.text[p.pos] == ',' {
				p.pos++
				continue
			} else if p.text[p.pos] == '>' {
				p.pos++
				break
			}

			return nil, p.errorf("expected `,` or `>` but got `%c`", p.text[p.pos])
		}
	}

	for {
		p.skipSpace()
		if p.pos >= len(p.text) {
			break
		}

		switch p.text[p.pos] {
		case '[':
			if p.pos+1 >= len(p.text) || p.text[p.pos+1] != ']' {
				return nil, p.errorf("expected `]`")
			}

			sig.Postfix = append(sig.Postfix, PostfixArray)
			p.pos += 2
			continue
		case '~':
			sig.Postfix = append(sig.Postfix, PostfixSequence)
			p.pos++
			continue
		case '?':
			sig.Postfix = append(sig.Postfix, PostfixNullable)
			p.pos++
			continue
		}

		break
	}

	return sig, nil
}

func (p *sigParser) parseName() (string, error) {
	p.skipSpace()

	start := p.pos
	expectIdent := true
	for p.pos < len(p.text) {
		c := p.text[p.pos]

		if isIdentChar(c) {
			expectIdent = false
		} else if c == '.' && !expectIdent {
			expectIdent = true
		} else if c == '`' && !expectIdent {
			// arity suffixes are allowed on names written in full
		} else {
			break
		}

		p.pos++
	}

	if start == p.pos {
		if p.pos < len(p.text) {
			return "", p.errorf("expected a type name but got `%c`", p.text[p.pos])
		}

		return "", p.errorf("expected a type name")
	} else if expectIdent {
		return "", p.errorf("type name cannot end with `.`")
	}

	return p.text[start:p.pos], nil
}

func isIdentChar(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
