package formula

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// 词法单元类型
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent  // bare column/function name // 裸列名或函数名
	tokBraced // {Column Name} reference // 大括号列引用
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// lex 将表达式切分为词法单元
func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case unicode.IsSpace(c):
			i++

		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, pos: i})
			i++

		case c == '{':
			end := strings.IndexByte(input[i:], '}')
			if end < 0 {
				return nil, errors.Errorf("formula: unterminated column reference at position %d", i)
			}
			toks = append(toks, token{kind: tokBraced, text: input[i+1 : i+end], pos: i})
			i += end + 1

		case c == '"' || c == '\'':
			quote := byte(c)
			j := i + 1
			var sb strings.Builder
			for j < len(input) && input[j] != quote {
				if input[j] == '\\' && j+1 < len(input) {
					j++
				}
				sb.WriteByte(input[j])
				j++
			}
			if j >= len(input) {
				return nil, errors.Errorf("formula: unterminated string at position %d", i)
			}
			toks = append(toks, token{kind: tokString, text: sb.String(), pos: i})
			i = j + 1

		case unicode.IsDigit(c) || (c == '.' && i+1 < len(input) && unicode.IsDigit(rune(input[i+1]))):
			j := i
			for j < len(input) && (unicode.IsDigit(rune(input[j])) || input[j] == '.') {
				j++
			}
			f, err := strconv.ParseFloat(input[i:j], 64)
			if err != nil {
				return nil, errors.Errorf("formula: bad number %q at position %d", input[i:j], i)
			}
			toks = append(toks, token{kind: tokNumber, num: f, pos: i})
			i = j

		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(input) && (unicode.IsLetter(rune(input[j])) || unicode.IsDigit(rune(input[j])) || input[j] == '_') {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: input[i:j], pos: i})
			i = j

		case strings.ContainsRune("+-*/%<>=!&|", c):
			two := ""
			if i+1 < len(input) {
				two = input[i : i+2]
			}
			switch two {
			case "==", "!=", "<=", ">=", "&&", "||":
				toks = append(toks, token{kind: tokOp, text: two, pos: i})
				i += 2
			default:
				toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
				i++
			}

		default:
			return nil, errors.Errorf("formula: unexpected character %q at position %d", c, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(input)})
	return toks, nil
}

// 语法树节点
type node interface{}

type numberNode struct{ value float64 }
type stringNode struct{ value string }
type boolNode struct{ value bool }
type refNode struct{ name string }
type unaryNode struct {
	op    string
	child node
}
type binaryNode struct {
	op          string
	left, right node
}
type callNode struct {
	name string
	args []node
}

// parser 递归下降解析器
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, errors.Errorf("formula: expected %s at position %d", what, t.pos)
	}
	return t, nil
}

func parse(input string) (node, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, errors.Errorf("formula: unexpected input at position %d", t.pos)
	}
	return n, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && p.peek().text == "||" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && p.peek().text == "&&" {
		p.next()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp {
		switch t.text {
		case "==", "!=", "<", "<=", ">", ">=", "=":
			p.next()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			op := t.text
			if op == "=" {
				op = "=="
			}
			return binaryNode{op: op, left: left, right: right}, nil
		}
	}
	return left, nil
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: t.text, left: left, right: right}
	}
}

func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/" && t.text != "%") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: t.text, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if t := p.peek(); t.kind == tokOp && (t.text == "-" || t.text == "!") {
		p.next()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: t.text, child: child}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberNode{value: t.num}, nil

	case tokString:
		return stringNode{value: t.text}, nil

	case tokBraced:
		return refNode{name: t.text}, nil

	case tokLParen:
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return n, nil

	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return boolNode{value: true}, nil
		case "false":
			return boolNode{value: false}, nil
		case "null":
			return refNode{name: ""}, nil
		}
		// 标识符后跟左括号则为函数调用
		if p.peek().kind == tokLParen {
			p.next()
			var args []node
			if p.peek().kind != tokRParen {
				for {
					arg, err := p.parseOr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.peek().kind != tokComma {
						break
					}
					p.next()
				}
			}
			if _, err := p.expect(tokRParen, `")"`); err != nil {
				return nil, err
			}
			return callNode{name: strings.ToUpper(t.text), args: args}, nil
		}
		return refNode{name: t.text}, nil
	}
	return nil, errors.Errorf("formula: unexpected token at position %d", t.pos)
}
