package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aledsdavies/pyscript/internal/ast"
	"github.com/aledsdavies/pyscript/internal/object"
)

func evalFString(e *ast.FString, env *object.Environment, ctx *Ctx) (object.Value, error) {
	var sb strings.Builder
	for _, part := range e.Parts {
		if !part.IsExpr {
			sb.WriteString(part.Text)
			continue
		}
		v, err := evalExpr(part.Expr, env, ctx)
		if err != nil {
			return nil, err
		}
		out, err := applyFormatSpec(v, part.Spec)
		if err != nil {
			return nil, err
		}
		sb.WriteString(out)
	}
	return object.Str(sb.String()), nil
}

// formatSpec is the parsed form of the supported format mini-language:
// [[fill]align][sign][0][width][.precision][type].
type formatSpec struct {
	fill      byte
	align     byte // '<', '>', '^', '=', or 0 if unspecified
	sign      byte // '+', '-', ' ', or 0 for the default
	zeroPad   bool
	width     int
	precision int // -1 if unspecified
	typ       byte
}

func isAlignChar(b byte) bool { return b == '<' || b == '>' || b == '^' || b == '=' }

func parseFormatSpec(spec string) (formatSpec, error) {
	fs := formatSpec{precision: -1}
	i, n := 0, len(spec)

	if n >= 2 && isAlignChar(spec[1]) {
		fs.fill, fs.align = spec[0], spec[1]
		i = 2
	} else if n >= 1 && isAlignChar(spec[0]) {
		fs.align = spec[0]
		i = 1
	}

	if i < n && (spec[i] == '+' || spec[i] == '-' || spec[i] == ' ') {
		fs.sign = spec[i]
		i++
	}

	if i < n && spec[i] == '0' {
		fs.zeroPad = true
		i++
	}

	widthStart := i
	for i < n && spec[i] >= '0' && spec[i] <= '9' {
		i++
	}
	if i > widthStart {
		w, err := strconv.Atoi(spec[widthStart:i])
		if err != nil {
			return fs, object.NewTypeError("invalid format spec '" + spec + "'")
		}
		fs.width = w
	}

	if i < n && spec[i] == '.' {
		i++
		precStart := i
		for i < n && spec[i] >= '0' && spec[i] <= '9' {
			i++
		}
		p, err := strconv.Atoi(spec[precStart:i])
		if err != nil {
			return fs, object.NewTypeError("invalid format spec '" + spec + "'")
		}
		fs.precision = p
	}

	if i < n {
		t := spec[i]
		if t != 's' && t != 'd' && t != 'f' {
			return fs, object.NewTypeError(fmt.Sprintf("Unknown format code '%c' for object of type 'str'", t))
		}
		fs.typ = t
		i++
	}

	if i != n {
		return fs, object.NewTypeError("invalid format spec '" + spec + "'")
	}
	return fs, nil
}

func applyFormatSpec(v object.Value, spec string) (string, error) {
	if spec == "" {
		return v.Str(), nil
	}
	fs, err := parseFormatSpec(spec)
	if err != nil {
		return "", err
	}

	numeric := fs.typ == 'd' || fs.typ == 'f'
	var body string
	switch fs.typ {
	case 'd':
		iv, ok := asInt(v)
		if !ok {
			return "", object.NewTypeError(fmt.Sprintf("Unknown format code 'd' for object of type '%s'", object.TypeName(v)))
		}
		neg := iv < 0
		digits := strconv.FormatInt(iv, 10)
		if neg {
			digits = digits[1:]
		}
		body = signPrefix(fs.sign, neg) + digits
	case 'f':
		prec := fs.precision
		if prec < 0 {
			prec = 6
		}
		fv, ok := numericFloatValue(v)
		if !ok {
			return "", object.NewTypeError(fmt.Sprintf("Unknown format code 'f' for object of type '%s'", object.TypeName(v)))
		}
		neg := math.Signbit(fv)
		body = signPrefix(fs.sign, neg) + strconv.FormatFloat(math.Abs(fv), 'f', prec, 64)
	default:
		body = v.Str()
	}

	return padSpec(body, fs, numeric), nil
}

func signPrefix(sign byte, neg bool) string {
	if neg {
		return "-"
	}
	switch sign {
	case '+':
		return "+"
	case ' ':
		return " "
	default:
		return ""
	}
}

func numericFloatValue(v object.Value) (float64, bool) {
	switch x := v.(type) {
	case object.Int:
		return float64(x), true
	case object.Float:
		return float64(x), true
	case object.Bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func padSpec(body string, fs formatSpec, numeric bool) string {
	if len(body) >= fs.width {
		return body
	}
	fill := byte(' ')
	if fs.fill != 0 {
		fill = fs.fill
	}
	align := fs.align
	if align == 0 {
		if fs.zeroPad && numeric {
			align, fill = '=', '0'
		} else if numeric {
			align = '>'
		} else {
			align = '<'
		}
	}
	padLen := fs.width - len(body)
	padding := strings.Repeat(string(fill), padLen)
	switch align {
	case '<':
		return body + padding
	case '>':
		return padding + body
	case '^':
		left := padLen / 2
		right := padLen - left
		return strings.Repeat(string(fill), left) + body + strings.Repeat(string(fill), right)
	case '=':
		if len(body) > 0 && (body[0] == '+' || body[0] == '-' || body[0] == ' ') {
			return string(body[0]) + padding + body[1:]
		}
		return padding + body
	default:
		return body
	}
}
