package nativemethod

import (
	"strings"

	"github.com/aledsdavies/pyscript/internal/object"
)

func strMethods(r object.Str) map[string]func([]object.Value, map[string]object.Value) (object.Value, error) {
	s := string(r)
	return map[string]func([]object.Value, map[string]object.Value) (object.Value, error){
		"find": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) == 0 {
				return nil, wrongArgs("find")
			}
			sub, _ := args[0].(object.Str)
			return object.Int(strings.Index(s, string(sub))), nil
		},
		"count": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) == 0 {
				return nil, wrongArgs("count")
			}
			sub, _ := args[0].(object.Str)
			return object.Int(strings.Count(s, string(sub))), nil
		},
		"replace": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) < 2 {
				return nil, wrongArgs("replace")
			}
			old, _ := args[0].(object.Str)
			new_, _ := args[1].(object.Str)
			n := -1
			if len(args) >= 3 {
				i, _ := asInt(args[2])
				n = int(i)
			}
			return object.Str(strings.Replace(s, string(old), string(new_), n)), nil
		},
		"split": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			maxsplit := -1
			if len(args) >= 2 {
				i, _ := asInt(args[1])
				maxsplit = int(i)
			}
			var sep string
			hasSep := len(args) >= 1 && args[0] != object.None && args[0] != nil
			if hasSep {
				sv, _ := args[0].(object.Str)
				sep = string(sv)
			}
			var parts []string
			if !hasSep {
				parts = strings.Fields(s)
				if maxsplit >= 0 && maxsplit < len(parts)-1 {
					rest := strings.Join(parts[maxsplit:], " ")
					parts = append(parts[:maxsplit], rest)
				}
			} else {
				parts = strings.SplitN(s, sep, maxOrNoLimit(maxsplit))
			}
			out := make([]object.Value, len(parts))
			for i, p := range parts {
				out[i] = object.Str(p)
			}
			return object.NewList(out), nil
		},
		"join": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("join")
			}
			elems, err := toValues(args[0])
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(elems))
			for i, e := range elems {
				es, ok := e.(object.Str)
				if !ok {
					return nil, object.NewTypeError("sequence item: expected str instance")
				}
				parts[i] = string(es)
			}
			return object.Str(strings.Join(parts, s)), nil
		},
		"upper": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			return object.Str(strings.ToUpper(s)), nil
		},
		"lower": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			return object.Str(strings.ToLower(s)), nil
		},
		"startswith": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			return strAffixCheck(s, args, strings.HasPrefix)
		},
		"endswith": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			return strAffixCheck(s, args, strings.HasSuffix)
		},
		"strip": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			return object.Str(strings.Trim(s, stripCutset(args))), nil
		},
		"lstrip": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			return object.Str(strings.TrimLeft(s, stripCutset(args))), nil
		},
		"rstrip": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			return object.Str(strings.TrimRight(s, stripCutset(args))), nil
		},
	}
}

func maxOrNoLimit(n int) int {
	if n < 0 {
		return -1
	}
	return n + 1
}

func stripCutset(args []object.Value) string {
	if len(args) == 0 || args[0] == object.None {
		return " \t\n\r\v\f"
	}
	s, _ := args[0].(object.Str)
	return string(s)
}

func strAffixCheck(s string, args []object.Value, check func(string, string) bool) (object.Value, error) {
	if len(args) == 0 {
		return nil, wrongArgs("startswith/endswith")
	}
	sub := sliceByArgs(s, args)
	switch p := args[0].(type) {
	case object.Str:
		return object.Bool(check(sub, string(p))), nil
	case *object.Tuple:
		for _, e := range p.Elems {
			es, ok := e.(object.Str)
			if ok && check(sub, string(es)) {
				return object.Bool(true), nil
			}
		}
		return object.Bool(false), nil
	default:
		return nil, object.NewTypeError("prefix/suffix must be str or tuple of str")
	}
}

func sliceByArgs(s string, args []object.Value) string {
	start, stop := 0, len(s)
	if len(args) >= 2 {
		i, _ := asInt(args[1])
		start = int(clampInsertIndex(i, len(s)))
	}
	if len(args) >= 3 {
		i, _ := asInt(args[2])
		stop = int(clampInsertIndex(i, len(s)))
	}
	if start > stop {
		return ""
	}
	return s[start:stop]
}
