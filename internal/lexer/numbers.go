package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

func parseFloat(lexeme string) float64 {
	s := lexeme
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseIntBase10(lexeme string) int64 {
	v, _ := strconv.ParseInt(lexeme, 10, 64)
	return v
}

func parseIntRadix(digits string, base int) (int64, error) {
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid digit for base %d in numeric literal", base)
	}
	return v, nil
}
