package dsl

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// unitSuffixes mirrors the teacher's engineering-notation unit map.
var unitSuffixes = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"meg": 1e6,
	"M":   1e6,
	"k":   1e3,
	"K":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?$`)

// ParseValue parses an engineering-notation number such as "4.7k" or
// "100n" into its float64 value.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	m := valueRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	if m[2] != "" {
		if strings.ContainsAny(m[1], "eE") {
			num *= unitSuffixes[m[2]]
		} else {
			// Apply the suffix as a decimal exponent so "100n" parses to
			// the same float64 as the literal 100e-9.
			exp := int(math.Round(math.Log10(unitSuffixes[m[2]])))
			num, err = strconv.ParseFloat(fmt.Sprintf("%se%d", m[1], exp), 64)
			if err != nil {
				return 0, err
			}
		}
	}
	return num, nil
}

// params parses a sequence of key=value tokens into a map, lower-casing
// keys. Values are left as strings; callers parse them as needed.
func params(tokens []string) map[string]string {
	p := make(map[string]string, len(tokens))
	for _, t := range tokens {
		kv := strings.SplitN(t, "=", 2)
		if len(kv) != 2 {
			continue
		}
		p[strings.ToLower(kv[0])] = kv[1]
	}
	return p
}

func paramValue(p map[string]string, key string, def float64) (float64, error) {
	s, ok := p[key]
	if !ok {
		return def, nil
	}
	return ParseValue(s)
}
