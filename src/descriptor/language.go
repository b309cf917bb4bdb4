package descriptor

import (
	"fmt"
	"strconv"
	"strings"
)

// LanguageLevel is a Java source/target compatibility level.
type LanguageLevel string

const (
	Java6  LanguageLevel = "1.6"
	Java7  LanguageLevel = "1.7"
	Java8  LanguageLevel = "1.8"
	Java9  LanguageLevel = "9"
	Java11 LanguageLevel = "11"
	Java17 LanguageLevel = "17"
	Java21 LanguageLevel = "21"
)

// Rank is the Java feature release number (8 for "1.8", 17 for "17"). Unknown
// levels rank 0.
func (l LanguageLevel) Rank() int {
	s, legacy := strings.CutPrefix(string(l), "1.")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	switch {
	case legacy && n >= 1 && n <= 8:
		return n
	case !legacy && n >= 9:
		return n
	}
	return 0
}

// ParseLanguageLevel accepts the spellings seen in build scripts:
// "1.8", "8", "VERSION_1_8", "JavaVersion.VERSION_17". Feature releases after
// 21 are accepted as they ship.
func ParseLanguageLevel(s string) (LanguageLevel, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "JavaVersion.")
	s = strings.TrimPrefix(s, "VERSION_")
	s = strings.ReplaceAll(s, "_", ".")
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 8 {
		s = "1." + s
	}
	if rest, ok := strings.CutPrefix(s, "1."); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 9 {
			s = rest
		}
	}
	l := LanguageLevel(s)
	if l.Rank() == 0 {
		return "", fmt.Errorf("unknown language level %q", raw)
	}
	return l, nil
}
