package motor

import (
	"fmt"
	"regexp"
	"strings"
)

// SearchMode defines how a text filter value is interpreted
type SearchMode int

const (
	PlainText SearchMode = iota
	Regex
)

// compiledPattern holds a compiled search pattern
type compiledPattern struct {
	mode      SearchMode
	plainText string
	regex     *regexp.Regexp
}

// compilePattern compiles a filter value once per query, not per flow
func compilePattern(pattern string, mode SearchMode) (compiledPattern, error) {
	cp := compiledPattern{mode: mode}

	if mode == Regex {
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return cp, fmt.Errorf("invalid regex pattern: %w", err)
		}
		cp.regex = regex
		return cp, nil
	}

	cp.plainText = pattern
	return cp, nil
}

// matches checks if haystack matches the compiled pattern
func matches(haystack string, pattern compiledPattern) bool {
	if pattern.mode == Regex {
		return pattern.regex.MatchString(haystack)
	}

	// plain text: strings.Contains is faster than regex
	return strings.Contains(haystack, pattern.plainText)
}
