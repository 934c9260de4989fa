package tracker

import (
	"strconv"
	"strings"
)

// ParseInitiative turns user input into an initiative. Like a prefix integer
// parse, the leading digits are read and anything after them is ignored, so
// "12.7" is 12. The result is clamped to MinInitiative..MaxInitiative. Input
// that does not start with a digit means no initiative and reports false.
func ParseInitiative(text string) (int, bool) {
	text = strings.TrimSpace(text)

	negative := false
	if text != "" && (text[0] == '+' || text[0] == '-') {
		negative = text[0] == '-'
		text = text[1:]
	}

	end := 0
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == 0 {
		return NoInitiative, false
	}

	digits := strings.TrimLeft(text[:end], "0")
	switch {
	case digits == "" || negative:
		return MinInitiative, true
	case len(digits) > len(strconv.Itoa(MaxInitiative)):
		return MaxInitiative, true
	}

	v, err := strconv.Atoi(digits)
	if err != nil {
		return NoInitiative, false
	}
	return min(max(v, MinInitiative), MaxInitiative), true
}
