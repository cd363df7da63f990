package feeds

// UnknownTag is emitted when no candidate field holds a usable tag.
const UnknownTag = "unknown"

// tagWidths is the preference order of tag lengths.
var tagWidths = []int{4, 3}

// ShortTag derives a short human-legible asset tag. Every candidate value
// is scanned, in order, for a run of exactly four digits not touching
// other digits; failing that, the scan repeats for exactly three digits.
// The sentinel is returned when neither pass matches.
func ShortTag(candidates []string, sentinel string) string {
	for _, width := range tagWidths {
		for _, c := range candidates {
			if run, ok := digitRun(c, width); ok {
				return run
			}
		}
	}
	return sentinel
}

// digitRun returns the first maximal run of ASCII digits of exactly width.
func digitRun(s string, width int) (string, bool) {
	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j-i == width {
			return s[i:j], true
		}
		i = j
	}
	return "", false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
