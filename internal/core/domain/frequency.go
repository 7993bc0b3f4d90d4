package domain

import "strings"

// DefaultFrequencyMonths is the annual fallback cadence for frequency text
// the parser does not recognize. Falling back is policy, not an error: the
// strings are human-authored and an unknown phrasing must still produce a
// tracked obligation.
const DefaultFrequencyMonths = 12

// frequencyPatterns maps normalized substrings of Serbian cadence phrases to
// month counts. Ordered most-specific first so "na 12 meseci" is not
// swallowed by a shorter pattern.
var frequencyPatterns = []struct {
	needle string
	months int
}{
	{"na 12 meseci", 12},
	{"na 6 meseci", 6},
	{"na 3 meseca", 3},
	{"na 2 godine", 24},
	{"na 3 godine", 36},
	{"na 5 godina", 60},
	{"dvogodisnje", 24},
	{"trogodisnje", 36},
	{"petogodisnje", 60},
	{"polugodisnje", 6},
	{"sestomesecno", 6},
	{"tromesecno", 3},
	{"kvartalno", 3},
	{"mesecno", 1},
	{"svakog meseca", 1},
	{"godisnje", 12},
	{"na godinu", 12},
}

// FrequencyMonths parses a human-authored cadence string ("godišnje",
// "na 6 meseci", "na 2 godine", ...) into a month count. Unrecognized text
// resolves to DefaultFrequencyMonths.
func FrequencyMonths(frequency string) int {
	normalized := normalizeFrequency(frequency)
	for _, pattern := range frequencyPatterns {
		if strings.Contains(normalized, pattern.needle) {
			return pattern.months
		}
	}
	return DefaultFrequencyMonths
}

var diacriticFolder = strings.NewReplacer(
	"š", "s", "Š", "s",
	"č", "c", "Č", "c",
	"ć", "c", "Ć", "c",
	"ž", "z", "Ž", "z",
	"đ", "dj", "Đ", "dj",
)

func normalizeFrequency(s string) string {
	return strings.ToLower(strings.TrimSpace(diacriticFolder.Replace(s)))
}
