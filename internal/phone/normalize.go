package phone

import "strings"

// DefaultCountryCode is the calling code assumed for bare local numbers
// when the deployment does not configure one.
const DefaultCountryCode = "92"

// Normalize turns free-form phone input into a dialable E.164-style address.
//
// This is a best-effort heuristic disambiguator, not strict E.164 validation.
// The rules are ordered and the first match wins; campaign and call creation
// depend on the exact digit-length thresholds below, so changes here must be
// reflected in the dispatch tests.
//
// Returns ("", false) when the input cannot be made dialable. Never panics.
func Normalize(raw string, defaultCountryCode string) (string, bool) {
	if defaultCountryCode == "" {
		defaultCountryCode = DefaultCountryCode
	}

	cleaned := stripNonDial(raw)
	if cleaned == "" {
		return "", false
	}

	// International form: keep as-is if the digit run is plausible.
	if strings.HasPrefix(cleaned, "+") {
		digits := cleaned[1:]
		if !isDigits(digits) || len(digits) < 7 || len(digits) > 15 {
			return "", false
		}
		return cleaned, true
	}

	s := strings.ReplaceAll(cleaned, "+", "")
	if s == "" {
		return "", false
	}

	// Already carries the default calling code without the plus.
	if strings.HasPrefix(s, "92") && (len(s) == 12 || len(s) == 13) {
		return "+" + s, true
	}

	// Local mobile with trunk prefix: 03XXXXXXXXX.
	if strings.HasPrefix(s, "03") && len(s) == 11 {
		return "+92" + s[1:], true
	}

	// Local mobile without trunk prefix: 3XXXXXXXXX.
	if strings.HasPrefix(s, "3") && len(s) == 10 {
		return "+92" + s, true
	}

	// Any other trunk-prefixed national number.
	if strings.HasPrefix(s, "0") && len(s) >= 10 {
		return "+92" + s[1:], true
	}

	// Ten digits not starting with 0 or 3: treat as North American.
	if len(s) == 10 {
		return "+1" + s, true
	}

	// Eleven digits starting with 1: NANP with the country code spelled out.
	if len(s) == 11 && strings.HasPrefix(s, "1") {
		return "+" + s, true
	}

	if len(s) >= 7 && len(s) <= 12 {
		return "+" + defaultCountryCode + s, true
	}

	return "", false
}

// stripNonDial keeps digits and plus signs only. Step two decides whether a
// leading plus marks the value as already international; any remaining pluses
// are dropped by the caller before the national-format rules run.
func stripNonDial(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
