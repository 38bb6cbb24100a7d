package geocode

import (
	"regexp"
	"strings"
)

var (
	zipSuffix   = regexp.MustCompile(`\s+\d{5}(-?\d{4})?$`)
	stateSuffix = regexp.MustCompile(`\s+[A-Z]{2}$`)
	unitSuffix  = regexp.MustCompile(`\s+(#\s*\S+|(APT|UNIT|STE|SUITE|FL|RM)[.\s#]\s*#?\s*\S+)$`)
	spaces      = regexp.MustCompile(`\s+`)
)

// StreetLine reduces a free-form address to the bare street line the
// provider's address lookup expects: no unit, city, state or postal code.
func StreetLine(address, unit, state string) string {
	line := address
	if i := strings.IndexByte(line, ','); i >= 0 {
		line = line[:i]
	}
	line = spaces.ReplaceAllString(strings.ToUpper(strings.TrimSpace(line)), " ")

	hadZip := zipSuffix.MatchString(line)
	line = zipSuffix.ReplaceAllString(line, "")

	// A bare two-letter tail is ambiguous ("OAK CT"), so it is only treated
	// as a state after a postal code or when it repeats the known state on a
	// line long enough to still hold number, name and suffix.
	if m := stateSuffix.FindString(line); m != "" {
		tail := strings.TrimSpace(m)
		if hadZip || (tail == strings.ToUpper(state) && len(strings.Fields(line)) >= 4) {
			line = strings.TrimSuffix(line, m)
		}
	}

	if u := strings.ToUpper(strings.TrimSpace(unit)); u != "" {
		for _, suffix := range []string{" #" + u, " # " + u, " UNIT " + u, " APT " + u, " " + u} {
			if strings.HasSuffix(line, suffix) {
				line = strings.TrimSuffix(line, suffix)
				break
			}
		}
	}
	line = unitSuffix.ReplaceAllString(line, "")

	return strings.TrimSpace(line)
}
