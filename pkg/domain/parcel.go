package domain

import (
	"strings"

	dErrors "taxappeal/pkg/domain-errors"
)

// ParcelIDLength is the number of digits in a normalized parcel identifier.
const ParcelIDLength = 14

// ParcelID is a jurisdiction-assigned parcel identifier in its digits-only form.
// Invariant: a non-zero ParcelID always holds exactly 14 digits.
//
// Usage: construct via ParseParcelID at trust boundaries so malformed input is
// rejected before any registry or provider call is made.
type ParcelID string

// ParseParcelID normalizes raw input and validates it.
//
// Errors: returns CodeInvalidInput when the input does not normalize to 14 digits.
func ParseParcelID(raw string) (ParcelID, error) {
	if strings.TrimSpace(raw) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "parcel id cannot be empty")
	}
	digits := NormalizeParcelID(raw)
	if len(digits) != ParcelIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "parcel id must contain exactly 14 digits")
	}
	return ParcelID(digits), nil
}

// MustParcelID parses raw and panics if it is invalid. Tests and fixtures only.
func MustParcelID(raw string) ParcelID {
	pin, err := ParseParcelID(raw)
	if err != nil {
		panic(err)
	}
	return pin
}

// String returns the digits-only form.
func (p ParcelID) String() string {
	return string(p)
}

// Display returns the dashed presentation form, e.g. 17-04-217-033-1013.
func (p ParcelID) Display() string {
	return DisplayParcelID(string(p))
}

// IsZero reports whether the identifier is unset.
func (p ParcelID) IsZero() bool {
	return p == ""
}

// NormalizeParcelID strips every non-digit character.
func NormalizeParcelID(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidParcelID reports whether raw normalizes to exactly 14 digits.
func IsValidParcelID(raw string) bool {
	return len(NormalizeParcelID(raw)) == ParcelIDLength
}

// DisplayParcelID formats an identifier with 14 digits as NN-NN-NNN-NNN-NNNN.
// Input that does not carry exactly 14 digits is returned unchanged.
func DisplayParcelID(raw string) string {
	d := NormalizeParcelID(raw)
	if len(d) != ParcelIDLength {
		return raw
	}
	return d[0:2] + "-" + d[2:4] + "-" + d[4:7] + "-" + d[7:10] + "-" + d[10:14]
}
