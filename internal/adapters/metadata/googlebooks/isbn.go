package googlebooks

import (
	"errors"
	"regexp"
)

var isbn10Pattern = regexp.MustCompile(`^\d{9}[\dX]$`)

// ISBN10To13 converts an ISBN-10 to its ISBN-13 form by prefixing "978"
// and recomputing the check digit.
func ISBN10To13(isbn10 string) (string, error) {
	if !isbn10Pattern.MatchString(isbn10) {
		return "", errors.New("invalid ISBN-10")
	}

	base := "978" + isbn10[:9]
	sum := 0
	for i, c := range base {
		digit := int(c - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	check := (10 - sum%10) % 10

	return base + string(rune('0'+check)), nil
}
