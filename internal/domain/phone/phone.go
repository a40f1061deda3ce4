// Package phone validates and normalises Senegalese mobile numbers.
package phone

import (
	"errors"
	"strings"
)

const CountryCode = "221"

var ErrInvalid = errors.New("invalid senegal phone number")

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the +221XXXXXXXXX form. It accepts 9 national digits,
// 12 digits starting with 221, and a national number behind a 0 trunk prefix.
func Normalize(raw string) (string, error) {
	d := digits(raw)
	if len(d) == 10 && strings.HasPrefix(d, "0") {
		d = d[1:]
	}
	switch {
	case len(d) == 12 && strings.HasPrefix(d, CountryCode):
		return "+" + d, nil
	case len(d) == 9:
		return "+" + CountryCode + d, nil
	}
	return "", ErrInvalid
}
