package payment

import (
	"errors"
	"strings"
)

// ErrMalformedTitle is returned when an item title is not "<Product> (<Site>)".
var ErrMalformedTitle = errors.New("malformed item title")

// ParseItemTitle splits a line-item title of the form "<Product> (<Site>)"
// on the last "(". Product names containing "(" still parse, but a site name
// containing "(" cannot be told apart from the separator; the payment
// provider sends no canonical ids, so this is a known limitation.
func ParseItemTitle(title string) (product, site string, err error) {
	idx := strings.LastIndex(title, "(")
	if idx < 0 {
		return "", "", ErrMalformedTitle
	}
	product = strings.TrimSpace(title[:idx])
	site = strings.TrimSpace(strings.ReplaceAll(title[idx+1:], ")", ""))
	if product == "" || site == "" {
		return "", "", ErrMalformedTitle
	}
	return product, site, nil
}
