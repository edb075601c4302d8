package service

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// phoneRegion is used for numbers written without a country prefix.
const phoneRegion = "IN"

// normalizePhone returns the E.164 form of raw when it parses as a valid
// number, and raw (trimmed) otherwise.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := libphonenumber.Parse(raw, phoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}
