package pii

import (
	"strings"
)

const maskChar = '*'

// Mask produces the masked form of a matched value. The output depends only
// on the PII type and the shape of the matched text, and always has the same
// length as the input so offsets into surrounding content stay valid.
func Mask(t Type, value string) string {
	if value == "" {
		return ""
	}
	switch t {
	case TypeSSN, TypeCreditCard, TypeBankAccount, TypeTaxID:
		return maskKeepLast4(value)
	case TypePhoneNumber:
		return maskKeepLast4(value)
	case TypeEmail:
		return maskEmail(value)
	case TypeIPAddress:
		return maskIP(value)
	default:
		return maskGeneric(value)
	}
}

// maskKeepLast4 masks every digit except the last four, preserving
// separators in place.
func maskKeepLast4(value string) string {
	digitPositions := make([]int, 0, len(value))
	for i := 0; i < len(value); i++ {
		if value[i] >= '0' && value[i] <= '9' {
			digitPositions = append(digitPositions, i)
		}
	}

	keepFrom := len(digitPositions) - 4
	if keepFrom < 0 {
		keepFrom = 0
	}
	keep := make(map[int]struct{}, 4)
	for _, pos := range digitPositions[keepFrom:] {
		keep[pos] = struct{}{}
	}

	out := []byte(value)
	for i := 0; i < len(out); i++ {
		if out[i] < '0' || out[i] > '9' {
			continue
		}
		if _, ok := keep[i]; !ok {
			out[i] = maskChar
		}
	}
	return string(out)
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return maskGeneric(email)
	}
	local := email[:at]
	masked := string(local[0]) + strings.Repeat(string(maskChar), len(local)-1)
	return masked + email[at:]
}

// maskIP masks the first three octets, keeping the last.
func maskIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return maskGeneric(ip)
	}
	for i := 0; i < 3; i++ {
		parts[i] = strings.Repeat(string(maskChar), len(parts[i]))
	}
	return strings.Join(parts, ".")
}

// maskGeneric keeps the first and last rune of the value.
func maskGeneric(value string) string {
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat(string(maskChar), len(runes))
	}
	for i := 1; i < len(runes)-1; i++ {
		runes[i] = maskChar
	}
	return string(runes)
}
