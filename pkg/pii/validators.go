package pii

import (
	"strconv"
	"strings"
)

// validate applies the type-specific validator to a candidate match.
// Candidates that fail are discarded silently, never reported as
// low-confidence findings. Types without a validator accept all regex
// matches.
func validate(t Type, value string) bool {
	switch t {
	case TypeSSN:
		return validSSN(value)
	case TypeCreditCard:
		return validLuhn(value)
	case TypePhoneNumber:
		return validUSPhone(value)
	case TypeEmail:
		return !placeholderEmail(value)
	case TypeIPAddress:
		return validIP(value)
	default:
		return true
	}
}

// validSSN validates SSN structural rules: well-formed 9 digits, no
// repeated-digit sequences, and legal area/group/serial sub-ranges.
func validSSN(ssn string) bool {
	clean := stripSeparators(ssn)
	if len(clean) != 9 || !allDigits(clean) {
		return false
	}

	// All nine digits identical (e.g. 111-11-1111) is never issued.
	repeated := true
	for i := 1; i < len(clean); i++ {
		if clean[i] != clean[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}

	area, _ := strconv.Atoi(clean[0:3])
	if area == 0 || area == 666 || area >= 900 {
		return false
	}
	group, _ := strconv.Atoi(clean[3:5])
	if group == 0 {
		return false
	}
	serial, _ := strconv.Atoi(clean[5:9])
	return serial != 0
}

// validLuhn validates a card number with the Luhn checksum, length 13-19.
func validLuhn(cc string) bool {
	clean := stripSeparators(cc)
	if len(clean) < 13 || len(clean) > 19 {
		return false
	}

	sum := 0
	alternate := false
	for i := len(clean) - 1; i >= 0; i-- {
		n := int(clean[i] - '0')
		if n < 0 || n > 9 {
			return false
		}
		if alternate {
			n *= 2
			if n > 9 {
				n = (n % 10) + 1
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}

// validUSPhone rejects N11-prefixed area/exchange codes and all-zero numbers.
func validUSPhone(phone string) bool {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	// Strip a leading country code 1.
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return false
	}

	zero := true
	for _, d := range digits {
		if d != '0' {
			zero = false
			break
		}
	}
	if zero {
		return false
	}

	area := string(digits[0:3])
	exchange := string(digits[3:6])
	if area[1] == '1' && area[2] == '1' {
		return false // service codes like 411, 911
	}
	if exchange[1] == '1' && exchange[2] == '1' {
		return false
	}
	return true
}

// placeholderEmails are well-known non-PII addresses and domains.
var placeholderDomains = map[string]struct{}{
	"example.com": {}, "example.org": {}, "example.net": {},
	"test.com": {}, "localhost": {},
}

var placeholderLocals = map[string]struct{}{
	"test": {}, "noreply": {}, "no-reply": {}, "donotreply": {},
	"admin": {}, "user": {}, "example": {},
}

// placeholderEmail reports whether an address is a known placeholder.
func placeholderEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return true
	}
	local := strings.ToLower(email[:at])
	domain := strings.ToLower(email[at+1:])
	if _, ok := placeholderDomains[domain]; ok {
		return true
	}
	_, ok := placeholderLocals[local]
	return ok
}

// excludedIPPrefixes are reserved addresses that carry no PII signal.
var excludedIPPrefixes = []string{
	"127.",     // loopback
	"0.",       // invalid
	"255.",     // broadcast
	"224.",     // multicast
	"169.254.", // link-local
}

// validIP checks octet ranges and rejects common reserved addresses.
func validIP(ip string) bool {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	for _, prefix := range excludedIPPrefixes {
		if strings.HasPrefix(ip, prefix) {
			return false
		}
	}
	return true
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
