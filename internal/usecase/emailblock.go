package usecase

import "strings"

// Emails and domains with repeated chargebacks or fraud reports. Checkout
// requests from these are rejected outright and never retried.
var blockedEmails = map[string]struct{}{
	"chargeback.abuse@gmail.com": {},
	"fraude.teste@hotmail.com":   {},
}

var blockedEmailDomains = map[string]struct{}{
	"tempmail.com":      {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"mailinator.com":    {},
}

func IsBlockedEmail(email string) bool {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if _, ok := blockedEmails[normalized]; ok {
		return true
	}
	at := strings.LastIndex(normalized, "@")
	if at < 0 {
		return false
	}
	_, ok := blockedEmailDomains[normalized[at+1:]]
	return ok
}
