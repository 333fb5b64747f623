package domain

import (
	"net/mail"
	"strings"
)

// MergeEmails trims, lower-cases and deduplicates addresses, keeping first-seen order.
func MergeEmails(groups ...[]string) ([]string, error) {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, group := range groups {
		for _, raw := range group {
			email := strings.ToLower(strings.TrimSpace(raw))
			if email == "" {
				continue
			}
			if _, ok := seen[email]; ok {
				continue
			}
			addr, err := mail.ParseAddress(email)
			if err != nil || addr.Address != email {
				return nil, Validation("merge notification emails", "invalid email address %q", raw)
			}
			seen[email] = struct{}{}
			out = append(out, email)
		}
	}
	return out, nil
}
