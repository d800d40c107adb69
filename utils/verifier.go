package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
)

var ErrDisposableEmail = errors.New("disposable email addresses are not accepted")

var (
	disposableDomains = loadDisposableDomains()

	// Common email typos
	commonTypos = map[string]string{
		"gmai.com":   "gmail.com",
		"gmal.com":   "gmail.com",
		"gmail.co":   "gmail.com",
		"yaho.com":   "yahoo.com",
		"hotmai.com": "hotmail.com",
		"outlok.com": "outlook.com",
	}
)

// VerifyEmailAddress checks the syntax of a sign-up address and rejects
// throwaway and obviously mistyped domains. No network lookups are made.
func VerifyEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return err
	}

	domain := strings.ToLower(ExtractDomain(email))
	if fix, ok := commonTypos[domain]; ok {
		return fmt.Errorf("unknown email domain %s, did you mean %s?", domain, fix)
	}
	if disposableDomains[domain] {
		return ErrDisposableEmail
	}
	return nil
}

// ExtractDomain extracts domain from email address
func ExtractDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) == 2 {
		return parts[1]
	}
	return ""
}

func loadDisposableDomains() map[string]bool {
	domains := make(map[string]bool)
	for _, d := range strings.Fields(disposableDomainList) {
		domains[d] = true
	}
	return domains
}

const disposableDomainList = `
mailinator.com
tempmail.org
10minutemail.com
guerrillamail.com
trashmail.com
temp-mail.org
yopmail.com
maildrop.cc
dispostable.com
fakeinbox.com
throwawaymail.com
mailnesia.com
getairmail.com
mytemp.email
temp-mail.io
fake-mail.com
mail-temp.com
tempail.com
tempomail.fr
tempinbox.com
tempmailaddress.com
mailmetrash.com
trashmail.net
discard.email
mailcatch.com
tempemail.net
mailinator2.com
mintemail.com
notmailinator.com
spamgourmet.com
spamhole.com
`
