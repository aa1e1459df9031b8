package dispatch

import (
	"errors"
	"regexp"
)

// ErrNoValidRecipients is returned when validation leaves nobody to contact.
var ErrNoValidRecipients = errors.New("no valid recipients found")

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// InvalidRecipient is an address that failed validation, with the reason.
type InvalidRecipient struct {
	Address string `json:"address"`
	Reason  string `json:"reason"`
}

// ValidateRecipients splits addresses into valid and invalid, keeping order.
func ValidateRecipients(addresses []string) ([]string, []InvalidRecipient) {
	var valid []string
	var invalid []InvalidRecipient

	for _, addr := range addresses {
		switch {
		case addr == "":
			invalid = append(invalid, InvalidRecipient{Address: addr, Reason: "email address is empty"})
		case !emailPattern.MatchString(addr):
			invalid = append(invalid, InvalidRecipient{Address: addr, Reason: "invalid email format: " + addr})
		default:
			valid = append(valid, addr)
		}
	}
	return valid, invalid
}
