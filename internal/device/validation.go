package device

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxTextLength bounds device and person names, counted in runes.
const maxTextLength = 200

// ValidateName checks that a device name is non-blank and not too long.
// The name itself is stored as given.
func ValidateName(name string) error {
	if problem := checkText(name); problem != "" {
		return fmt.Errorf("%w: name %s", ErrInvalidName, problem)
	}
	return nil
}

// ValidatePerson checks the person field of a booking or return.
func ValidatePerson(person string) error {
	if problem := checkText(person); problem != "" {
		return fmt.Errorf("%w: person %s", ErrInvalidPerson, problem)
	}
	return nil
}

// checkText returns a description of what is wrong with s, or "".
func checkText(s string) string {
	if strings.TrimSpace(s) == "" {
		return "cannot be empty"
	}
	if utf8.RuneCountInString(s) > maxTextLength {
		return fmt.Sprintf("exceeds %d characters", maxTextLength)
	}
	return ""
}
