package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmptyPhone    = errors.New("phone number cannot be empty")
	ErrInvalidFormat = errors.New("phone number can only contain digits")
	ErrInvalidLength = errors.New("phone number must be 10 digits, or 11 with the 94 country code")
	ErrInvalidPrefix = errors.New("phone number must start with 0 followed by a Sri Lankan area or mobile code")
)

// LineType classifies a contact number
type LineType string

const (
	LineMobile   LineType = "mobile"
	LineLandline LineType = "landline"
)

// mobile operator codes, third digit after "07"
var mobileOperators = map[byte]string{
	'0': "Mobitel",
	'1': "Mobitel",
	'2': "Hutch",
	'4': "Dialog",
	'5': "Airtel",
	'6': "Dialog",
	'7': "Dialog",
	'8': "Hutch",
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// separators stripped before validation
var separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "", ".", "")

// PhoneValidator validates Sri Lankan contact numbers given for tour passengers
// and other people reachable by phone. Both mobile and landline numbers are
// accepted; output is always the 10-digit national form (0XXXXXXXXX).
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate checks phone and returns its national form.
// Accepts 0771234567, 077 123 4567, 011-234-5678 and +94 77 123 4567.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	national := v.Sanitize(phone)
	if !digitsOnly.MatchString(national) {
		return "", ErrInvalidFormat
	}
	if len(national) != 10 {
		return "", ErrInvalidLength
	}
	if _, err := lineType(national); err != nil {
		return "", err
	}
	return national, nil
}

// Sanitize strips separators and rewrites a leading 94 country code to 0
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = separators.Replace(phone)
	if strings.HasPrefix(phone, "94") && len(phone) == 11 {
		phone = "0" + phone[2:]
	}
	return phone
}

// Type reports whether phone is a mobile or landline number
func (v *PhoneValidator) Type(phone string) (LineType, error) {
	national, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return lineType(national)
}

// Operator returns the mobile operator for phone. Landlines have none.
func (v *PhoneValidator) Operator(phone string) (string, error) {
	national, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	if t, _ := lineType(national); t != LineMobile {
		return "", fmt.Errorf("%s is a landline number", national)
	}
	return mobileOperators[national[2]], nil
}

// Format renders phone as 07X XXX XXXX
func (v *PhoneValidator) Format(phone string) (string, error) {
	national, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", national[0:3], national[3:6], national[6:10]), nil
}

// International renders phone with the +94 country code
func (v *PhoneValidator) International(phone string) (string, error) {
	national, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return "+94" + national[1:], nil
}

// IsValid reports whether phone passes Validate
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}

func lineType(national string) (LineType, error) {
	if national[0] != '0' || national[1] == '0' {
		return "", ErrInvalidPrefix
	}
	if national[1] == '7' {
		if _, ok := mobileOperators[national[2]]; !ok {
			return "", ErrInvalidPrefix
		}
		return LineMobile, nil
	}
	return LineLandline, nil
}
