package validator

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// DefaultCountryCode is used when the phone tag carries no parameter.
const DefaultCountryCode = "91"

// nationalLengths lists the allowed national number length per calling code.
var nationalLengths = map[string][2]int{
	"91": {10, 10},
}

// validatePhone implements the `phone` tag, e.g. `validate:"phone=91"`.
// The number must carry the calling code (the leading "+" is optional), the
// national part must be digits only and of the allowed length, and the whole
// number must be valid for that country.
func validatePhone(fl validator.FieldLevel) bool {
	code := fl.Param()
	if code == "" {
		code = DefaultCountryCode
	}
	return IsValidPhone(fl.Field().String(), code)
}

// IsValidPhone applies the phone tag rules outside struct validation.
func IsValidPhone(number, countryCode string) bool {
	number = strings.TrimSpace(number)
	if number == "" {
		return false
	}
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	if !strings.HasPrefix(number, "+"+countryCode) {
		return false
	}

	limits, ok := nationalLengths[countryCode]
	if !ok {
		return false
	}

	national := number[len(countryCode)+1:]
	if len(national) < limits[0] || len(national) > limits[1] {
		return false
	}
	for _, r := range national {
		if r < '0' || r > '9' {
			return false
		}
	}

	callingCode, err := strconv.Atoi(countryCode)
	if err != nil {
		return false
	}
	region := phonenumbers.GetRegionCodeForCountryCode(callingCode)

	parsed, err := phonenumbers.Parse(number, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}
