// Package validation configures the shared go-playground validator with the
// storefront's Indian mobile number, pincode and contact phone rules.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	mobilePattern       = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern      = regexp.MustCompile(`^\d{6}$`)
	contactPhonePattern = regexp.MustCompile(`^[0-9+\-()\s]{6,20}$`)
)

// Tags registered by New.
const (
	TagMobile       = "mobile_in"
	TagPincode      = "pincode_in"
	TagContactPhone = "contact_phone"
)

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation(TagMobile, func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation(TagPincode, func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation(TagContactPhone, func(fl validator.FieldLevel) bool {
		return contactPhonePattern.MatchString(fl.Field().String())
	})
	return v
}

// IsMobile reports whether s is a 10-digit Indian mobile number.
func IsMobile(s string) bool { return mobilePattern.MatchString(s) }
