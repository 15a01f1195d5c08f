package middleware

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	rutPattern      = regexp.MustCompile(`^\d{1,8}-[\dkK]$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3,5}$`)
)

// SetupValidator configures the gin binding validator with JSON field names
// and the custom tags used by the request structs.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("rut", validateRUT)
	_ = v.RegisterValidation("currency", validateCurrency)
}

// validateRUT checks a Chilean RUT in canonical form, digits then a hyphen
// then the mod 11 check digit (0-9 or K).
func validateRUT(fl validator.FieldLevel) bool {
	return IsValidRUT(fl.Field().String())
}

// IsValidRUT reports whether s is a well-formed RUT with a correct check digit
func IsValidRUT(s string) bool {
	if !rutPattern.MatchString(s) {
		return false
	}

	parts := strings.SplitN(s, "-", 2)
	body, check := parts[0], strings.ToUpper(parts[1])

	sum := 0
	factor := 2
	for i := len(body) - 1; i >= 0; i-- {
		d, err := strconv.Atoi(string(body[i]))
		if err != nil {
			return false
		}
		sum += d * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	rem := 11 - sum%11
	var expected string
	switch rem {
	case 11:
		expected = "0"
	case 10:
		expected = "K"
	default:
		expected = strconv.Itoa(rem)
	}
	return check == expected
}

func validateCurrency(fl validator.FieldLevel) bool {
	return currencyPattern.MatchString(fl.Field().String())
}
