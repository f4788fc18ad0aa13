package service

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Form field names. Templates and validators share this closed set; a
// FieldErrors map never carries any other key.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm-password"
	FieldTitle           = "title"
	FieldBody            = "body"
)

// FieldErrors maps a field name to the first rule it violated. An empty
// map means the form passed.
type FieldErrors map[string]string

// HasErrors reports whether any field failed validation.
func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// fieldCheck validates one field, returning its name and the message of
// the first failing rule, or ok=true if every rule passed.
type fieldCheck func() (field, message string, ok bool)

// runChecks evaluates every field's check independently and merges the
// failures. All fields are always evaluated: a bad name does not hide a
// bad email. Within a single field the first failing rule wins.
func runChecks(checks ...fieldCheck) FieldErrors {
	errs := make(FieldErrors)
	for _, check := range checks {
		if field, message, ok := check(); !ok {
			errs[field] = message
		}
	}
	return errs
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func checkName(name string) (string, string, bool) {
	switch {
	case name == "":
		return FieldName, "Name is required", false
	case utf8.RuneCountInString(name) > 50:
		return FieldName, "Name must be 50 characters or less", false
	}
	return FieldName, "", true
}

func checkEmail(email string, taken bool) (string, string, bool) {
	switch {
	case email == "":
		return FieldEmail, "Email is required", false
	case utf8.RuneCountInString(email) > 75:
		return FieldEmail, "Email must be 75 characters or less", false
	case !emailPattern.MatchString(email):
		return FieldEmail, "Email must be in the format of example@gmail.com", false
	case taken:
		return FieldEmail, "Email already in use", false
	}
	return FieldEmail, "", true
}

func checkPassword(password string) (string, string, bool) {
	if password == "" {
		return FieldPassword, "Password is required", false
	}
	if !isStrongPassword(password) {
		return FieldPassword, "Password must include at least 8 characters, a number, a symbol, a lowercase and uppercase character", false
	}
	return FieldPassword, "", true
}

func checkConfirmPassword(password, confirm string) (string, string, bool) {
	if confirm != password {
		return FieldConfirmPassword, "Passwords do not match", false
	}
	return FieldConfirmPassword, "", true
}

func checkTitle(title string) (string, string, bool) {
	if title == "" {
		return FieldTitle, "Title is required", false
	}
	return FieldTitle, "", true
}

func checkBody(body string) (string, string, bool) {
	if body == "" {
		return FieldBody, "Message is required", false
	}
	return FieldBody, "", true
}

// isStrongPassword requires at least 8 characters with at least one
// digit, one symbol, one lowercase and one uppercase character.
func isStrongPassword(password string) bool {
	var hasDigit, hasSymbol, hasLower, hasUpper bool
	length := 0
	for _, r := range password {
		length++
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		default:
			hasSymbol = true
		}
	}
	return length >= 8 && hasDigit && hasSymbol && hasLower && hasUpper
}
