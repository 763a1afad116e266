package validator

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// Error joins field messages in field order so the output is stable.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, v[f])
	}
	return strings.Join(msgs, "; ")
}

// bcrypt ignores nothing past 72 bytes; it refuses longer input outright.
const maxPasswordBytes = 72

const (
	maxNameLength  = 100
	maxEmailLength = 254
)

func ValidateSignup(name, email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Name is required")
	} else if utf8.RuneCountInString(name) > maxNameLength {
		errs.Add("name", "Name is too long")
	}

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) > maxPasswordBytes {
		errs.Add("password", fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(email) == "" {
		errs.Add("email", "Email is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateMood checks a mood submission. maxNote is counted in code points.
func ValidateMood(emojis []string, note *string, maxNote int) ValidationErrors {
	errs := make(ValidationErrors)

	hasEmoji := false
	for _, e := range emojis {
		if strings.TrimSpace(e) != "" {
			hasEmoji = true
			break
		}
	}
	if !hasEmoji {
		errs.Add("emojis", "at least one emoji is required")
	}

	if note != nil && utf8.RuneCountInString(strings.TrimSpace(*note)) > maxNote {
		errs.Add("note", fmt.Sprintf("note must be at most %d characters", maxNote))
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
		return
	}
	if len(email) > maxEmailLength {
		errs.Add("email", "Email is too long")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.Add("email", "Invalid email address")
	}
}
