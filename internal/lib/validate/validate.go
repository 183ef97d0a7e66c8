// Package validate настраивает go-playground/validator с правилами сервиса
// и переводит ошибки валидации в сообщения для клиента.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator"
)

// PasswordSymbols — спецсимволы, один из которых обязателен в пароле.
const PasswordSymbols = "!@#$%^&*()_+"

// New возвращает валидатор с тегами password, letters и personname.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return Password(fl.Field().String())
	})
	_ = v.RegisterValidation("letters", func(fl validator.FieldLevel) bool {
		return Letters(fl.Field().String())
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return PersonName(fl.Field().String())
	})
	return v
}

// Password проверяет, что в пароле есть заглавная буква, цифра и спецсимвол.
func Password(s string) bool {
	var upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && digit && symbol
}

// Letters проверяет, что строка непустая и состоит только из латинских букв.
func Letters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isLatin(r) {
			return false
		}
	}
	return true
}

// PersonName допускает латинские буквы, пробелы, апостроф и дефис.
func PersonName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isLatin(r) && !unicode.IsSpace(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}

func isLatin(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Message переводит первую ошибку валидации в сообщение для клиента.
// Ошибки другого типа возвращаются как есть.
func Message(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err.Error()
	}
	return describe(errs[0])
}

// Messages переводит все ошибки валидации.
func Messages(err error) []string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be less than %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be a positive number", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "password":
		return "Password must contain at least one uppercase letter, one number, and one special character"
	case "letters":
		return fmt.Sprintf("%s must contain only letters (no spaces or symbols)", field)
	case "personname":
		return fmt.Sprintf("%s can only contain letters, spaces, apostrophes, and hyphens", field)
	default:
		return fmt.Sprintf("%s is not valid", field)
	}
}
