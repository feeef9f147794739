package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// CPFPattern is exactly 11 ASCII digits, no separators
	CPFPattern = regexp.MustCompile(`^\d{11}$`)

	// PasswordMinLength mirrors the hosted auth default
	PasswordMinLength = 6
)

var (
	once     sync.Once
	validate *validator.Validate
)

// messages maps field -> failed tag -> user-facing message
var messages = map[string]map[string]string{
	"full_name": {
		"min": "Nome deve ter pelo menos 3 caracteres",
		"max": "Nome deve ter no máximo 100 caracteres",
	},
	"registration_number": {
		"min": "Matrícula é obrigatória",
		"max": "Matrícula deve ter no máximo 50 caracteres",
	},
	"cpf": {
		"cpf": "CPF deve conter 11 dígitos",
	},
	"birth_date": {
		"required": "Data de nascimento é obrigatória",
	},
	"email": {
		"required": "Email inválido",
		"email":    "Email inválido",
		"max":      "Email deve ter no máximo 255 caracteres",
	},
	"phone": {
		"min": "Telefone deve ter pelo menos 10 dígitos",
		"max": "Telefone deve ter no máximo 20 caracteres",
	},
}

// Validator returns the shared validator instance with the custom rules registered
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Registration on a fresh instance cannot fail for a non-empty tag
		_ = validate.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
			return CPFPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateStudent checks a candidate record against the field rules in their
// declared order and returns the first violation, or nil when the record is valid.
func ValidateStudent(in models.StudentInput) *apperrors.ValidationError {
	err := Validator().Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("", err.Error())
	}

	first := fieldErrs[0]
	return apperrors.NewValidationError(first.Field(), messageFor(first.Field(), first.Tag()))
}

// ValidateSignUp checks sign-up credentials
func ValidateSignUp(email, password string) *apperrors.ValidationError {
	if err := Validator().Var(email, "required,email,max=255"); err != nil {
		return apperrors.NewValidationError("email", "Email inválido")
	}
	if len([]rune(password)) < PasswordMinLength {
		return apperrors.NewValidationError("password", "Senha deve ter pelo menos 6 caracteres")
	}
	return nil
}

func messageFor(field, tag string) string {
	if byTag, ok := messages[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}
	return field + " inválido"
}
