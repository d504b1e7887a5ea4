package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/tailor/internal/pkg/strcase"
)

// reSlug matches identifiers such as IFTTT event names.
var reSlug = regexp.MustCompile(`^[a-z0-9]+(?:[_-][a-z0-9]+)*$`)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps a snake_case field path to a message.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonTagName)

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCustom(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{validate: validate, translator: enTrans}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	errV10 := make(V10ValidationError, len(validateErrs))
	for _, fe := range validateErrs {
		errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}

	return errV10
}

// jsonTagName reports fields by their JSON name so messages line up with payload keys.
func jsonTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

func registerCustom(validate *validator.Validate, enTrans ut.Translator) error {
	err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && reSlug.MatchString(s)
	})
	if err != nil {
		return err
	}

	messages := map[string]string{
		"slug":       "{0} must contain only lowercase letters, digits, '-' or '_'",
		"alphaspace": "{0} can contain only letters and spaces",
	}

	for tag, msg := range messages {
		err := validate.RegisterTranslation(tag, enTrans,
			func(ut ut.Translator) error {
				return ut.Add(tag, msg, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("failed to translate validation error", "tag", fe.Tag(), "error", err)
					return fe.Error()
				}
				return t
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}
