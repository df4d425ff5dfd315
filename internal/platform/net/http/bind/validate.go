package bind

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// regulatorCode matches codes such as MAS, FCA or HKMA
var regulatorCode = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{1,15}$`)

// Validation is a struct validator whose messages are english and name json fields
type Validation struct {
	v  *validator.Validate
	tr ut.Translator
}

var validation = sync.OnceValue(func() *Validation {
	loc := en.New()
	tr, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = entrans.RegisterDefaultTranslations(v, tr)
	_ = v.RegisterValidation("regulator", func(fl validator.FieldLevel) bool {
		return regulatorCode.MatchString(fl.Field().String())
	})

	out := &Validation{v: v, tr: tr}
	out.message("min", "{0} must be at least {1}")
	out.message("max", "{0} must be at most {1}")
	out.message("regulator", "{0} must be a regulator code like MAS")
	return out
})

// Validator returns the process validator
func Validator() *Validation { return validation() }

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func (val *Validation) message(tag, text string) {
	_ = val.v.RegisterTranslation(tag, val.tr,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// Check validates s; the first violation becomes an ErrorCodeValidation carrying its field
func (val *Validation) Check(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator misuse")
		return perr.JSONErrf("validation error")
	}
	field, msg := val.First(err)
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}

// First returns the field and translated message of the first violation in err
func (val *Validation) First(err error) (field, msg string) {
	var fes validator.ValidationErrors
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &fes) && len(fes) > 0:
		return fes[0].Field(), fes[0].Translate(val.tr)
	default:
		return "", err.Error()
	}
}
