package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"cctv-surveillance-reports/be/vocab"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the validator behind every model's Validate method.
// Rules live in `binding` struct tags, the same key gin reads on bind.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		RegisterRules(validate)
	})
	return validate
}

// RegisterRules installs json field naming and the vocabulary tags
// (`location`, `intensity`) on v.
func RegisterRules(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("location", inSet(vocab.Locations())); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("intensity", inSet(vocab.Intensities())); err != nil {
		panic(err)
	}
}

func inSet(set vocab.Set) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return set.Contains(fl.Field().String())
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// IsInvalid reports whether err carries field rule failures.
func IsInvalid(err error) bool {
	var ves validator.ValidationErrors
	return errors.As(err, &ves)
}

// MissingRequired reports whether any failure in err is an absent required field.
func MissingRequired(err error) bool {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return false
	}
	for _, fe := range ves {
		if fe.Tag() == "required" {
			return true
		}
	}
	return false
}

// Messages renders one message per failed field, in field order.
func Messages(err error) []string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, message(fe))
	}
	return msgs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Path `%s` is required.", fe.Field())
	case "min":
		return fmt.Sprintf("Path `%s` (%v) is less than minimum allowed value (%s).", fe.Field(), value(fe), fe.Param())
	case "location", "intensity":
		return fmt.Sprintf("`%v` is not a valid enum value for path `%s`.", value(fe), fe.Field())
	}
	return fmt.Sprintf("Validator failed for path `%s` with value `%v`", fe.Field(), value(fe))
}

func value(fe validator.FieldError) interface{} {
	v := reflect.ValueOf(fe.Value())
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func check(rec interface{}) []string {
	if err := Validator().Struct(rec); err != nil {
		return Messages(err)
	}
	return nil
}
