package services

import (
	"errors"
	"reflect"
	"strings"

	"skillgrid/internal/apperr"
	"skillgrid/internal/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	notBlankTag       = "notblank"
	eventCategoryTag  = "event_category"
	rewardCategoryTag = "reward_category"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(eventCategoryTag, eventCategoryValidation)
	_ = validate.RegisterValidation(rewardCategoryTag, rewardCategoryValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, eventCategoryTag, rewardCategoryTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustomValidationErrs)
	}
}

func translateCustomValidationErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case eventCategoryTag:
		return "must be one of Workshop, Seminar, Hackathon, Club Activity"
	case rewardCategoryTag:
		return "must be one of Merch, Academic, Voucher"
	}
	return ""
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func eventCategoryValidation(fl validator.FieldLevel) bool {
	switch models.EventCategory(fl.Field().String()) {
	case models.CategoryWorkshop, models.CategorySeminar, models.CategoryHackathon, models.CategoryClubActivity:
		return true
	}
	return false
}

func rewardCategoryValidation(fl validator.FieldLevel) bool {
	switch models.RewardCategory(fl.Field().String()) {
	case models.RewardCategoryMerch, models.RewardCategoryAcademic, models.RewardCategoryVoucher:
		return true
	}
	return false
}

// validateInput runs struct validation and converts failures to a Validation error
// keyed by JSON field path.
func validateInput(in interface{}, msg string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	fields := make(map[string]string, len(vErrs))
	for _, vErr := range vErrs {
		fields[fieldPath(vErr.Namespace())] = vErr.Translate(translator)
	}
	return apperr.Invalid(msg, fields)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
