package helper

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

// NewValidator returns a validator reading rules from tagName and
// reporting fields by their json name, with English messages registered on
// the returned translator.
func NewValidator(tagName string) (*validator.Validate, ut.Translator) {
	validate := validator.New()
	validate.SetTagName(tagName)
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return Underscore(fld.Name)
		}
		return name
	})

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}
	return validate, trans
}

// FieldErrors groups translated messages by field name. Slice elements
// are reported under their parent field.
func FieldErrors(errs validator.ValidationErrors, trans ut.Translator) map[string][]string {
	out := map[string][]string{}
	translated := errs.Translate(trans)
	for _, err := range errs {
		key := err.Field()
		if i := strings.IndexByte(key, '['); i >= 0 {
			key = key[:i]
		}
		out[key] = append(out[key], translated[err.Namespace()])
	}
	return out
}

// Underscore converts CamelCase to snake_case. Runs of capitals are kept
// together, so CategoryID becomes category_id.
func Underscore(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BindingValidator lets gin's request binding run on validator.v9 so
// binding failures arrive as validator.ValidationErrors.
type BindingValidator struct {
	once     sync.Once
	validate *validator.Validate
}

func NewBindingValidator(validate *validator.Validate) *BindingValidator {
	return &BindingValidator{validate: validate}
}

func (v *BindingValidator) ValidateStruct(obj interface{}) error {
	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.validate.Struct(obj)
}

func (v *BindingValidator) Engine() interface{} {
	v.lazyinit()
	return v.validate
}

func (v *BindingValidator) lazyinit() {
	v.once.Do(func() {
		if v.validate == nil {
			v.validate, _ = NewValidator("binding")
		}
	})
}
