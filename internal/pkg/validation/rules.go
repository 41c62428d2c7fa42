package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// SlugPattern: lowercase letters, digits and single hyphens
	SlugPattern = `^[a-z0-9]+(?:-[a-z0-9]+)*$`

	// KeyPattern is used for courseId and lessonId business keys
	KeyPattern = `^[A-Za-z0-9][A-Za-z0-9_-]*$`

	// Rating bounds
	RatingMin = 0.0
	RatingMax = 5.0

	TitleMaxLength = 200
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Slug *regexp.Regexp
	Key  *regexp.Regexp
}{
	Slug: regexp.MustCompile(SlugPattern),
	Key:  regexp.MustCompile(KeyPattern),
}

// IsSlug reports whether s is a well-formed slug
func IsSlug(s string) bool {
	return CompiledPatterns.Slug.MatchString(s)
}

// IsKey reports whether s is a well-formed business key
func IsKey(s string) bool {
	return CompiledPatterns.Key.MatchString(s)
}

// JSONFieldName reports struct fields by their json name in validation errors
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// RegisterRules adds the "slug" and "key" tags to v and names fields by their json tag
func RegisterRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(JSONFieldName)
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("key", func(fl validator.FieldLevel) bool {
		return IsKey(fl.Field().String())
	})
}

var registerOnce sync.Once

// RegisterWithGin installs the custom rules on gin's binding validator.
// Safe to call more than once.
func RegisterWithGin() error {
	var err error
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err = RegisterRules(v)
		}
	})
	return err
}
