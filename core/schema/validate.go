package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// RuleFunc checks a single validation rule against a value.
// It returns a non-empty message when the rule fails.
type RuleFunc func(value reflect.Value, params []string) string

var (
	ruleRegistryMu sync.RWMutex
	ruleRegistry   = map[string]RuleFunc{
		"required": requiredRule,
		"min":      minRule,
		"max":      maxRule,
		"between":  betweenRule,
		"len":      lenRule,
		"email":    emailRule,
		"regex":    regexRule,
		"in":       inRule,
		"alpha":    alphaRule,
		"alphanum": alphanumRule,
		"numeric":  numericRule,
		"positive": positiveRule,
		"nonzero":  nonZeroRule,
	}
)

// RegisterRule adds a custom validation rule to the registry.
func RegisterRule(name string, fn RuleFunc) {
	ruleRegistryMu.Lock()
	defer ruleRegistryMu.Unlock()
	ruleRegistry[name] = fn
}

// ValidateValue checks a value against a `validate` tag.
// Rules are separated by semicolons, parameters by a colon and commas:
// "required;min:2;max:50". An empty tag always passes.
func ValidateValue(field string, value reflect.Value, tag string) error {
	if tag == "" || tag == "-" {
		return nil
	}

	for value.Kind() == reflect.Pointer && !value.IsNil() {
		value = value.Elem()
	}

	var errs ValidationErrors

	ruleRegistryMu.RLock()
	defer ruleRegistryMu.RUnlock()

	for _, ruleStr := range strings.Split(tag, ";") {
		ruleStr = strings.TrimSpace(ruleStr)
		if ruleStr == "" {
			continue
		}

		name, paramStr, _ := strings.Cut(ruleStr, ":")
		name = strings.TrimSpace(name)

		var params []string
		if paramStr = strings.TrimSpace(paramStr); paramStr != "" {
			params = strings.Split(paramStr, ",")
			for i := range params {
				params[i] = strings.TrimSpace(params[i])
			}
		}

		if fn, ok := ruleRegistry[name]; ok {
			if msg := fn(value, params); msg != "" {
				errs = append(errs, ValidationError{Field: field, Message: msg})
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateStruct checks every field of a struct value against its `validate` tags.
// Field names in errors use the wire name resolved through alias.
func ValidateStruct(v reflect.Value, alias AliasFunc) error {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ErrNotStruct
	}

	fields, err := FieldsOf(v.Type())
	if err != nil {
		return err
	}

	var errs ValidationErrors
	for _, f := range fields {
		if f.ValidateTag == "" {
			continue
		}
		if err := ValidateValue(f.WireName(alias), v.Field(f.Index), f.ValidateTag); err != nil {
			if ve := ExtractValidationErrors(err); ve != nil {
				errs = append(errs, ve...)
			} else {
				return err
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Built-in rules

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	alphaPattern    = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphanumPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	numericPattern  = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
)

func requiredRule(value reflect.Value, _ []string) string {
	ok := false
	switch value.Kind() {
	case reflect.String:
		ok = strings.TrimSpace(value.String()) != ""
	case reflect.Slice, reflect.Map, reflect.Array:
		ok = value.Len() > 0
	case reflect.Pointer, reflect.Interface:
		ok = !value.IsNil()
	case reflect.Invalid:
		ok = false
	default:
		ok = !value.IsZero()
	}
	if !ok {
		return "field is required"
	}
	return ""
}

// sizeOf measures strings and collections by length, numbers by value.
func sizeOf(value reflect.Value) (float64, bool) {
	switch value.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return float64(value.Len()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(value.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(value.Uint()), true
	case reflect.Float32, reflect.Float64:
		return value.Float(), true
	default:
		return 0, false
	}
}

func minRule(value reflect.Value, params []string) string {
	if len(params) != 1 {
		return ""
	}
	limit, err := strconv.ParseFloat(params[0], 64)
	if err != nil {
		return ""
	}
	if size, ok := sizeOf(value); ok && size < limit {
		return fmt.Sprintf("must be at least %s", params[0])
	}
	return ""
}

func maxRule(value reflect.Value, params []string) string {
	if len(params) != 1 {
		return ""
	}
	limit, err := strconv.ParseFloat(params[0], 64)
	if err != nil {
		return ""
	}
	if size, ok := sizeOf(value); ok && size > limit {
		return fmt.Sprintf("must be at most %s", params[0])
	}
	return ""
}

func betweenRule(value reflect.Value, params []string) string {
	if len(params) != 2 {
		return ""
	}
	if msg := minRule(value, params[:1]); msg != "" {
		return fmt.Sprintf("must be between %s and %s", params[0], params[1])
	}
	if msg := maxRule(value, params[1:]); msg != "" {
		return fmt.Sprintf("must be between %s and %s", params[0], params[1])
	}
	return ""
}

func lenRule(value reflect.Value, params []string) string {
	if len(params) != 1 {
		return ""
	}
	want, err := strconv.Atoi(params[0])
	if err != nil {
		return ""
	}
	switch value.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		if value.Len() != want {
			return fmt.Sprintf("must have length %d", want)
		}
	}
	return ""
}

func emailRule(value reflect.Value, _ []string) string {
	if value.Kind() == reflect.String && !emailPattern.MatchString(value.String()) {
		return "must be a valid email address"
	}
	return ""
}

func regexRule(value reflect.Value, params []string) string {
	if len(params) == 0 || value.Kind() != reflect.String {
		return ""
	}
	// The tag splits params on commas, rejoin to preserve patterns containing them.
	pattern := strings.Join(params, ",")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ""
	}
	if !re.MatchString(value.String()) {
		return "does not match required pattern"
	}
	return ""
}

func inRule(value reflect.Value, params []string) string {
	if value.Kind() != reflect.String {
		return ""
	}
	for _, p := range params {
		if value.String() == p {
			return ""
		}
	}
	return "must be one of: " + strings.Join(params, ", ")
}

func alphaRule(value reflect.Value, _ []string) string {
	if value.Kind() == reflect.String && !alphaPattern.MatchString(value.String()) {
		return "must contain only letters"
	}
	return ""
}

func alphanumRule(value reflect.Value, _ []string) string {
	if value.Kind() == reflect.String && !alphanumPattern.MatchString(value.String()) {
		return "must contain only letters and numbers"
	}
	return ""
}

func numericRule(value reflect.Value, _ []string) string {
	if value.Kind() == reflect.String && !numericPattern.MatchString(value.String()) {
		return "must be numeric"
	}
	return ""
}

func positiveRule(value reflect.Value, _ []string) string {
	if size, ok := sizeOf(value); ok && value.Kind() != reflect.String && size <= 0 {
		return "must be positive"
	}
	return ""
}

func nonZeroRule(value reflect.Value, _ []string) string {
	if value.IsZero() {
		return "must not be zero"
	}
	return ""
}
