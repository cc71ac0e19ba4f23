// Package validate checks request structs against `validate` struct tags.
//
// Rules (comma separated):
//
//	required        not zero/empty
//	nullable        skip the remaining rules when empty
//	email           valid email address
//	url             http or https URL
//	min=N / max=N   number bounds, or string/slice length bounds
//	gte=N / lte=N   number bounds
//	in=a|b|c        one of the listed values
//	dive            validate every element of a slice of structs
//
// Error keys are json field names; nested elements are reported as
// "items[0].quantity".
//
//	type LineInput struct {
//	    ProductID uint `json:"productId" validate:"required"`
//	    Quantity  int  `json:"quantity"  validate:"required,min=1"`
//	}
//	type PlaceInput struct {
//	    Items []LineInput `json:"items" validate:"required,min=1,dive"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Struct validates v and returns field → message; an empty map means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		walk(rv, "", errs)
	}
	return errs
}

func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func walk(rv reflect.Value, prefix string, errs map[string]string) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := prefix + jsonFieldName(field)
		value := rv.Field(i)
		rules := strings.Split(tag, ",")

		if contains(rules, "nullable") && isEmpty(value) {
			continue
		}

		failed := false
		for _, rule := range rules {
			if rule == "nullable" || rule == "dive" {
				continue
			}
			if msg := apply(rule, name, value); msg != "" {
				errs[name] = msg
				failed = true
				break
			}
		}

		if !failed && contains(rules, "dive") {
			dive(value, name, errs)
		}
	}
}

func dive(v reflect.Value, name string, errs map[string]string) {
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return
	}
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		for elem.Kind() == reflect.Ptr && !elem.IsNil() {
			elem = elem.Elem()
		}
		if elem.Kind() == reflect.Struct {
			walk(elem, fmt.Sprintf("%s[%d].", name, i), errs)
		}
	}
}

type ruleFunc func(field string, v reflect.Value, param string) string

var ruleSet map[string]ruleFunc

func init() {
	ruleSet = map[string]ruleFunc{
		"required": func(field string, v reflect.Value, _ string) string {
			if isEmpty(v) {
				return fmt.Sprintf("The %s field is required.", field)
			}
			return ""
		},
		"email": func(field string, v reflect.Value, _ string) string {
			if !emailRE.MatchString(text(v)) {
				return fmt.Sprintf("The %s must be a valid email address.", field)
			}
			return ""
		},
		"url": func(field string, v reflect.Value, _ string) string {
			u, err := url.ParseRequestURI(text(v))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return fmt.Sprintf("The %s must be a valid URL.", field)
			}
			return ""
		},
		"min": func(field string, v reflect.Value, param string) string {
			n := parseFloat(param)
			if f, ok := number(v); ok {
				if f < n {
					return fmt.Sprintf("The %s must be at least %s.", field, param)
				}
				return ""
			}
			if float64(length(v)) < n {
				return fmt.Sprintf("The %s must be at least %s %s.", field, param, unit(v))
			}
			return ""
		},
		"max": func(field string, v reflect.Value, param string) string {
			n := parseFloat(param)
			if f, ok := number(v); ok {
				if f > n {
					return fmt.Sprintf("The %s must not be greater than %s.", field, param)
				}
				return ""
			}
			if float64(length(v)) > n {
				return fmt.Sprintf("The %s must not exceed %s %s.", field, param, unit(v))
			}
			return ""
		},
		"gte": func(field string, v reflect.Value, param string) string {
			if f, _ := number(v); f < parseFloat(param) {
				return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
			}
			return ""
		},
		"lte": func(field string, v reflect.Value, param string) string {
			if f, _ := number(v); f > parseFloat(param) {
				return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
			}
			return ""
		},
		"in": func(field string, v reflect.Value, param string) string {
			got := text(v)
			for _, allowed := range strings.Split(param, "|") {
				if got == strings.TrimSpace(allowed) {
					return ""
				}
			}
			return fmt.Sprintf("The selected %s is invalid.", field)
		},
	}
}

func apply(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(strings.TrimSpace(rule), "=")
	fn, ok := ruleSet[key]
	if !ok {
		return ""
	}
	return fn(field, v, param)
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// zeroer and floater let money types such as decimal.Decimal take part in
// required and numeric rules.
type zeroer interface{ IsZero() bool }
type floater interface{ InexactFloat64() float64 }

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		if z, ok := v.Interface().(zeroer); ok {
			return z.IsZero()
		}
	}
	return false
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Ptr:
		if v.IsNil() {
			return 0, false
		}
		return number(v.Elem())
	case reflect.Struct:
		if f, ok := v.Interface().(floater); ok {
			return f.InexactFloat64(), true
		}
	}
	return 0, false
}

func length(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len()
	}
	return len([]rune(text(v)))
}

func unit(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return "items"
	}
	return "characters"
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name[:1]) + f.Name[1:]
	}
	return name
}

func contains(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
