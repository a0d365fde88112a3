package paysuite

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequiredPaymentFields lists the payload keys a payment request must carry,
// in the order they are checked.
var RequiredPaymentFields = []string{"amount", "reference", "description", "return_url"}

var errNotNumeric = errors.New("value is not numeric")

type ValidatorFunc func(interface{}) *AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

// Required rejects values IsBlank reports as blank.
func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *AppError {
		if IsBlank(value) {
			return NewValidationFieldError(fv.FieldName, fmt.Sprintf("Missing required field: %s", fv.FieldName), ErrCodeMissingField)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) PositiveAmount() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *AppError {
		amount, err := ParseAmount(value)
		if err != nil || !amount.IsPositive() {
			return NewValidationFieldError(fv.FieldName, ErrInvalidAmount.Message, ErrCodeInvalidAmount)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) AbsoluteURL() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *AppError {
		if !IsAbsoluteURL(value) {
			return NewValidationFieldError(fv.FieldName, ErrInvalidReturnURL.Message, ErrCodeInvalidReturnURL)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) UUIDv4() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *AppError {
		s, _ := value.(string)
		if !IsUUIDv4(s) {
			return NewValidationFieldError(fv.FieldName, ErrInvalidUUID.Message, ErrCodeInvalidUUID)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every registered rule. The returned error reads as the first
// failure; Details holds all of them.
func (v *ValidationBuilder) Validate() *AppError {
	var failures []*AppError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				if err.Field == "" {
					err.Field = field.FieldName
				}
				failures = append(failures, err)
			}
		}
	}

	if len(failures) == 0 {
		return nil
	}

	details := ValidationErrors{Errors: make([]ValidationError, len(failures))}
	for i, f := range failures {
		details.Errors[i] = ValidationError{Field: f.Field, Message: f.Message, Code: string(f.Code)}
	}

	first := failures[0]
	return NewValidationFieldError(first.Field, first.Message, first.Code).WithDetails(details)
}

// ValidatePaymentPayload checks presence of every required field before the
// amount and return_url rules, so a missing field always wins.
func ValidatePaymentPayload(data Payload) error {
	required := NewValidator()
	for _, field := range RequiredPaymentFields {
		required.Field(field, data[field]).Required()
	}
	if appErr := required.Validate(); appErr != nil {
		return appErr
	}

	rules := NewValidator()
	rules.Field("amount", data["amount"]).PositiveAmount()
	rules.Field("return_url", data["return_url"]).AbsoluteURL()
	if appErr := rules.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func ValidatePaymentID(id string) error {
	validator := NewValidator()
	validator.Field("id", id).UUIDv4()
	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// IsBlank reports whether a payload value counts as missing: nil, "", false,
// numeric zero, empty collections, and the literal string "0". The "0" case
// is kept for compatibility with the other PaySuite SDKs, so {"amount": "0"}
// is a missing amount while "0.00" is a non-positive one.
func IsBlank(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == "" || v == "0"
	case bool:
		return !v
	case json.Number:
		return v == "" || v == "0"
	case decimal.Decimal:
		return v.IsZero()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsBlank(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.String:
		return rv.String() == "" || rv.String() == "0"
	case reflect.Bool:
		return !rv.Bool()
	}
	return false
}

// ParseAmount accepts decimal strings (surrounding whitespace allowed),
// json.Number, decimal.Decimal and Go numeric types.
func ParseAmount(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case json.Number:
		return parseDecimalString(string(v))
	case string:
		return parseDecimalString(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, errNotNumeric
		}
		return decimal.NewFromFloat(f), nil
	}
	return decimal.Zero, errNotNumeric
}

func parseDecimalString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errNotNumeric
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errNotNumeric
	}
	return d, nil
}

// IsAbsoluteURL reports whether value is a string URL with a scheme, a valid
// host name or IP address, and a port within 0-65535 when one is given.
func IsAbsoluteURL(value interface{}) bool {
	s, ok := value.(string)
	if !ok || s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n > 65535 {
			return false
		}
	}
	return isValidHost(u.Hostname())
}

// isValidHost accepts IP literals and LDH host names: labels of letters,
// digits and inner hyphens, at most 63 bytes each.
func isValidHost(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
				return false
			}
		}
	}
	return true
}

// IsUUIDv4 accepts only the canonical 8-4-4-4-12 form with version 4 and the
// RFC 4122 variant, in either letter case.
func IsUUIDv4(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Version() == 4 && id.Variant() == uuid.RFC4122
}
