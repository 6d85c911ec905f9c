package service

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
)

// ValidationMode selects create or update rules.
type ValidationMode int

const (
	ModeCreate ValidationMode = iota
	ModeUpdate
)

var fieldLabels = map[string]string{
	"id":              "ID",
	"first_name":      "First name",
	"last_name":       "Last name",
	"email":           "Email",
	"phone":           "Phone",
	"gender":          "Gender",
	"address":         "Address",
	"date_of_birth":   "Date of birth",
	"enrollment_date": "Enrollment date",
}

// StudentValidator turns raw request input into normalized student fields.
// It never touches storage.
type StudentValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewStudentValidator registers the student rules on validate, which may be nil.
func NewStudentValidator(validate *validator.Validate) *StudentValidator {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
	return &StudentValidator{validate: validate, now: time.Now}
}

// WithClock overrides the clock used to default the enrollment date.
func (v *StudentValidator) WithClock(now func() time.Time) *StudentValidator {
	v.now = now
	return v
}

// Validate checks every rule and collects all field errors. On success the
// returned errors map is nil.
func (v *StudentValidator) Validate(input map[string]interface{}, mode ValidationMode) (*dto.StudentFields, map[string]string) {
	errs := make(map[string]string)
	payload := dto.StudentPayload{}

	if mode == ModeUpdate {
		payload.ID = extractID(input, errs)
	}
	payload.FirstName = requiredString(input, "first_name", errs)
	payload.LastName = requiredString(input, "last_name", errs)
	payload.Email = requiredString(input, "email", errs)
	payload.Phone = optionalString(input, "phone", errs)
	payload.Gender = optionalString(input, "gender", errs)
	payload.Address = optionalString(input, "address", errs)
	payload.DateOfBirth = optionalString(input, "date_of_birth", errs)
	payload.EnrollmentDate = optionalString(input, "enrollment_date", errs)

	var err error
	if mode == ModeUpdate {
		err = v.validate.Struct(payload)
	} else {
		err = v.validate.StructExcept(payload, "ID")
	}
	if err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			errs["_"] = err.Error()
		}
		for _, fe := range fieldErrs {
			if _, exists := errs[fe.Field()]; exists {
				continue
			}
			errs[fe.Field()] = message(fe)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	fields := &dto.StudentFields{
		ID:        payload.ID,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Gender:    payload.Gender,
		Address:   payload.Address,
	}
	fields.DateOfBirth = parseOptionalDate(payload.DateOfBirth)
	fields.EnrollmentDate = parseOptionalDate(payload.EnrollmentDate)
	if fields.EnrollmentDate == nil && mode == ModeCreate {
		today := models.NewDate(v.now().UTC())
		fields.EnrollmentDate = &today
	}
	return fields, nil
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		if fe.Field() == "id" {
			return "ID is required for update."
		}
		return name + " is required."
	case "gt":
		return "ID must be a positive integer."
	case "max":
		return fmt.Sprintf("%s is too long (max %s characters).", name, fe.Param())
	case "email":
		return "Email format is invalid."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", name, strings.Join(strings.Fields(fe.Param()), ", "))
	case "isodate":
		return name + " must be in YYYY-MM-DD format."
	default:
		return name + " is invalid."
	}
}

// extractID accepts JSON numbers and numeric strings. Zero is returned when
// the key is absent so the required rule reports it.
func extractID(input map[string]interface{}, errs map[string]string) int64 {
	raw, ok := input["id"]
	if !ok || raw == nil {
		return 0
	}
	id, ok := ParseID(raw)
	if !ok {
		if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
			return 0
		}
		errs["id"] = "ID must be a positive integer."
	}
	return id
}

// ParseID converts a raw identifier into a positive int64.
func ParseID(raw interface{}) (int64, bool) {
	var id int64
	switch v := raw.(type) {
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 {
			return 0, false
		}
		id = int64(v)
	case int:
		id = int64(v)
	case int64:
		id = v
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	default:
		return 0, false
	}
	if id < 1 {
		return 0, false
	}
	return id, true
}

func requiredString(input map[string]interface{}, key string, errs map[string]string) string {
	raw, ok := input[key]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		errs[key] = label(key) + " must be a string."
		return ""
	}
	return strings.TrimSpace(s)
}

func optionalString(input map[string]interface{}, key string, errs map[string]string) *string {
	s := requiredString(input, key, errs)
	if s == "" {
		return nil
	}
	return &s
}

func parseOptionalDate(raw *string) *models.Date {
	if raw == nil {
		return nil
	}
	d, err := models.ParseDate(*raw)
	if err != nil {
		return nil
	}
	return &d
}
