package usecases

import (
	"fmt"
	"regexp"
	"sort"

	"rumfor-market.backend/internal/domain/entities"
)

// FieldErrors maps field names to human-readable validation messages
type FieldErrors map[string]string

// FieldSpec is the compiled validation rule for one form field, one variant
// per field type. Specs are immutable once compiled.
type FieldSpec struct {
	Name     string
	Kind     entities.FieldType
	Required bool
	Options  []string
	MinLen   int
	MaxLen   int
	Email    bool
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// baseFieldSpecs are the fixed fields every market application form carries,
// mirroring the default form schema of the web client.
func baseFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{Name: "businessName", Kind: entities.FieldTypeText, Required: true, MinLen: 2},
		{Name: "businessDescription", Kind: entities.FieldTypeTextarea, Required: true, MinLen: 50},
		{Name: "experience", Kind: entities.FieldTypeText, Required: true, MinLen: 1},
		{Name: "contactEmail", Kind: entities.FieldTypeText, Required: true, Email: true},
		{Name: "contactPhone", Kind: entities.FieldTypeText, Required: true, MinLen: 10},
		{Name: "website", Kind: entities.FieldTypeText},
	}
}

// FormValidator checks a complete value mapping against compiled field specs
type FormValidator struct {
	specs map[string]FieldSpec
}

// CompileFieldSchema builds a validator from a market's custom field list
// plus the fixed base fields. Compilation is deterministic: field ordering
// never changes validator behavior. A custom field colliding with a base
// field name, duplicating another custom field, or carrying an unknown type
// is a compile error.
func CompileFieldSchema(fields []entities.CustomField) (*FormValidator, error) {
	specs := make(map[string]FieldSpec)
	for _, base := range baseFieldSpecs() {
		specs[base.Name] = base
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("custom field with empty name")
		}
		if _, exists := specs[f.Name]; exists {
			return nil, fmt.Errorf("custom field %q collides with an existing field", f.Name)
		}
		spec := FieldSpec{
			Name:     f.Name,
			Kind:     f.Type,
			Required: f.Required,
			Options:  append([]string(nil), f.Options...),
		}
		switch f.Type {
		case entities.FieldTypeText, entities.FieldTypeSelect, entities.FieldTypeRadio,
			entities.FieldTypeCheckbox, entities.FieldTypeFile:
		case entities.FieldTypeTextarea:
			if f.Validation != nil {
				spec.MinLen = f.Validation.MinLength
				spec.MaxLen = f.Validation.MaxLength
			}
		default:
			return nil, fmt.Errorf("custom field %q has unknown type %q", f.Name, f.Type)
		}
		specs[f.Name] = spec
	}

	return &FormValidator{specs: specs}, nil
}

// Specs returns the compiled field specs sorted by name
func (v *FormValidator) Specs() []FieldSpec {
	out := make([]FieldSpec, 0, len(v.specs))
	for _, s := range v.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FieldNames returns all compiled field names sorted
func (v *FormValidator) FieldNames() []string {
	names := make([]string, 0, len(v.specs))
	for name := range v.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the full value mapping and returns per-field messages.
// An empty result means the mapping is valid.
func (v *FormValidator) Validate(values map[string]interface{}) FieldErrors {
	return v.ValidateFields(values, v.FieldNames())
}

// ValidateFields checks only the named fields; unknown names are ignored
func (v *FormValidator) ValidateFields(values map[string]interface{}, names []string) FieldErrors {
	errs := make(FieldErrors)
	for _, name := range names {
		spec, ok := v.specs[name]
		if !ok {
			continue
		}
		if msg := validateValue(spec, values[spec.Name]); msg != "" {
			errs[spec.Name] = msg
		}
	}
	return errs
}

// validateValue dispatches on the spec variant
func validateValue(spec FieldSpec, value interface{}) string {
	switch spec.Kind {
	case entities.FieldTypeCheckbox:
		return validateCheckbox(spec, value)
	case entities.FieldTypeFile:
		return validateFile(spec, value)
	case entities.FieldTypeSelect, entities.FieldTypeRadio:
		return validateChoice(spec, value)
	default:
		return validateString(spec, value)
	}
}

func validateString(spec FieldSpec, value interface{}) string {
	s, empty, ok := stringValue(value)
	if empty {
		if spec.Required {
			return fmt.Sprintf("%s is required", spec.Name)
		}
		return ""
	}
	if !ok {
		return fmt.Sprintf("%s must be a string", spec.Name)
	}
	if spec.MinLen > 0 && len(s) < spec.MinLen {
		return fmt.Sprintf("%s must be at least %d characters", spec.Name, spec.MinLen)
	}
	if spec.MaxLen > 0 && len(s) > spec.MaxLen {
		return fmt.Sprintf("%s must be less than %d characters", spec.Name, spec.MaxLen)
	}
	if spec.Email && !emailPattern.MatchString(s) {
		return fmt.Sprintf("%s must be a valid email address", spec.Name)
	}
	return ""
}

// validateChoice restricts select/radio values to the declared options.
// An empty options list accepts any string; that degenerate case is kept
// rather than silently dropping the field.
func validateChoice(spec FieldSpec, value interface{}) string {
	s, empty, ok := stringValue(value)
	if empty {
		if spec.Required {
			return fmt.Sprintf("%s is required", spec.Name)
		}
		return ""
	}
	if !ok {
		return fmt.Sprintf("%s must be a string", spec.Name)
	}
	if len(spec.Options) == 0 {
		return ""
	}
	for _, opt := range spec.Options {
		if s == opt {
			return ""
		}
	}
	return fmt.Sprintf("%s must be one of the allowed options", spec.Name)
}

func validateCheckbox(spec FieldSpec, value interface{}) string {
	selected, ok := stringSlice(value)
	if !ok {
		return fmt.Sprintf("%s must be a list of options", spec.Name)
	}
	if spec.Required && len(selected) == 0 {
		return fmt.Sprintf("%s is required", spec.Name)
	}
	if len(spec.Options) == 0 {
		return ""
	}
	for _, s := range selected {
		found := false
		for _, opt := range spec.Options {
			if s == opt {
				found = true
				break
			}
		}
		if !found {
			return fmt.Sprintf("%s contains an unknown option", spec.Name)
		}
	}
	return ""
}

// validateFile only enforces presence; size/type checks belong to the
// attachment validator.
func validateFile(spec FieldSpec, value interface{}) string {
	if !spec.Required {
		return ""
	}
	switch v := value.(type) {
	case nil:
		return fmt.Sprintf("%s is required", spec.Name)
	case string:
		if v == "" {
			return fmt.Sprintf("%s is required", spec.Name)
		}
	case entities.UploadedFile:
		if v.Name == "" {
			return fmt.Sprintf("%s is required", spec.Name)
		}
	case *entities.UploadedFile:
		if v == nil || v.Name == "" {
			return fmt.Sprintf("%s is required", spec.Name)
		}
	}
	return ""
}

// stringValue coerces a form value to a string. empty is true for nil or "".
func stringValue(value interface{}) (s string, empty, ok bool) {
	if value == nil {
		return "", true, false
	}
	str, isStr := value.(string)
	if !isStr {
		return "", false, false
	}
	if str == "" {
		return "", true, true
	}
	return str, false, true
}

// stringSlice coerces a checkbox value to a string set. nil is an empty set;
// JSON-decoded bodies arrive as []interface{}.
func stringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
