package signup

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	accountdomain "github.com/smallbiznis/atelier/internal/account/domain"
	"github.com/smallbiznis/atelier/internal/signup/domain"
)

const (
	maxTextLen       = 255
	maxEmailLen      = 254
	minNameLen       = 2
	minPasswordLen   = 8
	maxPasswordBytes = 72
	minFoundedYear   = 1800
	minCapacity      = 1
	maxCapacity      = 100
	brandKindAlias   = "marca"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	namePattern     = regexp.MustCompile(`^[\p{Latin}\s'-]+$`)
	markupCharacter = strings.NewReplacer("<", "", ">", "")
)

type validator struct{}

func NewValidator() domain.Validator {
	return validator{}
}

// Validate applies the registration rules in a fixed order and stops at the
// first failure.
func (validator) Validate(req domain.Request, now time.Time) (domain.Input, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	kindRaw := strings.ToLower(strings.TrimSpace(req.AccountKind))

	switch {
	case email == "":
		return domain.Input{}, required("email")
	case strings.TrimSpace(req.Password) == "":
		return domain.Input{}, required("password")
	case sanitize(firstName) == "":
		return domain.Input{}, required("nombre")
	case sanitize(lastName) == "":
		return domain.Input{}, required("apellido")
	case kindRaw == "":
		return domain.Input{}, required("tipo_usuario")
	}

	// An unknown kind has no extra required fields; it fails below.
	kind, kindOK := parseKind(kindRaw)
	if kindOK {
		if err := requireKindFields(kind, req); err != nil {
			return domain.Input{}, err
		}
	}

	if !emailPattern.MatchString(email) {
		return domain.Input{}, &domain.ValidationError{Field: "email", Message: "email format is invalid"}
	}
	if len(email) > maxEmailLen {
		return domain.Input{}, &domain.ValidationError{Field: "email", Message: "email must be at most 254 characters long"}
	}
	if err := validatePassword(req.Password); err != nil {
		return domain.Input{}, err
	}
	// Names are checked before markup stripping so "<Ana>" is refused.
	if err := validateName("nombre", firstName); err != nil {
		return domain.Input{}, err
	}
	if err := validateName("apellido", lastName); err != nil {
		return domain.Input{}, err
	}
	if !kindOK {
		return domain.Input{}, &domain.ValidationError{Field: "tipo_usuario", Message: "account type must be brand or showroom"}
	}

	in := domain.Input{
		Email:     email,
		Password:  req.Password,
		FirstName: sanitize(firstName),
		LastName:  sanitize(lastName),
		Kind:      kind,
	}

	switch kind {
	case accountdomain.KindBrand:
		brand, err := validateBrand(req, now)
		if err != nil {
			return domain.Input{}, err
		}
		in.Brand = brand
	case accountdomain.KindShowroom:
		showroom, err := validateShowroom(req)
		if err != nil {
			return domain.Input{}, err
		}
		in.Showroom = showroom
	}

	return in, nil
}

func requireKindFields(kind accountdomain.Kind, req domain.Request) error {
	switch kind {
	case accountdomain.KindBrand:
		if sanitize(req.BrandName) == "" {
			return required("nombreMarca")
		}
	case accountdomain.KindShowroom:
		switch {
		case sanitize(req.ShowroomName) == "":
			return required("nombreShowroom")
		case sanitize(req.Address) == "":
			return required("direccion")
		case sanitize(req.City) == "":
			return required("ciudad")
		}
	}
	return nil
}

func validateBrand(req domain.Request, now time.Time) (*domain.BrandInput, error) {
	brand := &domain.BrandInput{
		Name:        sanitize(req.BrandName),
		Description: optionalText(req.BrandDescription),
		Styles:      normalizeStyles(req.BrandStyles),
	}

	if req.FoundedYear.Set {
		year, ok := req.FoundedYear.Int()
		if !ok || year < minFoundedYear || year > now.Year() {
			return nil, &domain.ValidationError{Field: "anioFundacion", Message: "founding year is invalid"}
		}
		brand.FoundedYear = &year
	}
	return brand, nil
}

func validateShowroom(req domain.Request) (*domain.ShowroomInput, error) {
	showroom := &domain.ShowroomInput{
		Name:        sanitize(req.ShowroomName),
		Description: optionalText(req.ShowroomDescription),
		Address:     sanitize(req.Address),
		City:        sanitize(req.City),
		Styles:      normalizeStyles(req.ShowroomStyles),
	}

	if req.Capacity.Set {
		capacity, ok := req.Capacity.Int()
		if !ok || capacity < minCapacity || capacity > maxCapacity {
			return nil, &domain.ValidationError{Field: "capacidadMarcas", Message: "brand capacity must be between 1 and 100"}
		}
		showroom.Capacity = &capacity
	}
	return showroom, nil
}

func validatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLen:
		return &domain.ValidationError{Field: "password", Message: "password must be at least 8 characters long"}
	case !digitPattern.MatchString(password):
		return &domain.ValidationError{Field: "password", Message: "password must contain at least one number"}
	case !specialPattern.MatchString(password):
		return &domain.ValidationError{Field: "password", Message: "password must contain at least one special character"}
	case !upperPattern.MatchString(password):
		return &domain.ValidationError{Field: "password", Message: "password must contain at least one uppercase letter"}
	case len(password) > maxPasswordBytes:
		// bcrypt only reads the first 72 bytes.
		return &domain.ValidationError{Field: "password", Message: "password must be at most 72 bytes long"}
	}
	return nil
}

func validateName(field, name string) error {
	if utf8.RuneCountInString(name) < minNameLen {
		return &domain.ValidationError{Field: field, Message: "name must be at least 2 characters long"}
	}
	if !namePattern.MatchString(name) {
		return &domain.ValidationError{Field: field, Message: "name contains characters that are not allowed"}
	}
	return nil
}

func parseKind(raw string) (accountdomain.Kind, bool) {
	if raw == brandKindAlias {
		return accountdomain.KindBrand, true
	}
	kind := accountdomain.Kind(raw)
	return kind, kind.Valid()
}

func required(field string) *domain.ValidationError {
	return &domain.ValidationError{Field: field, Message: field + " is required"}
}

// sanitize trims, removes angle brackets and caps the length in runes.
func sanitize(s string) string {
	s = strings.TrimSpace(markupCharacter.Replace(strings.TrimSpace(s)))
	if utf8.RuneCountInString(s) <= maxTextLen {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxTextLen]))
}

func optionalText(s string) *string {
	s = sanitize(s)
	if s == "" {
		return nil
	}
	return &s
}

// normalizeStyles sanitises labels and drops blanks and repeats, keeping
// the first occurrence order.
func normalizeStyles(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		label = sanitize(label)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
