package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

var flexIntType = reflect.TypeOf(FlexInt{})

// Request is the registration form as posted by the web client.
type Request struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"nombre"`
	LastName    string `json:"apellido"`
	AccountKind string `json:"tipo_usuario"`

	BrandName        string   `json:"nombreMarca"`
	FoundedYear      FlexInt  `json:"anioFundacion"`
	BrandDescription string   `json:"descripcionMarca"`
	BrandStyles      []string `json:"estilosMarca"`

	ShowroomName        string   `json:"nombreShowroom"`
	Address             string   `json:"direccion"`
	City                string   `json:"ciudad"`
	Capacity            FlexInt  `json:"capacidadMarcas"`
	ShowroomDescription string   `json:"descripcionShowroom"`
	ShowroomStyles      []string `json:"estilosShowroom"`
}

// FlexInt accepts a JSON number or a numeric string. Empty strings and null
// leave it unset; a value that is not an integer is kept as Raw so the
// validator can reject it with a field message.
type FlexInt struct {
	Value int
	Set   bool
	Raw   string
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	} else if data[0] != '-' && (data[0] < '0' || data[0] > '9') {
		return &json.UnmarshalTypeError{Value: raw, Type: flexIntType}
	}

	f.Set = true
	f.Raw = raw
	f.Value, _ = parseWhole(raw)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// Int returns the parsed value and whether it is a usable integer.
func (f FlexInt) Int() (int, bool) {
	if !f.Set {
		return 0, false
	}
	return parseWhole(f.Raw)
}

// NewFlexInt is a convenience for building requests in code.
func NewFlexInt(v int) FlexInt {
	return FlexInt{Value: v, Set: true, Raw: strconv.Itoa(v)}
}

// parseWhole accepts integers and floats with no fractional part.
func parseWhole(raw string) (int, bool) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, true
	}
	fv, err := strconv.ParseFloat(raw, 64)
	if err != nil || fv != float64(int(fv)) {
		return 0, false
	}
	return int(fv), true
}
