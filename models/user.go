package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Credentials are what the user types on the login screen.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /v1/register/.
type RegisterRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
	// Password2 is the confirmation field; the server rejects mismatches.
	Password2 string `json:"password2"`
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	Message string        `json:"message"`
	Token   TokenResponse `json:"token"`
}

// Profile is the current user together with the fields of their package.
type Profile struct {
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	PackageName string   `json:"package_name"`
	MaxStorage  FlexInt  `json:"max_storage"`
	Chat        FlexBool `json:"chat"`
	ImageGen    FlexBool `json:"img_gen"`
}

// ProfileEnvelope is the wire shape of GET /v1/self/.
type ProfileEnvelope struct {
	User Profile `json:"user"`
}

// ProfileUpdate is a partial profile update; empty fields are not sent.
type ProfileUpdate struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// IsEmpty reports whether the update carries no field at all.
func (u ProfileUpdate) IsEmpty() bool {
	return u == ProfileUpdate{}
}

// UsernameResponse is the wire shape of GET /v1/username/.
type UsernameResponse struct {
	Username string `json:"username"`
}

// FlexBool decodes booleans the API sometimes serializes as strings
// ("True", "false", "1").
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case bool:
		*b = FlexBool(value)
	case string:
		parsed, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(value)))
		if err != nil {
			return err
		}
		*b = FlexBool(parsed)
	case float64:
		*b = value != 0
	case nil:
		*b = false
	default:
		return fmt.Errorf("cannot decode %s as bool", data)
	}
	return nil
}

// FlexInt decodes integers that may arrive as JSON strings.
type FlexInt int64

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*i = FlexInt(value)
	case string:
		if strings.TrimSpace(value) == "" {
			*i = 0
			return nil
		}
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return err
		}
		*i = FlexInt(parsed)
	case nil:
		*i = 0
	default:
		return fmt.Errorf("cannot decode %s as integer", data)
	}
	return nil
}
