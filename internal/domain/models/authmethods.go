// internal/domain/models/authmethods.go
package models

import "strings"

// Auth methods a HotSpoT account can sign in with.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
)

// AuthMethod pairs a stored auth method value with a display label.
type AuthMethod struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AllAuthMethods lists every supported auth method.
var AllAuthMethods = []AuthMethod{
	{Value: AuthPassword, Label: "Email & password"},
	{Value: AuthGoogle, Label: "Google (campus account)"},
}

// IsValidAuthMethod reports whether v names a supported auth method.
func IsValidAuthMethod(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, m := range AllAuthMethods {
		if m.Value == v {
			return true
		}
	}
	return false
}
