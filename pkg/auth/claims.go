package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims accepted by the prediction API. Subject names the caller.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole reports whether the claims carry role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Role constants
const (
	RoleAdmin     = "admin"
	RoleClinician = "clinician"
	RoleAPIClient = "api_client"
)

// PredictRoles may request predictions.
var PredictRoles = []string{RoleAdmin, RoleClinician, RoleAPIClient}
