package goAuthClient

import (
	"github.com/golang-jwt/jwt/v5"
)

// fillProfileFromIDToken backfills empty profile fields from the unverified
// claims of a federated ID token. The token is NOT validated here; the
// provider already exchanged it with the backend, these claims are display
// hints only.
func fillProfileFromIDToken(profile UserProfile, idToken string) UserProfile {
	if idToken == "" {
		return profile
	}
	if profile.UserID != "" && profile.DisplayName != "" && profile.Email != "" && profile.Phone != "" {
		return profile
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return profile
	}

	if profile.UserID == "" {
		profile.UserID = stringClaim(claims, "sub")
	}
	if profile.DisplayName == "" {
		profile.DisplayName = stringClaim(claims, "name")
	}
	if profile.Email == "" {
		profile.Email = stringClaim(claims, "email")
	}
	if profile.Phone == "" {
		profile.Phone = stringClaim(claims, "phone_number")
	}

	return profile
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
