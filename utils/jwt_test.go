package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(jwt.MapClaims{"role": "admin", "type": "admin_auth"}, "secret")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateJWT(token, "secret")
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims["role"] != "admin" {
		t.Errorf("role = %v", claims["role"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Error("expiry claim not set")
	}
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(jwt.MapClaims{"role": "admin"}, "secret")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateJWT(token, "other-secret"); err == nil {
		t.Fatal("token signed with a different secret validated")
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	if _, err := ValidateJWT("not.a.token", "secret"); err == nil {
		t.Fatal("garbage token validated")
	}
}

func TestIsAdminClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   bool
	}{
		{"admin marker", jwt.MapClaims{"role": "admin", "type": "admin_auth"}, true},
		{"wrong role", jwt.MapClaims{"role": "viewer", "type": "admin_auth"}, false},
		{"wrong type", jwt.MapClaims{"role": "admin", "type": "session"}, false},
		{"missing claims", jwt.MapClaims{}, false},
		{"non string values", jwt.MapClaims{"role": 1, "type": true}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAdminClaims(tc.claims); got != tc.want {
				t.Errorf("IsAdminClaims = %v, want %v", got, tc.want)
			}
		})
	}
}
