package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSessionTokenService_IssueAndParse(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)
	token, err := svc.Issue("s1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SessionID != "s1" || claims.Subject != "s1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if svc.TTL() != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", svc.TTL())
	}
}

func TestSessionTokenService_Rejects(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)

	t.Run("otro secreto", func(t *testing.T) {
		other := NewSessionTokenService("other", time.Hour)
		token, _ := other.Issue("s1")
		if _, err := svc.Parse(token); !errors.Is(err, ErrSessionTokenInvalid) {
			t.Fatalf("expected ErrSessionTokenInvalid, got %v", err)
		}
	})

	t.Run("expirado", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		claims := SessionClaims{
			SessionID: "s1",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "coffeebot",
				Subject:   "s1",
				IssuedAt:  jwt.NewNumericDate(past),
				ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
			},
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if _, err := svc.Parse(token); !errors.Is(err, ErrSessionTokenExpired) {
			t.Fatalf("expected ErrSessionTokenExpired, got %v", err)
		}
	})

	t.Run("subject distinto", func(t *testing.T) {
		claims := SessionClaims{
			SessionID: "s1",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "coffeebot",
				Subject:   "s2",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if _, err := svc.Parse(token); !errors.Is(err, ErrSessionTokenInvalid) {
			t.Fatalf("expected ErrSessionTokenInvalid, got %v", err)
		}
	})

	t.Run("vacio", func(t *testing.T) {
		if _, err := svc.Parse("  "); !errors.Is(err, ErrSessionTokenInvalid) {
			t.Fatalf("expected ErrSessionTokenInvalid, got %v", err)
		}
	})

	t.Run("sin secreto", func(t *testing.T) {
		noSecret := NewSessionTokenService("", time.Hour)
		if _, err := noSecret.Issue("s1"); !errors.Is(err, ErrSessionTokenInvalid) {
			t.Fatalf("expected ErrSessionTokenInvalid, got %v", err)
		}
	})
}
