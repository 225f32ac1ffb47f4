package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/toychauz/toycha-backend/pkg/config"
	"github.com/toychauz/toycha-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "toychauz",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	actorID := uuid.New()

	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		ActorID: actorID,
		Role:    enums.RoleMarket,
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, claims.ActorID)
	}
	if claims.Role != enums.RoleMarket {
		t.Fatalf("expected market role got %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestMintAccessTokenRejectsInvalidPayload(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.RoleMarket}); err == nil {
		t.Fatal("expected error for missing actor id")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{ActorID: uuid.New(), Role: "admin"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		ActorID: uuid.New(),
		Role:    enums.RoleDeliver,
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
	if _, err := ParseAccessTokenAllowExpired(cfg, signed); err != nil {
		t.Fatalf("expired parse should succeed without claims validation: %v", err)
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		ActorID: uuid.New(),
		Role:    enums.RoleDeliver,
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}
