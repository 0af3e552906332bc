package handlers

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/salmankavanur/aic-amal-backend/models"
)

func TestCheckOtpChallenge(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("482913"), bcrypt.MinCost)
	assert.NoError(t, err)

	now := time.Now()
	fresh := func() models.OtpVerification {
		return models.OtpVerification{
			Phone:     "9847012345",
			CodeHash:  string(hash),
			ExpiresAt: now.Add(otpTTL),
		}
	}

	t.Run("correct code passes", func(t *testing.T) {
		otp := fresh()
		assert.NoError(t, CheckOtpChallenge(&otp, "482913", now))
	})

	t.Run("used challenge cannot mint a second session", func(t *testing.T) {
		otp := fresh()
		otp.Verified = true
		assert.Error(t, CheckOtpChallenge(&otp, "482913", now))
	})

	t.Run("expired code rejected", func(t *testing.T) {
		otp := fresh()
		otp.ExpiresAt = now.Add(-time.Second)
		assert.Error(t, CheckOtpChallenge(&otp, "482913", now))
	})

	t.Run("attempt limit rejected", func(t *testing.T) {
		otp := fresh()
		otp.Attempts = otpMaxAttempts
		assert.Error(t, CheckOtpChallenge(&otp, "482913", now))
	})

	t.Run("wrong code returns the attempt-counting error", func(t *testing.T) {
		otp := fresh()
		assert.Equal(t, errInvalidOtpCode, CheckOtpChallenge(&otp, "000000", now))
	})
}

func TestGenerateOtpCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateOtpCode()
		assert.NoError(t, err)
		assert.True(t, pattern.MatchString(code), "code %q is not 6 digits", code)
	}
}

func TestSessionTokenRoundtrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	donorId := primitive.NewObjectID()
	session := models.Session{
		TokenId:   "tok-123",
		DonorId:   donorId,
		Phone:     "9847012345",
		Role:      models.RoleSubscriber,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	token, err := MintSessionToken(&session)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseSessionToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "tok-123", claims.ID)
	assert.Equal(t, donorId.Hex(), claims.Subject)
	assert.Equal(t, "9847012345", claims.Phone)
	assert.Equal(t, models.RoleSubscriber, claims.Role)
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	session := models.Session{
		TokenId:   "tok-456",
		Role:      models.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	token, err := MintSessionToken(&session)
	assert.NoError(t, err)

	t.Setenv("JWT_SECRET", "rotated-secret")
	_, err = ParseSessionToken(token)
	assert.Error(t, err)
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	session := models.Session{
		TokenId:   "tok-789",
		Role:      models.RoleSubscriber,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	token, err := MintSessionToken(&session)
	assert.NoError(t, err)

	_, err = ParseSessionToken(token)
	assert.Error(t, err)
}
