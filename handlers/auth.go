package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	client "github.com/salmankavanur/aic-amal-backend/app/clients"
	"github.com/salmankavanur/aic-amal-backend/database"
	"github.com/salmankavanur/aic-amal-backend/models"
)

const (
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5
	sessionTTL     = 30 * 24 * time.Hour

	// MsgPhoneNotRegistered is surfaced when a login is attempted with a
	// phone number that holds no subscription.
	MsgPhoneNotRegistered = "Phone number not registered as a subscriber"
)

type AuthHandler struct {
	*Handler
	SessionDb *mongo.Collection
	Sms       *client.TwilioClient
}

func NewAuthHandler(l *logrus.Logger, sms *client.TwilioClient) *AuthHandler {
	return &AuthHandler{
		Handler:   NewHandler(os.Getenv("OTP_COLLECTION"), l),
		SessionDb: database.GetCollection(os.Getenv("SESSION_COLLECTION")),
		Sms:       sms,
	}
}

// @Summary Check whether a phone number is a registered donor.
// @Description phone lookup that gates the OTP step.
// @Tags auth
// @Accept json
// @Param check_phone body models.CheckPhoneRequest true "Phone to check"
// @Produce json
// @Success 200 {object} models.CheckPhoneResponse
// @Router /api/check-phone [post]
func CheckPhone(a *AuthHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.CheckPhoneRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if err := ValidatePhone(req.Phone); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}

		_, err := a.GetDonorByPhone(req.Phone)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return FiberJsonResponse(c, fiber.StatusOK, "success", "phone checked", models.CheckPhoneResponse{Exists: false})
			}
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed checking phone", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "phone checked", models.CheckPhoneResponse{Exists: true})
	}
}

// @Summary Request a login OTP.
// @Description generates a one-time code and delivers it by SMS. Fails fast
// @Description when the phone is not a registered subscriber.
// @Tags auth
// @Accept json
// @Param otp_request body models.OtpRequest true "Phone requesting login"
// @Produce json
// @Success 200
// @Router /api/auth/otp/request [post]
func RequestOtp(a *AuthHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.OtpRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		if err := ValidatePhone(req.Phone); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}

		if _, err := a.GetDonorByPhone(req.Phone); err != nil {
			if err == mongo.ErrNoDocuments {
				return FiberJsonResponse(c, fiber.StatusNotFound, "error", MsgPhoneNotRegistered, nil)
			}
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed checking phone", err.Error())
		}

		code, err := GenerateOtpCode()
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed generating code", err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed generating code", err.Error())
		}

		// one pending challenge per phone
		update := bson.M{"$set": models.OtpVerification{
			Phone:     req.Phone,
			CodeHash:  string(hash),
			Attempts:  0,
			Verified:  false,
			ExpiresAt: time.Now().Add(otpTTL),
			CreatedAt: time.Now(),
		}}
		opts := options.Update().SetUpsert(true)
		if _, err = a.Db.UpdateOne(a.C, bson.M{"phone": req.Phone}, update, opts); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed storing verification", err.Error())
		}

		if _, err = a.Sms.SendSMS("+91"+req.Phone, fmt.Sprintf("Your AIC Amal login code is %s. Valid for 5 minutes.", code)); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed sending OTP", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "OTP sent", nil)
	}
}

// @Summary Verify a login OTP and establish a session.
// @Description confirms the 6-digit code and mints a subscriber session token.
// @Tags auth
// @Accept json
// @Param otp_verify body models.OtpVerifyRequest true "Phone and code"
// @Produce json
// @Success 200
// @Router /api/auth/otp/verify [post]
func VerifyOtp(a *AuthHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		req := new(models.OtpVerifyRequest)
		if err := c.BodyParser(req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}

		var otp models.OtpVerification
		if err := a.Db.FindOne(a.C, bson.M{"phone": req.Phone, "verified": false}).Decode(&otp); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "no pending verification for this phone", nil)
		}
		if err := CheckOtpChallenge(&otp, req.Code, time.Now()); err != nil {
			if err == errInvalidOtpCode {
				_, _ = a.Db.UpdateOne(a.C, bson.M{"_id": otp.ID}, bson.M{"$inc": bson.M{"attempts": 1}})
			}
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}

		donor, err := a.GetDonorByPhone(req.Phone)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusNotFound, "error", MsgPhoneNotRegistered, nil)
		}

		session := models.Session{
			TokenId:   uuid.NewString(),
			DonorId:   donor.ID,
			Phone:     donor.Phone,
			Role:      models.RoleSubscriber,
			Revoked:   false,
			ExpiresAt: time.Now().Add(sessionTTL),
			CreatedAt: time.Now(),
		}
		if _, err = a.SessionDb.InsertOne(a.C, &session); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed creating session", err.Error())
		}

		token, err := MintSessionToken(&session)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed signing session", err.Error())
		}

		// codes are single-use: the challenge is gone once a session is minted
		if _, err = a.Db.DeleteOne(a.C, bson.M{"_id": otp.ID}); err != nil {
			a.L.Errorf("failed deleting used challenge for %s: %s", req.Phone, err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "login verified", fiber.Map{
			"token":   token,
			"donorId": donor.ID.Hex(),
		})
	}
}

// @Summary Log out the current session.
// @Description revokes the presented session token server-side.
// @Tags auth
// @Produce json
// @Success 200
// @Router /api/auth/logout [post]
func Logout(a *AuthHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("session").(*models.SessionClaims)
		if !ok {
			return FiberJsonResponse(c, fiber.StatusUnauthorized, "error", "no session", nil)
		}
		_, err := a.SessionDb.UpdateOne(a.C, bson.M{"token_id": claims.ID}, bson.M{"$set": bson.M{"revoked": true}})
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed revoking session", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "logged out", nil)
	}
}

// @Summary Admin login.
// @Description credential login for dashboard users; mints an admin session
// @Description token. Replaces the former shared static API key.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200
// @Router /api/auth/admin/login [post]
func AdminLogin(a *AuthHandler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}

		hash := os.Getenv("ADMIN_PASSWORD_HASH")
		if req.Username != os.Getenv("ADMIN_USERNAME") || hash == "" ||
			bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			return FiberJsonResponse(c, fiber.StatusUnauthorized, "error", "invalid credentials", nil)
		}

		session := models.Session{
			TokenId:   uuid.NewString(),
			Phone:     "",
			Role:      models.RoleAdmin,
			Revoked:   false,
			ExpiresAt: time.Now().Add(12 * time.Hour),
			CreatedAt: time.Now(),
		}
		if _, err := a.SessionDb.InsertOne(a.C, &session); err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed creating session", err.Error())
		}
		token, err := MintSessionToken(&session)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed signing session", err.Error())
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "login verified", fiber.Map{"token": token})
	}
}

// RevokeDonorSessions invalidates every session a donor holds. Called by the
// cancellation handlers after the cancel itself succeeded, so session
// termination is tied to the real outcome rather than client-side control flow.
func (a *AuthHandler) RevokeDonorSessions(donorId primitive.ObjectID) error {
	_, err := a.SessionDb.UpdateMany(a.C, bson.M{"donor_id": donorId}, bson.M{"$set": bson.M{"revoked": true}})
	return err
}

var errInvalidOtpCode = errors.New("invalid code")

// CheckOtpChallenge validates a submitted code against the stored challenge.
// An already-verified row is rejected so a code can never mint two sessions.
func CheckOtpChallenge(otp *models.OtpVerification, code string, now time.Time) error {
	if otp.Verified {
		return errors.New("code already used, restart login")
	}
	if now.After(otp.ExpiresAt) {
		return errors.New("code expired, restart login")
	}
	if otp.Attempts >= otpMaxAttempts {
		return errors.New("too many attempts, restart login")
	}
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		return errInvalidOtpCode
	}
	return nil
}

// GenerateOtpCode returns a 6-digit zero-padded code from crypto/rand.
func GenerateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// MintSessionToken signs a JWT carrying the session registry id.
func MintSessionToken(s *models.Session) (string, error) {
	claims := models.SessionClaims{
		Phone: s.Phone,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.TokenId,
			Subject:   s.DonorId.Hex(),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// ParseSessionToken validates a JWT and returns its claims.
func ParseSessionToken(tokenStr string) (*models.SessionClaims, error) {
	claims := new(models.SessionClaims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
