package router

import (
	"strings"
	"time"

	"github.com/go-redis/cache/v8"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/salmankavanur/aic-amal-backend/handlers"
	"github.com/salmankavanur/aic-amal-backend/models"
)

// sessionCacheTTL is short on purpose: cached sessions delay revocation by at
// most this long.
const sessionCacheTTL = 30 * time.Second

// RequireSession validates the bearer token, checks the server-side session
// registry for revocation and stores the claims in locals. Session rows are
// cached in redis to keep the registry off the hot path.
func RequireSession(sessionDb *mongo.Collection, rcache *cache.Cache, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return handlers.FiberJsonResponse(c, fiber.StatusUnauthorized, "error", "missing bearer token", nil)
		}

		claims, err := handlers.ParseSessionToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return handlers.FiberJsonResponse(c, fiber.StatusUnauthorized, "error", "invalid session token", nil)
		}

		if len(roles) > 0 {
			allowed := false
			for _, r := range roles {
				if claims.Role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				return handlers.FiberJsonResponse(c, fiber.StatusForbidden, "error", "insufficient role", nil)
			}
		}

		ctx := c.Context()
		var session models.Session
		cached := false
		if rcache != nil {
			if err = rcache.Get(ctx, "session:"+claims.ID, &session); err == nil {
				cached = true
			} else if err != cache.ErrCacheMiss {
				l.Errorf("session cache read failed: %s", err.Error())
			}
		}

		if !cached {
			if err = sessionDb.FindOne(ctx, bson.M{"token_id": claims.ID}).Decode(&session); err != nil {
				return handlers.FiberJsonResponse(c, fiber.StatusUnauthorized, "error", "session not found", nil)
			}
			if rcache != nil {
				if err = rcache.Set(&cache.Item{
					Ctx:   ctx,
					Key:   "session:" + claims.ID,
					Value: &session,
					TTL:   sessionCacheTTL,
				}); err != nil {
					l.Errorf("session cache write failed: %s", err.Error())
				}
			}
		}

		if session.Revoked || time.Now().After(session.ExpiresAt) {
			return handlers.FiberJsonResponse(c, fiber.StatusUnauthorized, "error", "session expired or revoked", nil)
		}

		c.Locals("session", claims)
		return c.Next()
	}
}
