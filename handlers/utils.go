package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salmankavanur/aic-amal-backend/database"
	"github.com/salmankavanur/aic-amal-backend/models"
)

type DBInsertResponse struct {
	InsertedId primitive.ObjectID `json:"inserted_id" bson:"_id"`
}

type Handler struct {
	Db      *mongo.Collection
	DonorDb *mongo.Collection
	L       *logrus.Logger
	C       context.Context
	H       *http.Client
}

func NewHandler(collectionName string, l *logrus.Logger) *Handler {
	return &Handler{
		Db:      database.GetCollection(collectionName),
		DonorDb: database.GetCollection(os.Getenv("DONOR_COLLECTION")),
		L:       l,
		C:       context.Background(),
		H:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *Handler) GetDonorByPhone(phone string) (*models.Donor, error) {
	var donor models.Donor
	filter := bson.M{"phone": phone}
	err := h.DonorDb.FindOne(h.C, filter).Decode(&donor)
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

func (h *Handler) GetDonorByID(id primitive.ObjectID) (*models.Donor, error) {
	var donor models.Donor
	err := h.DonorDb.FindOne(h.C, bson.M{"_id": id}).Decode(&donor)
	if err != nil {
		h.L.Errorf("[DonorDB] error getting donor: %s", err.Error())
		return nil, err
	}
	return &donor, nil
}

// CurrentSession returns the claims stored by the session middleware, nil
// when the route ran without one.
func CurrentSession(c *fiber.Ctx) *models.SessionClaims {
	claims, _ := c.Locals("session").(*models.SessionClaims)
	return claims
}

// OwnsDonor reports whether the session may act on the donor's resources.
// Admins may act on any donor.
func OwnsDonor(claims *models.SessionClaims, donorId primitive.ObjectID) bool {
	if claims == nil {
		return false
	}
	if claims.Role == models.RoleAdmin {
		return true
	}
	return claims.Subject == donorId.Hex()
}

func FiberJsonResponse(c *fiber.Ctx, httpStatus int, status, message string, data any) error {
	return c.Status(httpStatus).JSON(fiber.Map{"status": status, "message": message, "data": data})
}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidatePhone enforces the 10-digit phone format used across all flows.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return errors.New("phone must be a 10-digit number")
	}
	return nil
}

// ParsePageParams reads page/limit query values with the list defaults.
func ParsePageParams(c *fiber.Ctx) (page, limit int64) {
	page = int64(c.QueryInt("page", 1))
	limit = int64(c.QueryInt("limit", 10))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// TotalPages computes the page count for a collection total. Zero items is
// zero pages; callers past the end get an empty data slice, not an error.
func TotalPages(totalItems, limit int64) int64 {
	if limit <= 0 || totalItems <= 0 {
		return 0
	}
	return (totalItems + limit - 1) / limit
}

func NewPagination(page, limit, totalItems int64) models.Pagination {
	return models.Pagination{
		CurrentPage: page,
		TotalPages:  TotalPages(totalItems, limit),
		TotalItems:  totalItems,
	}
}

func mongoFindRecent(n int64) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "payment_date", Value: -1}}).SetLimit(n)
}
