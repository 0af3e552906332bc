package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/salmankavanur/aic-amal-backend/models"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{phone: "9847012345", ok: true},
		{phone: "0000000000", ok: true},
		{phone: "984701234", ok: false},
		{phone: "98470123456", ok: false},
		{phone: "98470a2345", ok: false},
		{phone: "+919847012345", ok: false},
		{phone: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int64
		limit      int64
		want       int64
	}{
		{name: "exact fit", totalItems: 8, limit: 4, want: 2},
		{name: "partial last page", totalItems: 9, limit: 4, want: 3},
		{name: "single item", totalItems: 1, limit: 10, want: 1},
		{name: "empty collection", totalItems: 0, limit: 10, want: 0},
		{name: "zero limit", totalItems: 10, limit: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.totalItems, tt.limit))
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 4, 9)
	assert.Equal(t, int64(2), p.CurrentPage)
	assert.Equal(t, int64(3), p.TotalPages)
	assert.Equal(t, int64(9), p.TotalItems)

	// requesting a page beyond the end is not an error, just an empty page
	past := NewPagination(7, 4, 9)
	assert.Equal(t, int64(7), past.CurrentPage)
	assert.Equal(t, int64(3), past.TotalPages)
}

func TestOwnsDonor(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	makeClaims := func(role string, donorId primitive.ObjectID) *models.SessionClaims {
		c := &models.SessionClaims{Role: role}
		c.Subject = donorId.Hex()
		return c
	}

	tests := []struct {
		name   string
		claims *models.SessionClaims
		donor  primitive.ObjectID
		want   bool
	}{
		{name: "own subscription", claims: makeClaims(models.RoleSubscriber, owner), donor: owner, want: true},
		{name: "another donor's subscription", claims: makeClaims(models.RoleSubscriber, other), donor: owner, want: false},
		{name: "admin may act on any donor", claims: makeClaims(models.RoleAdmin, other), donor: owner, want: true},
		{name: "no session", claims: nil, donor: owner, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OwnsDonor(tt.claims, tt.donor))
		})
	}
}
