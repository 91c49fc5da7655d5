package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlockmart/internal/model"
)

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a, err := e.auth.Register(ctx, " Ann Smith ", "Ann@Example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, a.Role)
	assert.True(t, a.Balance.IsZero())
	assert.Equal(t, "ann@example.com", a.Email)

	_, err = e.auth.Register(ctx, "Other", "ann@example.com", "pw")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = e.auth.Register(ctx, "", "x@example.com", "pw")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := e.auth.Authenticate(ctx, "ANN@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = e.auth.Authenticate(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.auth.Authenticate(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCatalogService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	svc, err := e.catalog.Create(ctx, model.Service{
		Name:           "Samsung official",
		Price:          decimal.RequireFromString("19.90"),
		Category:       model.CategoryOfficial,
		RequiredFields: []string{"model"},
	})
	require.NoError(t, err)

	got, err := e.catalog.Get(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, "19.90", got.Price.StringFixed(2))
	assert.Equal(t, []string{"model"}, got.RequiredFields)

	_, err = e.catalog.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = e.catalog.Create(ctx, model.Service{Name: "x", Category: "carrier"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.catalog.Create(ctx, model.Service{Name: "x", Category: model.CategoryFile, Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	list, err := e.catalog.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
