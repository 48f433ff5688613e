package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pizza_pos_backend/internal/models"
)

func TestRegisterUserRejectsEmptyUsername(t *testing.T) {
	svc := &authService{}
	_, err := svc.RegisterUser(models.RegistrationPayload{Username: "  ", Password: "longenough"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterUserRejectsShortPassword(t *testing.T) {
	svc := &authService{}
	_, err := svc.RegisterUser(models.RegistrationPayload{Username: "cashier1", Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterUserRejectsUnknownRole(t *testing.T) {
	svc := &authService{}
	role := "Janitor"
	_, err := svc.RegisterUser(models.RegistrationPayload{
		Username: "cashier1",
		Password: "longenough",
		Role:     &role,
	})
	assert.ErrorIs(t, err, ErrValidation)
}
