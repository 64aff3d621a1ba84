package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-contracts/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a contract or phone number does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoEmail is returned when emailing a contract without a customer email.
	ErrNoEmail = errors.New("contract has no customer email")

	// Re-exported so callers only import services.
	ErrInvalidTransition = models.ErrInvalidTransition
	ErrNumberUnavailable = models.ErrNumberUnavailable
)

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
