package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sunu-rekolt/marketplace/internal/repo"
)

func TestError_KindAndMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("checkout: %w", fail(ErrValidation, "Votre panier est vide"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Votre panier est vide", Message(err))
	assert.Empty(t, Message(errors.New("plain")))
}

func TestFromRepo(t *testing.T) {
	t.Parallel()

	err := fromRepo(repo.ErrNotFound, "Produit introuvable")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.Equal(t, "Produit introuvable", Message(err))

	assert.ErrorIs(t, fromRepo(repo.ErrConflict, ""), ErrConflict)
	assert.NoError(t, fromRepo(nil, ""))

	other := errors.New("db down")
	assert.Equal(t, other, fromRepo(other, ""))
}
