package auth

import (
	"errors"

	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func isAlreadyExists(err error) bool {
	return errors.Is(err, repository.ErrAlreadyExists)
}
