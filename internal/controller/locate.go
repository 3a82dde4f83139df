package controller

import (
	"context"
	"errors"

	"github.com/claude/trailbook/internal/models"
)

// ErrLocationUnavailable is returned by a Locator that has no position to give.
var ErrLocationUnavailable = errors.New("location unavailable")

// Locator supplies the user's position once.
type Locator interface {
	Locate(ctx context.Context) (models.Coords, error)
}

// StaticLocator reports a fixed, configured position.
type StaticLocator struct {
	Coords models.Coords
	Set    bool
}

func (s StaticLocator) Locate(ctx context.Context) (models.Coords, error) {
	if err := ctx.Err(); err != nil {
		return models.Coords{}, err
	}
	if !s.Set {
		return models.Coords{}, ErrLocationUnavailable
	}
	return s.Coords, nil
}
