package server

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// the app's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

func parseObjectIDHex(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", hex, err)
	}
	return id, nil
}

// parseIDParam extracts a route parameter as an ObjectID. A malformed id
// cannot name any stored document, so it is reported as the resource not
// being found. On failure it writes the 404 response and returns
// errResponseWritten; callers should check: if err != nil { return nil }.
func (s *Server) parseIDParam(c *fiber.Ctx, param, resource string) (primitive.ObjectID, error) {
	id, err := parseObjectIDHex(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError(resource, c.Params(param)))
		return primitive.NilObjectID, errResponseWritten
	}
	return id, nil
}

// currentUser returns the identity attached by AuthRequired. When the
// backing record is absent it writes a 404 response and returns
// errResponseWritten.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	user, _ := c.Locals("user").(*models.User)
	if user == nil {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			&models.AppError{Code: "NOT_FOUND", Message: "User not found"})
		return nil, errResponseWritten
	}
	return user, nil
}

// resolveUsername resolves a post author's current username by user ID,
// consulting the Redis cache first. Returns nil when the account no longer
// exists.
func (s *Server) resolveUsername(ctx context.Context, userID primitive.ObjectID) (*string, error) {
	hex := userID.Hex()
	if name, ok := cache.GetUsername(ctx, s.redis, hex); ok {
		return &name, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	cache.SetUsername(ctx, s.redis, hex, user.Username)
	return &user.Username, nil
}
