package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

func invalidParam(name, reason string) error {
	return apperrors.NewValidationError("invalid request", map[string]any{name: reason})
}

// parseBody decodes the JSON body into out.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"body": err.Error()})
	}
	return nil
}

// parseID reads a positive integer path parameter.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidParam(name, "must be a positive integer")
	}
	return id, nil
}

func parseBoolQuery(c *fiber.Ctx, key string, def bool) (bool, error) {
	val := c.Query(key)
	if val == "" {
		return def, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def, invalidParam(key, "must be a boolean")
	}
	return parsed, nil
}

func parseIntQuery(c *fiber.Ctx, key string, def int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def, invalidParam(key, "must be a non-negative integer")
	}
	return parsed, nil
}

func parseInt64Query(c *fiber.Ctx, key string) (*int64, error) {
	val := c.Query(key)
	if val == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil || parsed <= 0 {
		return nil, invalidParam(key, "must be a positive integer")
	}
	return &parsed, nil
}

// parseListQuery splits a comma separated query value.
func parseListQuery(c *fiber.Ctx, key string) []string {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
