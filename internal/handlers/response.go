package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/pkg/media"
	"github.com/labstack/echo/v4"
)

// httpError maps a service error to the HTTP error echo renders.
func httpError(err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Internal server error",
		}).SetInternal(err)
	}

	body := echo.Map{"success": false, "message": ae.Message}
	if len(ae.Fields) > 0 {
		body["errors"] = ae.Fields
	}

	status := http.StatusInternalServerError
	switch ae.Kind {
	case apperr.KindValidation, apperr.KindSelfAction:
		status = http.StatusBadRequest
	case apperr.KindUnauthenticated:
		status = http.StatusUnauthorized
	case apperr.KindPermission:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindUpstream:
		status = http.StatusBadGateway
	}
	he := echo.NewHTTPError(status, body)
	if ae.Err != nil {
		he.SetInternal(ae.Err)
	}
	return he
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": true, "message": message})
}

func respondPage[T any](c echo.Context, page models.Page[T]) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    page.Items,
		"meta":    page.Meta,
	})
}

// currentUser returns the authenticated account. Routes using it sit behind JWTAuthMiddleware.
func currentUser(c echo.Context) *models.User {
	return middleware.CurrentUser(c)
}

func getUserIDFromContext(c echo.Context) uint {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

func parseID(c echo.Context, name, label string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Invalid " + label + " ID",
		})
	}
	return uint(id), nil
}

func pageFromQuery(c echo.Context) models.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	return models.NewPageRequest(page, size)
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"success": false,
		"message": message,
	})
}

// readImage returns the uploaded file in field, or nil when the request carries none.
func readImage(c echo.Context, field string) (*media.Image, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, badRequest("Invalid multipart payload")
	}
	if header.Size > media.MaxImageSize {
		return nil, httpError(apperr.Field(field, "Image file too large ( > 2MB )."))
	}

	f, err := header.Open()
	if err != nil {
		return nil, badRequest("Could not read uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, media.MaxImageSize+1))
	if err != nil {
		return nil, badRequest("Could not read uploaded file")
	}
	return &media.Image{Filename: header.Filename, Size: int64(len(data)), Data: data}, nil
}
