package handler

import (
	"errors"
	"strconv"

	"profile-api/internal/delivery/http/dto"
	"profile-api/internal/delivery/http/middleware"
	domain "profile-api/internal/domain/profile"
	"profile-api/internal/pkg/response"
	profileuc "profile-api/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	MessageProfileNotFound = "Profile not found!"
	MessageNoProfiles      = "No profiles found!"
	messageInvalidID       = "Invalid profile id"
	messageInvalidPayload  = "Invalid request payload"
)

type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

type ProfileHandler struct {
	uc     profileuc.Usecase
	paging Paging
}

func NewProfileHandler(uc profileuc.Usecase, paging Paging) *ProfileHandler {
	if paging.MaxLimit <= 0 {
		paging.MaxLimit = 100
	}
	if paging.DefaultLimit <= 0 || paging.DefaultLimit > paging.MaxLimit {
		paging.DefaultLimit = min(10, paging.MaxLimit)
	}
	return &ProfileHandler{uc: uc, paging: paging}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/profiles")
	grp.Post("", h.Create)
	grp.Get("", h.List)
	grp.Get("/:id", h.Get)
	grp.Put("/:id", h.Patch)
	grp.Delete("/:id", h.Delete)

	r.Get("/get_size", h.Size)
	r.Get("/get_random_profile", h.RandomProfile)
}

func (h *ProfileHandler) Create(c fiber.Ctx) error {
	var req domain.Create
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, messageInvalidPayload, nil, err)
	}

	created, err := h.uc.Create(c.Context(), req)
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	limit, offset, err := h.parsePaging(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), limit, offset)
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusOK).JSON(items)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	id, err := parseProfileID(c)
	if err != nil {
		return err
	}

	p, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *ProfileHandler) Patch(c fiber.Ctx) error {
	id, err := parseProfileID(c)
	if err != nil {
		return err
	}

	var req domain.Patch
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, messageInvalidPayload, nil, err)
	}

	p, err := h.uc.Patch(c.Context(), id, req)
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *ProfileHandler) Delete(c fiber.Ctx) error {
	id, err := parseProfileID(c)
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), id); err != nil {
		return mapProfileError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProfileHandler) Size(c fiber.Ctx) error {
	limit, offset, err := h.parsePaging(c)
	if err != nil {
		return err
	}

	n, err := h.uc.Count(c.Context(), limit, offset)
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.SizeResponse{Size: n})
}

func (h *ProfileHandler) RandomProfile(c fiber.Ctx) error {
	limit, offset, err := h.parsePaging(c)
	if err != nil {
		return err
	}

	id, err := h.uc.RandomID(c.Context(), limit, offset)
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.RandomProfileResponse{ProfileID: id})
}

func (h *ProfileHandler) parsePaging(c fiber.Ctx) (int, int, error) {
	limit, err := parseQueryIntStrict(c, "limit", h.paging.DefaultLimit)
	if err != nil || limit < 0 || limit > h.paging.MaxLimit {
		return 0, 0, h.pagingError(err)
	}
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil || offset < 0 {
		return 0, 0, h.pagingError(err)
	}
	return limit, offset, nil
}

func (h *ProfileHandler) pagingError(cause error) error {
	msg := "limit must be in 0.." + strconv.Itoa(h.paging.MaxLimit) + " and offset must be non-negative"
	return middleware.NewAppError(fiber.StatusUnprocessableEntity, msg, nil, cause)
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}

func parseProfileID(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnprocessableEntity, messageInvalidID, nil, err)
	}
	return id, nil
}

func mapProfileError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, MessageProfileNotFound, nil, err)
	case errors.Is(err, domain.ErrNoProfiles):
		return middleware.NewAppError(fiber.StatusNotFound, MessageNoProfiles, nil, err)
	case errors.Is(err, domain.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, response.MessageUnprocessableEntity, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
