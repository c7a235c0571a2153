package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-service/internal/api/dto"
	"github.com/spec-kit/staff-service/internal/service"
	apperrors "github.com/spec-kit/staff-service/pkg/util"
)

// StaffHandler exposes the staff directory endpoints. Every route is
// admin-gated by the router.
type StaffHandler struct {
	staffService *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// CreateStaff handles POST /createStaff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	staff, err := h.staffService.CreateStaff(c.UserContext(), service.CreateStaffInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Team:          req.Team,
		ProfileImages: req.ProfileImages,
		Password:      req.Password,
		Role:          req.Role,
		Active:        req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK(dto.NewStaffResponse(staff)))
}

// ListStaff handles GET /getAllStaff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	query, err := parseStaffListQuery(c)
	if err != nil {
		return err
	}
	list, err := h.staffService.ListStaff(c.UserContext(), service.StaffListFilters{
		Role:      query.Role,
		Team:      query.Team,
		Email:     query.Email,
		FirstName: query.FirstName,
		LastName:  query.LastName,
		Active:    query.IsActive,
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OKList(dto.NewStaffList(list)))
}

// GetStaff handles GET /getStaffById/:id.
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	staff, err := h.staffService.GetStaff(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewStaffResponse(staff)))
}

// UpdateStaff handles PUT /updateStaff/:id.
func (h *StaffHandler) UpdateStaff(c *fiber.Ctx) error {
	var req dto.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	updated, err := h.staffService.UpdateStaff(c.UserContext(), c.Params("id"), service.UpdateStaffInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Team:          req.Team,
		ProfileImages: req.ProfileImages,
		Password:      req.Password,
		Role:          req.Role,
		Active:        req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewStaffResponse(updated)))
}

// DeleteStaff handles DELETE /deleteStaff/:id.
func (h *StaffHandler) DeleteStaff(c *fiber.Ctx) error {
	if err := h.staffService.DeleteStaff(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Staff member deleted successfully"))
}

// parseStaffListQuery decodes the JSON `filter` parameter. Unknown keys are
// rejected rather than silently ignored.
func parseStaffListQuery(c *fiber.Ctx) (dto.StaffListQuery, error) {
	var query dto.StaffListQuery
	if raw := c.Query("filter"); raw != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&query); err != nil {
			return query, apperrors.NewValidationError("invalid filter", map[string]any{"filter": err.Error()})
		}
	}
	var err error
	if query.Page, err = parseIntQuery(c, "page", 0); err != nil {
		return query, err
	}
	if query.PageSize, err = parseIntQuery(c, "page_size", 0); err != nil {
		return query, err
	}
	return query, nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid "+key, map[string]any{key: "must be an integer"})
	}
	return parsed, nil
}
