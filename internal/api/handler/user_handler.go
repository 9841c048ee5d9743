package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardigital/user-service/internal/api/metrics"
	"github.com/cardigital/user-service/internal/core/domain"
	"github.com/cardigital/user-service/internal/core/ports"
)

// UserHandler handles HTTP requests for user records.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func observe(operation string, err error) {
	metrics.UserOperationsTotal.WithLabelValues(operation, metrics.Result(err)).Inc()
}

// Create handles POST /users.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input, err := req.toInput()
	if err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), input)
	observe("create", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Get handles GET /users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// List handles GET /users.
//
// @Summary      List users
// @Description  Paginated, ordered by last name then birth date. search matches first or last name.
// @Tags         users
// @Produce      json
// @Param        search  query     string  false  "Name filter"
// @Param        page    query     int     false  "0-based page"
// @Param        size    query     int     false  "Page size"
// @Success      200     {object}  listUsersResponse
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	var (
		search string
		page   int
		size   int
	)
	err := echo.QueryParamsBinder(c).
		String("search", &search).
		Int("page", &page).
		Int("size", &size).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	res, err := h.service.List(c.Request().Context(), search, page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListUsersResponse(res))
}

// EditSelf handles PATCH /users.
//
// @Summary      Edit the caller's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      editUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [patch]
func (h *UserHandler) EditSelf(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	patch, err := h.bindPatch(c)
	if err != nil {
		return err
	}

	user, err := h.service.UpdateSelf(c.Request().Context(), principal, patch)
	observe("update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// EditByID handles PATCH /users/:id. ADMIN only.
//
// @Summary      Edit any user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int              true  "User id"
// @Param        body  body      editUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users/{id} [patch]
func (h *UserHandler) EditByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	patch, err := h.bindPatch(c)
	if err != nil {
		return err
	}

	user, err := h.service.UpdateByID(c.Request().Context(), id, patch)
	observe("update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) bindPatch(c echo.Context) (domain.UserPatch, error) {
	var req editUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return domain.UserPatch{}, err
	}
	return req.toPatch()
}

// ChangePassword handles PUT /users/change-password.
//
// @Summary      Change the caller's password
// @Tags         users
// @Accept       json
// @Param        body  body  changePasswordRequest  true  "New password, twice"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /users/change-password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.service.ChangePassword(c.Request().Context(), principal, req.Password, req.RepeatPassword)
	observe("change_password", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /users/:id. ADMIN only.
//
// @Summary      Delete a user
// @Tags         users
// @Param        id   path  int  true  "User id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Request().Context(), id)
	observe("delete", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
