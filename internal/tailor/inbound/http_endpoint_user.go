package inbound

import (
	"github.com/shandysiswandi/tailor/internal/pkg/router"
	"github.com/shandysiswandi/tailor/internal/tailor/usecase"
)

// CredentialsUpsert stores the caller's Cumplo login.
// @Summary Set credentials
// @Tags Credentials
// @Security APIKeyAuth
// @Accept json
// @Param request body CredentialsRequest true "Cumplo credentials"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /credentials [put]
func (h *HTTPEndpoint) CredentialsUpsert(r *router.Request) (any, error) {
	var req CredentialsRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.CredentialsUpsert(r.Context(), usecase.CredentialsUpsertInput{
		Email:    req.Email,
		Password: req.Password,
	})
}

// CredentialsDelete forgets the caller's Cumplo login.
// @Summary Delete credentials
// @Tags Credentials
// @Security APIKeyAuth
// @Success 204 "No Content"
// @Router /credentials [delete]
func (h *HTTPEndpoint) CredentialsDelete(r *router.Request) (any, error) {
	return nil, h.uc.CredentialsDelete(r.Context())
}

// Profile returns the API key owner.
// @Summary Get profile
// @Tags Users
// @Security APIKeyAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=UserResponse} "Profile"
// @Failure 401 {object} router.errorResponse "Invalid API key"
// @Router /users/me [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	u, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return toUserResponse(*u), nil
}

// ProfileDelete removes the API key owner.
// @Summary Delete profile
// @Tags Users
// @Security APIKeyAuth
// @Success 204 "No Content"
// @Router /users/me [delete]
func (h *HTTPEndpoint) ProfileDelete(r *router.Request) (any, error) {
	return nil, h.uc.ProfileDelete(r.Context())
}

// ProfileDisable moves the API key owner out of the active users.
// @Summary Disable profile
// @Tags Users
// @Security APIKeyAuth
// @Success 204 "No Content"
// @Router /users/me/disable [put]
func (h *HTTPEndpoint) ProfileDisable(r *router.Request) (any, error) {
	return nil, h.uc.ProfileDisable(r.Context())
}

// UserList returns every active user.
// @Summary List users
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=[]UserResponse} "User list"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Account not allowed"
// @Router /admin/users [get]
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	users, err := h.uc.UserList(r.Context())
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}

	return resp, nil
}

// UserGet returns one user.
// @Summary Get user
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} router.successResponse{data=UserResponse} "User"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /admin/users/{id} [get]
func (h *HTTPEndpoint) UserGet(r *router.Request) (any, error) {
	u, err := h.uc.UserGet(r.Context(), usecase.UserGetInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return toUserResponse(*u), nil
}

// UserCreate provisions a user and its API key.
// @Summary Create user
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UserCreateRequest true "User"
// @Success 201 {object} router.successResponse{data=UserResponse} "Created user"
// @Failure 409 {object} router.errorResponse "User with that email already exists"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 502 {object} router.errorResponse "Failed to create API key"
// @Router /admin/users [post]
func (h *HTTPEndpoint) UserCreate(r *router.Request) (any, error) {
	var req UserCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	u, err := h.uc.UserCreate(r.Context(), usecase.UserCreateInput{Email: req.Email, Name: req.Name})
	if err != nil {
		return nil, err
	}

	return created{data: toUserResponse(*u)}, nil
}

// UserUpdate merges a partial document into a user.
// @Summary Update user
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body object true "Partial user"
// @Success 200 {object} router.successResponse{data=UserResponse} "Updated user"
// @Failure 400 {object} router.errorResponse "Nothing to update"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /admin/users/{id} [patch]
func (h *HTTPEndpoint) UserUpdate(r *router.Request) (any, error) {
	patch, err := r.DecodeMap()
	if err != nil {
		return nil, err
	}

	u, err := h.uc.UserUpdate(r.Context(), usecase.UserUpdateInput{ID: r.GetParam("id"), Patch: patch})
	if err != nil {
		return nil, err
	}

	return toUserResponse(*u), nil
}

// UserDelete removes a user.
// @Summary Delete user
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /admin/users/{id} [delete]
func (h *HTTPEndpoint) UserDelete(r *router.Request) (any, error) {
	return nil, h.uc.UserDelete(r.Context(), usecase.UserDeleteInput{ID: r.GetParam("id")})
}

// UserDisable moves a user to the disabled collection.
// @Summary Disable user
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /admin/users/{id}/disable [patch]
func (h *HTTPEndpoint) UserDisable(r *router.Request) (any, error) {
	return nil, h.uc.UserDisable(r.Context(), usecase.UserDeleteInput{ID: r.GetParam("id")})
}

// UserEnable restores a disabled user.
// @Summary Enable user
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /admin/users/{id}/enable [patch]
func (h *HTTPEndpoint) UserEnable(r *router.Request) (any, error) {
	return nil, h.uc.UserEnable(r.Context(), usecase.UserDeleteInput{ID: r.GetParam("id")})
}
