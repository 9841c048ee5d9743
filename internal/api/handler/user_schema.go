package handler

import (
	"fmt"
	"time"

	"github.com/cardigital/user-service/internal/core/domain"
	"github.com/cardigital/user-service/internal/core/ports"
)

type createUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=40"`
	Password    string `json:"password" validate:"required,min=3,max=72"`
	FirstName   string `json:"firstName" validate:"required,min=3,max=40"`
	LastName    string `json:"lastName" validate:"required,min=3,max=40"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	BirthDate   string `json:"birthDate" validate:"required,datetime=2006-01-02"`
}

// editUserRequest is a sparse update: omitted or null fields stay unchanged.
type editUserRequest struct {
	FirstName   *string `json:"firstName" validate:"omitnil,min=3,max=40"`
	LastName    *string `json:"lastName" validate:"omitnil,min=3,max=40"`
	BirthDate   *string `json:"birthDate" validate:"omitnil,datetime=2006-01-02"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitnil,min=1"`
	Email       *string `json:"email" validate:"omitnil,email"`
}

type changePasswordRequest struct {
	Password       string `json:"password" validate:"required,min=3,max=72"`
	RepeatPassword string `json:"repeatPassword" validate:"required"`
}

type userResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	BirthDate   string `json:"birthDate,omitempty"`
}

type listUsersResponse struct {
	Items      []userResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	TotalPages int            `json:"totalPages"`
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date formatted as %s", domain.ErrInvalidRequest, field, domain.DateLayout)
	}
	return t, nil
}

func (r createUserRequest) toInput() (ports.CreateUserInput, error) {
	birth, err := parseDate("birthDate", r.BirthDate)
	if err != nil {
		return ports.CreateUserInput{}, err
	}
	return ports.CreateUserInput{
		Username:    r.Username,
		Password:    r.Password,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		BirthDate:   birth,
	}, nil
}

func (r editUserRequest) toPatch() (domain.UserPatch, error) {
	patch := domain.UserPatch{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
	}
	if r.BirthDate != nil {
		birth, err := parseDate("birthDate", *r.BirthDate)
		if err != nil {
			return domain.UserPatch{}, err
		}
		patch.BirthDate = &birth
	}
	return patch, nil
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
	if !u.BirthDate.IsZero() {
		resp.BirthDate = u.BirthDate.Format(domain.DateLayout)
	}
	return resp
}

func toListUsersResponse(res *ports.ListUsersResult) listUsersResponse {
	items := make([]userResponse, 0, len(res.Items))
	for _, u := range res.Items {
		items = append(items, toUserResponse(u))
	}
	return listUsersResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		Size:       res.Size,
		TotalPages: res.TotalPages,
	}
}
