package service

import (
	"context"
	"strings"

	"momentum/internal/models"
	"momentum/internal/observability"
	"momentum/internal/repository"
	"momentum/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users repository.UserRepository
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (_ *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Register")
	defer func() { observability.EndSpan(span, err) }()

	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	var v validation.Errors
	v.Required("email", in.Email)
	if in.Email != "" {
		v.Email("email", in.Email)
	}
	if perr := validation.ValidatePassword(in.Password); perr != nil {
		v.Addf("%s", perr.Error())
	}
	v.MaxLen("fullName", in.FullName, maxNameLen)
	if err := v.Err(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    in.Email,
		Password: string(hashed),
		FullName: in.FullName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials. Unknown email and wrong password fail alike.
func (s *UserService) Login(ctx context.Context, in LoginInput) (_ *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Login")
	defer func() { observability.EndSpan(span, err) }()

	var v validation.Errors
	v.Required("email", in.Email)
	v.Required("password", in.Password)
	if err := v.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if IsNotFound(err) {
			return nil, models.NewUnauthorizedError("Invalid email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch models.UserPatch) (_ *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "UpdateProfile")
	defer func() { observability.EndSpan(span, err) }()

	trimPtr(patch.FullName)
	trimPtr(patch.Email)

	var v validation.Errors
	if patch.FullName != nil {
		v.MaxLen("fullName", *patch.FullName, maxNameLen)
	}
	if patch.Email != nil {
		v.Email("email", *patch.Email)
	}
	if patch.Password != nil {
		if perr := validation.ValidatePassword(*patch.Password); perr != nil {
			v.Addf("%s", perr.Error())
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
