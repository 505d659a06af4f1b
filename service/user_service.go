package service

import (
	"database/sql"
	"errors"
	"nutritrack-api/common"
	"nutritrack-api/model"
	"nutritrack-api/repository"
)

// IUserService defines the contract for user administration.
type IUserService interface {
	GetProfile(userID int) (*model.User, error)
	GetAllUsers() ([]*model.User, error)
	UpdateUserRole(claims *model.AppClaims, targetUserID int, newRole model.Role) error
}

// UserService handles user-related business logic.
type UserService struct {
	userRepo repository.IUserRepository
}

func NewUserService(userRepo repository.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(userID int) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewNotFoundError("User not found")
		}
		return nil, common.NewInternalError("Error fetching user", err)
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) GetAllUsers() ([]*model.User, error) {
	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		return nil, common.NewInternalError("Error listing users", err)
	}
	return users, nil
}

// UpdateUserRole assigns a new role. Only valid roles are accepted, and an
// admin cannot change their own role: self-demotion would allow a lone admin
// to lock everyone out of administration.
func (s *UserService) UpdateUserRole(claims *model.AppClaims, targetUserID int, newRole model.Role) error {
	if !newRole.Valid() {
		return common.NewValidationError("Invalid role specified")
	}
	if claims.UserID == targetUserID {
		return common.NewValidationError("Admins cannot change their own role")
	}

	if err := s.userRepo.UpdateUserRole(targetUserID, string(newRole)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewNotFoundError("User not found")
		}
		return common.NewInternalError("Error updating user role", err)
	}
	return nil
}
