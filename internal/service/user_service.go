package service

import (
	"github.com/Ss2809/Chat/internal/models"
	"github.com/Ss2809/Chat/internal/repository"
)

// UserService is the read-only window into the user directory: display
// fields for outgoing payloads and existence checks. Account management
// lives in a separate system.
type UserService struct {
	userRepo repository.UserRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) DisplayFields(userID uint) (models.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return models.UserResponse{}, err
	}
	return user.ToResponse(), nil
}

func (s *UserService) Exists(userID uint) (bool, error) {
	return s.userRepo.Exists(userID)
}
