package services

import (
	"log"

	"github.com/google/uuid"
	"github.com/vidhi28vaghela05/lms-project-sub000/db"
	apiError "github.com/vidhi28vaghela05/lms-project-sub000/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/models"
)

// PartnerService computes the set of counterparties a principal may message.
// The list is advisory: it drives who shows up in the "new conversation"
// picker, it is not re-checked when a conversation is opened.
type PartnerService interface {
	PartnersFor(user *models.User) ([]models.UserResponse, *apiError.Error)
}

type partnerService struct {
	userRepo db.UserRepository
}

func NewPartnerService(userRepo db.UserRepository) PartnerService {
	return &partnerService{userRepo: userRepo}
}

// PartnersFor applies the role visibility rule:
// students see the instructors of their courses plus every admin,
// instructors see the students of their courses plus every admin,
// admins see everyone else, any other role sees nobody.
func (s *partnerService) PartnersFor(user *models.User) ([]models.UserResponse, *apiError.Error) {
	var (
		partners []models.User
		err      error
	)

	switch user.Role {
	case models.RoleStudent:
		partners, err = s.userRepo.FindInstructorsForStudent(user.ID)
		if err == nil {
			partners, err = s.withAdmins(partners)
		}
	case models.RoleInstructor:
		partners, err = s.userRepo.FindStudentsForInstructor(user.ID)
		if err == nil {
			partners, err = s.withAdmins(partners)
		}
	case models.RoleAdmin:
		partners, err = s.userRepo.FindAllExcept(user.ID)
	default:
		return []models.UserResponse{}, nil
	}

	if err != nil {
		log.Printf("PartnersFor error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	seen := make(map[uuid.UUID]struct{}, len(partners))
	result := make([]models.UserResponse, 0, len(partners))
	for _, p := range partners {
		if p.ID == user.ID {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		result = append(result, p.Response())
	}
	return result, nil
}

func (s *partnerService) withAdmins(users []models.User) ([]models.User, error) {
	admins, err := s.userRepo.FindAdmins()
	if err != nil {
		return nil, err
	}
	return append(users, admins...), nil
}
