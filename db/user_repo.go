package db

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vidhi28vaghela05/lms-project-sub000/models"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository reads the identity collaborator's reference data: user
// lookups plus the course/enrollment joins behind the partner directory.
type UserRepository interface {
	FindUserByID(id uuid.UUID) (*models.User, error)
	FindUsersByIDs(ids []uuid.UUID) ([]models.User, error)
	FindAdmins() ([]models.User, error)
	FindAllExcept(id uuid.UUID) ([]models.User, error)
	FindInstructorsForStudent(studentID uuid.UUID) ([]models.User, error)
	FindStudentsForInstructor(instructorID uuid.UUID) ([]models.User, error)
}

type userRepo struct {
	DB *gorm.DB
}

func NewUserRepo(db *GormDB) UserRepository {
	return &userRepo{db.DB}
}

func (r *userRepo) FindUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding user")
	}
	return &user, nil
}

func (r *userRepo) FindUsersByIDs(ids []uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "finding users")
	}
	return users, nil
}

func (r *userRepo) FindAdmins() ([]models.User, error) {
	users := []models.User{}
	if err := r.DB.Where("role = ?", models.RoleAdmin).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "finding admins")
	}
	return users, nil
}

func (r *userRepo) FindAllExcept(id uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	if err := r.DB.Where("id <> ?", id).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "finding users")
	}
	return users, nil
}

// FindInstructorsForStudent returns the distinct instructors of every
// course the student is enrolled in.
func (r *userRepo) FindInstructorsForStudent(studentID uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	err := r.DB.
		Distinct("users.*").
		Joins("JOIN courses ON courses.instructor_id = users.id").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ?", studentID).
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding instructors for student")
	}
	return users, nil
}

// FindStudentsForInstructor returns the distinct students enrolled in any
// course the instructor teaches.
func (r *userRepo) FindStudentsForInstructor(instructorID uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	err := r.DB.
		Distinct("users.*").
		Joins("JOIN enrollments ON enrollments.student_id = users.id").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.instructor_id = ?", instructorID).
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding students for instructor")
	}
	return users, nil
}
