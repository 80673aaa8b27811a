package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vidhi28vaghela05/lms-project-sub000/db"
	"github.com/vidhi28vaghela05/lms-project-sub000/models"
)

func newTestUserRepo(t *testing.T) (db.UserRepository, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
	))
	return db.NewUserRepo(&db.GormDB{DB: gdb}), gdb
}

func addUser(t *testing.T, gdb *gorm.DB, name, role string) *models.User {
	t.Helper()
	u := &models.User{
		ID:       uuid.New(),
		FullName: name,
		Email:    uuid.NewString() + "@example.com",
		Role:     role,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func enroll(t *testing.T, gdb *gorm.DB, course *models.Course, student *models.User) {
	t.Helper()
	require.NoError(t, gdb.Create(&models.Enrollment{
		CourseID:  course.ID,
		StudentID: student.ID,
	}).Error)
}

func addCourse(t *testing.T, gdb *gorm.DB, title string, instructor *models.User) *models.Course {
	t.Helper()
	c := &models.Course{
		ID:           uuid.New(),
		Title:        title,
		InstructorID: instructor.ID,
	}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func partnerIDs(partners []models.UserResponse) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(partners))
	for _, p := range partners {
		ids[p.ID] = true
	}
	return ids
}

func TestPartnersFor_Student(t *testing.T) {
	repo, gdb := newTestUserRepo(t)
	svc := NewPartnerService(repo)

	student := addUser(t, gdb, "Student S", models.RoleStudent)
	instructor := addUser(t, gdb, "Instructor I", models.RoleInstructor)
	unrelated := addUser(t, gdb, "Instructor I2", models.RoleInstructor)
	admin := addUser(t, gdb, "Admin A", models.RoleAdmin)

	course := addCourse(t, gdb, "Course C", instructor)
	enroll(t, gdb, course, student)
	// I2 teaches an unrelated course with no shared enrollment.
	addCourse(t, gdb, "Unrelated", unrelated)

	partners, apiErr := svc.PartnersFor(student)
	require.Nil(t, apiErr)

	ids := partnerIDs(partners)
	assert.True(t, ids[instructor.ID], "enrolled course's instructor must be visible")
	assert.True(t, ids[admin.ID], "admins are always visible")
	assert.False(t, ids[unrelated.ID], "unrelated instructor must not be visible")
	assert.False(t, ids[student.ID], "never lists the principal itself")
}

func TestPartnersFor_StudentDeduplicates(t *testing.T) {
	repo, gdb := newTestUserRepo(t)
	svc := NewPartnerService(repo)

	student := addUser(t, gdb, "Student", models.RoleStudent)
	instructor := addUser(t, gdb, "Instructor", models.RoleInstructor)

	// Same instructor across two enrolled courses appears once.
	c1 := addCourse(t, gdb, "Course 1", instructor)
	c2 := addCourse(t, gdb, "Course 2", instructor)
	enroll(t, gdb, c1, student)
	enroll(t, gdb, c2, student)

	partners, apiErr := svc.PartnersFor(student)
	require.Nil(t, apiErr)
	require.Len(t, partners, 1)
	assert.Equal(t, instructor.ID, partners[0].ID)
}

func TestPartnersFor_Instructor(t *testing.T) {
	repo, gdb := newTestUserRepo(t)
	svc := NewPartnerService(repo)

	instructor := addUser(t, gdb, "Instructor", models.RoleInstructor)
	enrolled := addUser(t, gdb, "Enrolled", models.RoleStudent)
	other := addUser(t, gdb, "Other", models.RoleStudent)
	admin := addUser(t, gdb, "Admin", models.RoleAdmin)

	course := addCourse(t, gdb, "Course", instructor)
	enroll(t, gdb, course, enrolled)

	partners, apiErr := svc.PartnersFor(instructor)
	require.Nil(t, apiErr)

	ids := partnerIDs(partners)
	assert.True(t, ids[enrolled.ID])
	assert.True(t, ids[admin.ID])
	assert.False(t, ids[other.ID], "students without a shared course are invisible")
}

func TestPartnersFor_Admin(t *testing.T) {
	repo, gdb := newTestUserRepo(t)
	svc := NewPartnerService(repo)

	admin := addUser(t, gdb, "Admin", models.RoleAdmin)
	student := addUser(t, gdb, "Student", models.RoleStudent)
	instructor := addUser(t, gdb, "Instructor", models.RoleInstructor)

	partners, apiErr := svc.PartnersFor(admin)
	require.Nil(t, apiErr)

	ids := partnerIDs(partners)
	assert.Len(t, ids, 2)
	assert.True(t, ids[student.ID])
	assert.True(t, ids[instructor.ID])
	assert.False(t, ids[admin.ID])
}

func TestPartnersFor_UnknownRole(t *testing.T) {
	repo, gdb := newTestUserRepo(t)
	svc := NewPartnerService(repo)

	ghost := addUser(t, gdb, "Ghost", "auditor")
	addUser(t, gdb, "Admin", models.RoleAdmin)

	partners, apiErr := svc.PartnersFor(ghost)
	require.Nil(t, apiErr)
	assert.Empty(t, partners)
}
