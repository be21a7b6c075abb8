package actions

import (
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/forms"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Signup validates the fields, hashes the password and creates the User.
// The application-level email check produces the friendly field error; the
// unique index on users.email is what actually closes the race between
// concurrent signups, so a duplicated-key error maps to the same message.
func Signup(input SignupInput) (*models.User, forms.Result) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	errs := forms.Errors{}

	if len(name) < 2 {
		errs.Add("name", "Name must be at least 2 characters")
	}

	if !emailPattern.MatchString(email) {
		errs.Add("email", "Invalid email address")
	}

	if len(input.Password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
	}

	if !errs.Empty() {
		return nil, errs.Result()
	}

	var existingUser models.User

	err := db.DB.Where("email = ?", email).First(&existingUser).Error

	if err == nil {
		return nil, forms.FieldError("email", "User with this email already exists")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Signup error: %v", err)
		return nil, forms.FormError("Failed to create account. Please try again.")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return nil, forms.FormError("Failed to create account. Please try again.")
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
	}

	if err := db.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, forms.FieldError("email", "User with this email already exists")
		}
		log.Printf("Failed to create user: %v", err)
		return nil, forms.FormError("Failed to create account. Please try again.")
	}

	return &user, forms.OK()
}

// Login returns the same form-level error for an unknown email and a wrong
// password so the response never reveals whether the email is registered.
func Login(input LoginInput) (*models.User, forms.Result) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	errs := forms.Errors{}

	if !emailPattern.MatchString(email) {
		errs.Add("email", "Invalid email address")
	}

	if input.Password == "" {
		errs.Add("password", "Password is required")
	}

	if !errs.Empty() {
		return nil, errs.Result()
	}

	var user models.User

	err := db.DB.Where("email = ?", email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, forms.FormError("Invalid email or password")
		}
		log.Printf("Login error: %v", err)
		return nil, forms.FormError("Failed to login. Please try again.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, forms.FormError("Invalid email or password")
	}

	return &user, forms.OK()
}

// GetUser resolves a user id to its minimal identity projection. Any
// lookup failure is treated as "no identity" so an error performing the
// lookup can never be mistaken for an authenticated caller.
func GetUser(userID uint) *types.UserResponse {
	if userID == 0 {
		return nil
	}

	var user models.User

	if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Get current user error: %v", err)
		}
		return nil
	}

	return &types.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// DeleteUser removes the account after re-verifying the password. Owned
// projects, their tasks and the user's notifications go with it.
func DeleteUser(userID uint, password string) forms.Result {
	if userID == 0 {
		return forms.FormError("You must be logged in to delete your account")
	}

	var user models.User

	if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return forms.FormError("You must be logged in to delete your account")
		}
		log.Printf("Delete account error: %v", err)
		return forms.FormError("Failed to delete account. Please try again.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return forms.FieldError("password", "Incorrect password")
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id IN (SELECT id FROM projects WHERE owner_id = ?)", userID).
			Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("owner_id = ?", userID).Delete(&models.Project{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})

	if err != nil {
		log.Printf("Delete account error: %v", err)
		return forms.FormError("Failed to delete account. Please try again.")
	}

	return forms.OK()
}
