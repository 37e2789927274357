package service

import (
	"context"
	"strings"

	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/repository"
	"blogicum/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when a login names an unknown user, so both failure paths
// cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("blogicum-dummy-password"), bcrypt.DefaultCost)

type UserService struct {
	userRepo repository.UserRepository
	cost     int
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

type UpdateProfileInput struct {
	UserID    uint
	Username  string
	FirstName string
	LastName  string
	Email     string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, cost: bcrypt.DefaultCost}
}

// WithHashCost sets the bcrypt cost for new passwords. Tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) ListUsers(ctx context.Context) ([]repository.UserPostCount, error) {
	return s.userRepo.ListWithPostCounts(ctx)
}

// Register validates a sign-up form and creates the account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	fields := map[string]string{}
	if err := validation.ValidateUsername(in.Username); err != nil {
		fields["username"] = err.Error()
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields["email"] = err.Error()
	}
	if in.Password != in.PasswordConfirm {
		fields["password2"] = "the two password fields didn't match"
	} else if err := validation.ValidatePassword(in.Password, in.Username, in.Email); err != nil {
		fields["password2"] = err.Error()
	}
	if len(fields) == 0 {
		existing, err := s.userRepo.FindByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fields["username"] = "A user with that username already exists."
		}
	}
	if appErr := models.NewFieldErrors(fields); appErr != nil {
		observability.AuthEvents.WithLabelValues("register", "invalid").Inc()
		return nil, appErr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	observability.AuthEvents.WithLabelValues("register", "success").Inc()
	return user, nil
}

// Authenticate checks a username and password. Every failure is the same UNAUTHORIZED error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	hash := dummyHash
	if user != nil {
		hash = []byte(user.Password)
	}
	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password)); cmpErr != nil || user == nil {
		observability.AuthEvents.WithLabelValues("login", "failure").Inc()
		return nil, models.NewUnauthorizedError("Please enter a correct username and password. Note that both fields may be case-sensitive.")
	}

	observability.AuthEvents.WithLabelValues("login", "success").Inc()
	return user, nil
}

// UpdateProfile saves the self-editable account fields.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	fields := map[string]string{}
	if err := validation.ValidateUsername(in.Username); err != nil {
		fields["username"] = err.Error()
	}
	if err := validation.ValidatePersonName(in.FirstName); err != nil {
		fields["first_name"] = err.Error()
	}
	if err := validation.ValidatePersonName(in.LastName); err != nil {
		fields["last_name"] = err.Error()
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields["email"] = err.Error()
	}
	if appErr := models.NewFieldErrors(fields); appErr != nil {
		return nil, appErr
	}

	user.Username = in.Username
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = in.Email

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetAdmin grants or revokes admin rights by username.
func (s *UserService) SetAdmin(ctx context.Context, username string, isAdmin bool) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetAdmin(ctx, user.ID, isAdmin); err != nil {
		return nil, err
	}
	user.IsAdmin = isAdmin
	return user, nil
}

// DeleteUser removes an account with all of its posts and comments.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, user.ID)
}
