package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dcastane/regportal-be/internal/intake"
	"github.com/dcastane/regportal-be/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
)

// Attachment is a raw uploaded file as received from the client.
type Attachment struct {
	Filename string
	Data     []byte
}

// RegisterInput carries the validated form fields and optional attachments
// for a registration.
type RegisterInput struct {
	Name        string
	DateOfBirth time.Time
	Place       string
	Email       string
	Phone       string
	Address     string
	Password    string
	ProfilePic  *Attachment
	Resume      *Attachment
}

// Identity is the minimal payload returned by a successful login.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (Identity, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

// UserService provides business logic for registration, login and the
// administrative views.
type UserService struct {
	db     *sql.DB
	intake *intake.Intake
	audit  AuditServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, in *intake.Intake, audit AuditServiceProvider) *UserService {
	return &UserService{db: db, intake: in, audit: audit}
}

// writtenFile tracks a stored attachment so it can be compensated if a
// later pipeline step fails.
type writtenFile struct {
	role intake.Role
	ref  string
}

// Register runs the registration pipeline: duplicate check, password
// hashing, file intake, record insert. The store and the filesystem share
// no transaction, so any failure after a file write triggers a
// compensating delete of everything written so far.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	// Fast-path duplicate check. The unique index on users.email is the
	// authoritative guard; see the insert below.
	var existing string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", in.Email).Scan(&existing)
	if err == nil {
		return models.User{}, ErrDuplicateEmail
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("duplicate check failed: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var written []writtenFile
	compensate := func() {
		for _, f := range written {
			if err := s.intake.Discard(ctx, f.role, f.ref); err != nil {
				log.Warn().Err(err).Str("ref", f.ref).Msg("Failed to remove file while rolling back registration")
			}
		}
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		DateOfBirth:  in.DateOfBirth,
		Place:        in.Place,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if in.ProfilePic != nil {
		ref, err := s.intake.Save(ctx, intake.RolePhoto, in.ProfilePic.Filename, in.ProfilePic.Data)
		if err != nil {
			compensate()
			return models.User{}, err
		}
		written = append(written, writtenFile{intake.RolePhoto, ref})
		user.ProfilePic = ref
	}

	if in.Resume != nil {
		ref, err := s.intake.Save(ctx, intake.RoleResume, in.Resume.Filename, in.Resume.Data)
		if err != nil {
			compensate()
			return models.User{}, err
		}
		written = append(written, writtenFile{intake.RoleResume, ref})
		user.Resume = ref
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, date_of_birth, place, email, phone, address, password_hash, profile_pic, resume, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.DateOfBirth, user.Place, user.Email, user.Phone,
		user.Address, user.PasswordHash, user.ProfilePic, user.Resume, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		compensate()
		if isUniqueViolation(err) {
			// A concurrent registration won the race past the pre-check.
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	s.audit.Record(ctx, EventUserRegistered, fmt.Sprintf("User %s registered", user.Email), &user.ID)

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	var (
		id   string
		name string
		hash string
	)
	row := s.db.QueryRowContext(ctx, "SELECT id, name, password_hash FROM users WHERE email = ?", email)
	if err := row.Scan(&id, &name, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{UserID: id, Name: name}, nil
}

// ListUsers retrieves all users in store order. The password hash is never
// selected, so it cannot leak into any response.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, date_of_birth, place, email, phone, address, profile_pic, resume, created_at, updated_at
		 FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var (
			user                      models.User
			place, profilePic, resume sql.NullString
		)
		if err := rows.Scan(&user.ID, &user.Name, &user.DateOfBirth, &place, &user.Email,
			&user.Phone, &user.Address, &profilePic, &resume,
			&user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		user.Place = place.String
		user.ProfilePic = profilePic.String
		user.Resume = resume.String
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountUsers returns the number of registered users.
func (s *UserService) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// DeleteUser removes a user record and then, best-effort, its files. The
// record is authoritative: once it is gone the deletion has succeeded, and
// file cleanup failures are only logged.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	var profilePic, resume sql.NullString
	row := s.db.QueryRowContext(ctx, "SELECT profile_pic, resume FROM users WHERE id = ?", id)
	if err := row.Scan(&profilePic, &resume); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Deleted concurrently between the select and the delete.
		return ErrUserNotFound
	}

	if profilePic.String != "" {
		if err := s.intake.Discard(ctx, intake.RolePhoto, profilePic.String); err != nil {
			log.Warn().Err(err).Str("user_id", id).Str("ref", profilePic.String).Msg("Failed to delete profile picture")
		}
	}
	if resume.String != "" {
		if err := s.intake.Discard(ctx, intake.RoleResume, resume.String); err != nil {
			log.Warn().Err(err).Str("user_id", id).Str("ref", resume.String).Msg("Failed to delete resume")
		}
	}

	s.audit.Record(ctx, EventUserDeleted, fmt.Sprintf("User %s deleted", id), &id)
	return nil
}

// isUniqueViolation reports whether err came from the unique email index.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
