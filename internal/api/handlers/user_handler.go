package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/dcastane/regportal-be/internal/intake"
	"github.com/dcastane/regportal-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	// In-memory buffering threshold for the multipart parser; larger
	// parts spool to temp files. Size limits are enforced per role by
	// readAttachment and intake, not here.
	maxMultipartMemory = 8 << 20

	// Hard cap on the whole request body, comfortably above the
	// combined per-role limits, so a runaway upload cannot fill the
	// temp spool.
	maxRequestBytes = 16 << 20
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// UserHandler handles HTTP requests for registration, login and the
// administrative user views.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration from a multipart form with
// optional profilePic and resume file parts.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	dob, err := time.Parse("2006-01-02", r.FormValue("dob"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Date of birth must be YYYY-MM-DD")
		return
	}

	in := services.RegisterInput{
		Name:        r.FormValue("name"),
		DateOfBirth: dob,
		Place:       r.FormValue("place"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Address:     r.FormValue("address"),
		Password:    r.FormValue("password"),
	}

	if in.Name == "" || in.Email == "" || in.Address == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !phonePattern.MatchString(in.Phone) {
		writeError(w, http.StatusBadRequest, "Phone must be 10 digits")
		return
	}

	if in.ProfilePic, err = readAttachment(r, "profilePic", intake.MaxSize(intake.RolePhoto)); err != nil {
		writeError(w, http.StatusBadRequest, "Could not read profile photo")
		return
	}
	if in.Resume, err = readAttachment(r, "resume", intake.MaxSize(intake.RoleResume)); err != nil {
		writeError(w, http.StatusBadRequest, "Could not read resume")
		return
	}

	if _, err := h.service.Register(r.Context(), in); err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, intake.ErrInvalidFileType), errors.Is(err, intake.ErrFileTooLarge):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Str("email", in.Email).Msg("Failed to register user")
			writeError(w, http.StatusInternalServerError, "Server error during registration")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully!"})
}

// readAttachment pulls one optional file part out of the form. The read is
// capped just past the role's size limit so oversized uploads still reach
// intake's defensive check instead of exhausting memory.
func readAttachment(r *http.Request, field string, maxSize int64) (*services.Attachment, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, err
	}
	return &services.Attachment{Filename: header.Filename, Data: data}, nil
}

// Login handles credential verification. No session or token is issued;
// the response is a bare identity payload.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrInvalidCredentials):
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Login failed")
			writeError(w, http.StatusInternalServerError, "Server error during login")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"userId":  identity.UserID,
		"name":    identity.Name,
	})
}

// GetAll handles the administrative listing of all users.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Delete handles the administrative deletion of a user and their files.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
