package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

// SignupRequest is the input to local account registration.
type SignupRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=20,username"`
	Email       string `json:"email" validate:"required,email,max=50"`
	Password    string `json:"password" validate:"required,min=6,maxbytes=72"`
	DisplayName string `json:"fullName" validate:"max=100"`
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation. It matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return !strings.ContainsAny(fl.Field().String(), "@ \t\r\n")
		})
		// bcrypt limits input by bytes, max counts runes.
		_ = validate.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Param())
			return err == nil && len(fl.Field().String()) <= n
		})
	})
	return validate
}

// Validate checks req and returns a *ValidationError describing every bad field.
func (req SignupRequest) Validate() error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "maxbytes":
		return "must be at most " + fe.Param() + " bytes"
	case "username":
		return "must not contain spaces or @"
	default:
		return "is invalid"
	}
}

// Registrar creates local password accounts.
type Registrar struct {
	store       Store
	hasher      PasswordHasher
	logger      *slog.Logger
	defaultRole string
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithRegistrarLogger sets the registrar logger.
func WithRegistrarLogger(l *slog.Logger) RegistrarOption {
	return func(r *Registrar) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDefaultRole sets the role granted to new accounts. Empty values are ignored.
func WithDefaultRole(role string) RegistrarOption {
	return func(r *Registrar) {
		if role = NormalizeRole(role); role != "" {
			r.defaultRole = role
		}
	}
}

// NewRegistrar returns a Registrar that stores accounts in store.
func NewRegistrar(store Store, hasher PasswordHasher, opts ...RegistrarOption) *Registrar {
	r := &Registrar{
		store:       store,
		hasher:      hasher,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultRole: RoleUser,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("registrar"))
	return r
}

// Register validates req and creates the account.
// The exists checks only shorten the common path; a conflicting insert reported by
// the store yields the same ErrUsernameTaken or ErrEmailTaken.
func (r *Registrar) Register(ctx context.Context, req SignupRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = NormalizeEmail(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	taken, err := r.store.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		r.logger.InfoContext(ctx, "signup rejected: username taken")
		return nil, ErrUsernameTaken
	}

	taken, err = r.store.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		r.logger.InfoContext(ctx, "signup rejected: email taken")
		return nil, ErrEmailTaken
	}

	hash, err := r.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	saved, err := r.store.Save(ctx, &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Roles:        []string{r.defaultRole},
		Provider:     ProviderLocal,
		Enabled:      true,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			return nil, ErrUsernameTaken
		case errors.Is(err, ErrEmailTaken):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("save account: %w", err)
	}

	r.logger.InfoContext(ctx, "account registered", logger.UserID(saved.ID))
	return saved, nil
}
