package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"timebank/internal/cache"
	"timebank/internal/config"
	"timebank/internal/middleware"
	"timebank/internal/models"
	"timebank/internal/notifications"
	"timebank/internal/repository"
	"timebank/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles accounts, sessions and profiles.
type UserService struct {
	repos  Repositories
	cache  *cache.Cache
	events EventPublisher
	cfg    *config.Config
	now    func() time.Time
}

// SignupInput is the registration form.
type SignupInput struct {
	Email       string
	Password    string
	FullName    string
	AccountKind models.AccountKind
	City        string
	Country     string
}

// UpdateProfileInput lists editable profile fields; nil fields are left alone.
type UpdateProfileInput struct {
	FullName           *string
	City               *string
	Country            *string
	Bio                *string
	PhotoURL           *string
	Skills             []string
	AvailableTimeSlots []string
}

// Session is an issued token with its account.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func NewUserService(repos Repositories, c *cache.Cache, events EventPublisher, cfg *config.Config) *UserService {
	return &UserService{
		repos:  repos,
		cache:  c,
		events: events,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Signup registers an account with its starting balance: 60 minutes for an
// individual, none for an organization, which also starts unverified.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateFullName(in.FullName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	kind := in.AccountKind
	if kind == "" {
		kind = models.AccountIndividual
	}
	if !kind.Valid() {
		return nil, models.NewValidationError("account_type must be individual or organization")
	}
	city := strings.ToLower(strings.TrimSpace(in.City))
	if city != "" {
		if err := validation.ValidateCity(city); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = models.DefaultCountry
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		FullName:           strings.TrimSpace(in.FullName),
		Email:              email,
		Password:           string(hashed),
		AccountKind:        kind,
		TimeCredits:        kind.StartingCredits(),
		City:               city,
		Country:            country,
		Skills:             []string{},
		AvailableTimeSlots: []string{},
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user signed up", "user_id", user.ID, "account_type", user.AccountKind)
	return s.issue(user)
}

// Login checks credentials and issues a token. Unknown email and wrong
// password fail the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return s.issue(user)
}

// Logout revokes the presented token until it would have expired.
func (s *UserService) Logout(ctx context.Context, claims *middleware.AuthClaims) error {
	if claims == nil {
		return models.NewUnauthorizedError("not signed in")
	}
	if err := middleware.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return models.NewExternalError("session store", err)
	}
	return nil
}

func (s *UserService) issue(user *models.User) (*Session, error) {
	token, exp, err := s.generateToken(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// generateToken signs an HS256 token whose subject is the user id.
func (s *UserService) generateToken(userID uint) (string, time.Time, error) {
	if s.cfg == nil || s.cfg.JWTSecret == "" {
		return "", time.Time{}, errors.New("JWT secret not configured")
	}
	ttl := time.Duration(s.cfg.JWTTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	now := s.now()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": s.cfg.JWTIssuer,
		"aud": s.cfg.JWTAudience,
		"exp": exp.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": generateJTI(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString())
}

// GetProfile reads a user through the profile cache.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		u, err := s.repos.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits display fields. Balance, counters and verification are
// not reachable from here.
func (s *UserService) UpdateProfile(ctx context.Context, actorID uint, in UpdateProfileInput) (*models.User, error) {
	var changes repository.ProfileChanges
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if err := validation.ValidateFullName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.FullName = &name
	}
	if in.City != nil {
		city := strings.ToLower(strings.TrimSpace(*in.City))
		if err := validation.ValidateCity(city); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.City = &city
	}
	if in.Country != nil {
		country := strings.TrimSpace(*in.Country)
		if country == "" {
			country = models.DefaultCountry
		}
		changes.Country = &country
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if err := validation.ValidateBio(bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.Bio = &bio
	}
	if in.PhotoURL != nil {
		photo := strings.TrimSpace(*in.PhotoURL)
		changes.PhotoURL = &photo
	}
	if in.Skills != nil {
		skills, err := validation.NormalizeSkills(in.Skills)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.Skills = &skills
	}
	if in.AvailableTimeSlots != nil {
		slots, err := validation.NormalizeTimeSlots(in.AvailableTimeSlots)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.AvailableTimeSlots = &slots
	}

	if err := s.repos.Users.UpdateProfile(ctx, actorID, changes); err != nil {
		return nil, err
	}
	s.cache.InvalidateUsers(ctx, actorID)

	user, err := s.repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, notifications.Event{
		Collection: notifications.CollectionUsers,
		Kind:       notifications.KindUserUpdated,
		DocID:      user.ID,
		Users:      []uint{user.ID},
	})
	return user, nil
}

// VerifyOrganization marks an organization account as verified.
func (s *UserService) VerifyOrganization(ctx context.Context, id uint) (*models.User, error) {
	if err := s.repos.Users.SetVerified(ctx, id, true); err != nil {
		return nil, err
	}
	s.cache.InvalidateUsers(ctx, id)
	middleware.Logger.InfoContext(ctx, "organization verified", "user_id", id)
	return s.repos.Users.GetByID(ctx, id)
}

// IsAdmin reports whether id holds the admin flag.
func (s *UserService) IsAdmin(ctx context.Context, id uint) (bool, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
