package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hirelens/hirelens/internal/models"
	mongorepo "github.com/hirelens/hirelens/internal/repositories/mongo"
	"github.com/hirelens/hirelens/internal/utils"
)

const tokenTTL = 24 * time.Hour

type RegisterInput struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     models.UserRole `json:"role"`
	Company  string          `json:"company"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
}

type authService struct {
	users  mongorepo.UserRepository
	secret []byte
	log    *logrus.Logger
}

func NewAuthService(users mongorepo.UserRepository, log *logrus.Logger) AuthService {
	return &authService{
		users:  users,
		secret: []byte(os.Getenv("JWT_SECRET")),
		log:    log,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	const op = "AuthService.Register"

	if in.Role == "" {
		in.Role = models.RoleRecruiter
	}
	switch in.Role {
	case models.RoleRecruiter, models.RoleAdmin, models.RoleHR:
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown role", nil)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    in.Email,
		Password: hash,
		Role:     in.Role,
		Company:  in.Company,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, mongorepo.ErrDuplicateEmail) {
			return nil, utils.E(utils.CodeConflict, op, "email already registered", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": user.ID.Hex(),
		"role":    user.Role,
	}).Info("user registered")

	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	const op = "AuthService.Login"

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			// Same message as a bad password so the endpoint never confirms
			// which emails exist.
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if !user.IsActive {
		return nil, utils.E(utils.CodeForbidden, op, "account is deactivated", nil)
	}
	if err := utils.CheckPassword(user.Password, in.Password); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID.Hex()).
			Warn("failed to update last login")
	}

	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	const op = "AuthService.Me"

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	return user, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT_SECRET is not set")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  user.ID.Hex(),
		"role": string(user.Role),
		"name": user.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
