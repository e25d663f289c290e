package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"estate_backend/internal/auth"
	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Logout отзывает токен до истечения его срока
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	// Authenticate проверяет токен, blacklist и что пользователь существует и активен
	Authenticate(ctx context.Context, db *gorm.DB, token string) (*models.User, *auth.Claims, error)
	TokenTTL() time.Duration
}

type AuthServiceImpl struct {
	userRepo   repositories.UserRepository
	outboxRepo repositories.OutboxRepository
	tokens     *auth.TokenManager
	blacklist  auth.Blacklist
	media      MediaService
}

func NewAuthService(
	userRepo repositories.UserRepository,
	outboxRepo repositories.OutboxRepository,
	tokens *auth.TokenManager,
	blacklist auth.Blacklist,
	media MediaService,
) AuthService {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		tokens:     tokens,
		blacklist:  blacklist,
		media:      media,
	}
}

func (s *AuthServiceImpl) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Register - регистрация; роль admin недоступна, агент ждет подтверждения администратором
func (s *AuthServiceImpl) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	role := models.UserRole(req.Role)
	if role == "" {
		role = models.UserRoleUser
	}
	if !auth.SelfAssignableRole(string(role)) {
		return nil, apperrors.FieldError("role", "The selected value is invalid")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		Status:       models.UserStatusActive,
		IsApproved:   role != models.UserRoleAgent,
		Phone:        req.Phone,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.FindByEmail(tx, user.Email); err == nil {
			return apperrors.ErrEmailTaken
		} else if !errors.Is(err, repositories.ErrUserNotFound) {
			return err
		}

		if err := s.userRepo.Create(tx, user); err != nil {
			if errors.Is(err, repositories.ErrUserAlreadyExists) {
				return apperrors.ErrEmailTaken
			}
			return err
		}

		return enqueueEvent(tx, s.outboxRepo, EventUserRegistered, user.ID, UserEvent{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
		})
	})
	if err != nil {
		return nil, handleAuthError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return s.issueToken(ctx, user)
}

func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "failed login attempt", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrAccountSuspended
	}
	if auth.NeedsRehash(user.PasswordHash) {
		s.rehashPassword(ctx, db, user, req.Password)
	}

	return s.issueToken(ctx, user)
}

// rehashPassword пересчитывает хеш с текущей стоимостью; ошибка не мешает входу
func (s *AuthServiceImpl) rehashPassword(ctx context.Context, db *gorm.DB, user *models.User, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.userRepo.UpdatePasswordHash(db, user.ID, hash)
	}
	if err != nil {
		logger.CtxWithError(ctx, "failed to rehash password", err, "user_id", user.ID)
		return
	}
	user.PasswordHash = hash
	logger.CtxDebug(ctx, "password rehashed", "user_id", user.ID, "cost", auth.HashCost)
}

// hashPassword переводит нарушение политики паролей в ошибку поля password
func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if auth.IsPasswordPolicyError(err) {
			return "", apperrors.FieldError("password", err.Error())
		}
		return "", apperrors.InternalError(err)
	}
	return hash, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, tokenID, expiresAt); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, db *gorm.DB, token string) (*models.User, *auth.Claims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, nil, apperrors.ErrInvalidToken
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}
	if revoked {
		return nil, nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, apperrors.ErrInvalidToken
		}
		return nil, nil, apperrors.InternalError(err)
	}
	if user.Status != models.UserStatusActive {
		return nil, nil, apperrors.ErrAccountSuspended
	}
	return user, claims, nil
}

func (s *AuthServiceImpl) issueToken(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	token, _, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      toUserResponse(ctx, s.media, user),
	}, nil
}

func handleAuthError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.InternalError(err)
}
