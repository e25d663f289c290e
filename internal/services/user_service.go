package services

import (
	"context"
	"errors"
	"strings"

	"estate_backend/internal/auth"
	"estate_backend/internal/logger"
	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/services/dto"
	"estate_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetCurrent(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	// UpdateProfilePicture заменяет фото профиля; старый файл удаляется
	UpdateProfilePicture(ctx context.Context, db *gorm.DB, userID string, file *dto.UploadedFile) (*dto.UserResponse, error)

	// Admin
	List(ctx context.Context, db *gorm.DB, query *dto.UserListQuery) (*dto.ListResponse[dto.UserResponse], error)
	AdminUpdate(ctx context.Context, db *gorm.DB, userID string, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error)

	// SeedAdmin создает первого администратора; false - пользователь с таким email уже есть
	SeedAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error)
}

type userService struct {
	userRepo repositories.UserRepository
	media    MediaService
}

func NewUserService(userRepo repositories.UserRepository, media MediaService) UserService {
	return &userService{userRepo: userRepo, media: media}
}

func (s *userService) GetCurrent(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	return toUserResponse(ctx, s.media, user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if req.Password != "" {
		if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
			return nil, apperrors.ErrWrongPassword
		}
		hash, err := hashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, handleUserError(err)
	}
	return toUserResponse(ctx, s.media, user), nil
}

func (s *userService) UpdateProfilePicture(ctx context.Context, db *gorm.DB, userID string, file *dto.UploadedFile) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	path, err := s.media.StoreImage(ctx, MediaCategoryProfilePicture, file)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfilePicture(db, user.ID, path); err != nil {
		s.media.DeleteImage(ctx, path)
		return nil, handleUserError(err)
	}

	old := user.ProfilePicture
	user.ProfilePicture = path
	s.media.DeleteImage(ctx, old)

	return toUserResponse(ctx, s.media, user), nil
}

func (s *userService) List(ctx context.Context, db *gorm.DB, query *dto.UserListQuery) (*dto.ListResponse[dto.UserResponse], error) {
	paging := repositories.Paging{Page: query.Page, PerPage: query.PerPage}.Normalize()
	users, total, err := s.userRepo.List(db, repositories.UserFilter{
		Role:   models.UserRole(query.Role),
		Status: models.UserStatus(query.Status),
		Search: query.Search,
		Paging: paging,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, *toUserResponse(ctx, s.media, &users[i]))
	}
	return &dto.ListResponse[dto.UserResponse]{
		Data: items,
		Meta: dto.NewPaginationMeta(paging.Page, paging.PerPage, total),
	}, nil
}

func (s *userService) AdminUpdate(ctx context.Context, db *gorm.DB, userID string, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	if req.Status != nil {
		user.Status = models.UserStatus(*req.Status)
	}
	if req.IsApproved != nil {
		user.IsApproved = *req.IsApproved
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, handleUserError(err)
	}

	logger.CtxInfo(ctx, "user updated by admin", "target_user_id", user.ID, "role", user.Role, "status", user.Status)
	return toUserResponse(ctx, s.media, user), nil
}

func (s *userService) SeedAdmin(ctx context.Context, db *gorm.DB, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}

	if _, err := s.userRepo.FindByEmail(db, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return false, err
	}

	if err := auth.ValidatePassword(password); err != nil {
		return false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
		IsApproved:   true,
	}
	if err := s.userRepo.Create(db, admin); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return false, nil
		}
		return false, err
	}

	logger.CtxInfo(ctx, "first admin account created", "email", email)
	return true, nil
}

func handleUserError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrUserAlreadyExists):
		return apperrors.ErrEmailTaken
	default:
		return apperrors.InternalError(err)
	}
}

func toUserResponse(ctx context.Context, media MediaService, user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Role:              user.Role,
		Status:            user.Status,
		IsApproved:        user.IsApproved,
		Phone:             user.Phone,
		Bio:               user.Bio,
		ProfilePicture:    user.ProfilePicture,
		ProfilePictureURL: media.URL(ctx, user.ProfilePicture),
		CreatedAt:         user.CreatedAt,
	}
}
