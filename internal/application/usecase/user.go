package usecase

import (
	"context"

	"lmsplatform/internal/domain"
	"lmsplatform/internal/infrastructure/security"
	"lmsplatform/internal/logger"
)

type TokenCache interface {
	SaveRefresh(ctx context.Context, userID, refreshToken string) error
	CheckRefresh(ctx context.Context, refreshToken string) (string, error)
	DeleteRefresh(ctx context.Context, refreshToken string) error
}

type UserUseCase struct {
	users        UserStore
	hasher       *security.PasswordHasher
	tokenManager *security.TokenManager
	tokenCache   TokenCache
	media        MediaHost
	log          *logger.Logger
}

func NewUserUseCase(
	users UserStore,
	hasher *security.PasswordHasher,
	tm *security.TokenManager,
	tc TokenCache,
	media MediaHost,
	log *logger.Logger,
) *UserUseCase {
	return &UserUseCase{
		users:        users,
		hasher:       hasher,
		tokenManager: tm,
		tokenCache:   tc,
		media:        media,
		log:          log,
	}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (uc *UserUseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     domain.RoleUser,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*domain.User, security.TokenPair, error) {
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, security.TokenPair{}, domain.ErrInvalidCredentials
	}
	if err := uc.hasher.Compare(user.Password, password); err != nil {
		return nil, security.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := uc.tokenManager.Generate(user)
	if err != nil {
		return nil, security.TokenPair{}, err
	}
	if err := uc.tokenCache.SaveRefresh(ctx, user.ID.Hex(), pair.RefreshToken); err != nil {
		return nil, security.TokenPair{}, err
	}
	return user, pair, nil
}

func (uc *UserUseCase) Refresh(ctx context.Context, oldRefreshToken string) (security.TokenPair, error) {
	userID, err := uc.tokenManager.ValidateRefreshToken(oldRefreshToken)
	if err != nil {
		return security.TokenPair{}, domain.ErrInvalidCredentials
	}

	cachedID, err := uc.tokenCache.CheckRefresh(ctx, oldRefreshToken)
	if err != nil || cachedID != userID {
		return security.TokenPair{}, domain.ErrInvalidCredentials
	}
	// Старый токен одноразовый
	_ = uc.tokenCache.DeleteRefresh(ctx, oldRefreshToken)

	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return security.TokenPair{}, err
	}

	pair, err := uc.tokenManager.Generate(user)
	if err != nil {
		return security.TokenPair{}, err
	}
	if err := uc.tokenCache.SaveRefresh(ctx, userID, pair.RefreshToken); err != nil {
		return security.TokenPair{}, err
	}
	return pair, nil
}

func (uc *UserUseCase) Logout(ctx context.Context, refreshToken string) error {
	return uc.tokenCache.DeleteRefresh(ctx, refreshToken)
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.FindByID(ctx, userID)
}

// UpdateAvatar сносит старую картинку с хостинга и заливает новую
func (uc *UserUseCase) UpdateAvatar(ctx context.Context, user *domain.User, avatar string) (*domain.User, error) {
	if user.Avatar.PublicID != "" {
		if err := uc.media.Destroy(ctx, user.Avatar.PublicID); err != nil {
			return nil, err
		}
	}

	thumb, err := uc.media.Upload(ctx, "avatars", avatar)
	if err != nil {
		return nil, err
	}
	if err := uc.users.UpdateAvatar(ctx, user.ID.Hex(), thumb); err != nil {
		return nil, err
	}

	user.Avatar = thumb
	return user, nil
}
