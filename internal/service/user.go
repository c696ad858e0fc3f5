package service

import (
	"Orion_Shorts/internal/model"
	"Orion_Shorts/internal/repository"
	"Orion_Shorts/pkg/logger"
	"Orion_Shorts/pkg/token"
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const profilePicturePrefix = "profile_pictures"

// UserProfile 是用户加上派生计数，计数每次从关系表统计
type UserProfile struct {
	model.User
	Stats model.UserStats
}

// AuthResult 是注册/登录的返回：用户资料和一对令牌
type AuthResult struct {
	User   UserProfile
	Tokens *token.Pair
}

// 用户服务接口：注册、登录、刷新令牌、资料查询与修改、搜索
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*token.Pair, error)

	GetProfile(ctx context.Context, userID uint64) (*UserProfile, error)
	UpdateUsername(ctx context.Context, userID uint64, username string) (*UserProfile, error)
	UpdateProfilePicture(ctx context.Context, userID uint64, upload Upload) (*UserProfile, error)

	// 用户名不区分大小写的子串搜索，按粉丝数倒序分页
	Search(ctx context.Context, query string, page PageRequest) (*Page[UserProfile], error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   *token.Manager
	storage  MediaStorage
}

func NewUserService(userRepo repository.UserRepository, tokens *token.Manager, storage MediaStorage) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
		storage:  storage,
	}
}

// 注册：1、用户名和邮箱统一小写 2、检查是否重名/重邮箱 3、密码加密 4、插入数据库 5、签发令牌
func (s *userService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.checkUsernameFree(ctx, username); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, NewValidationError("email", "邮箱已被注册")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	newUser := &model.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		// 两个注册请求同时通过了上面的检查，由唯一索引兜底
		if repository.IsDuplicateKey(err) {
			return nil, NewValidationError("username", "用户名或邮箱已存在")
		}
		return nil, err
	}
	return s.authResult(ctx, newUser)
}

// 登录：1、按小写用户名查找 2、比对密码 3、签发令牌。用户不存在和密码错误返回同一个错误
func (s *userService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.authResult(ctx, user)
}

// Refresh 用refresh令牌换一对新令牌，用户必须仍然存在；用户名以数据库为准
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.tokens.IssuePair(user.ID, user.Username)
}

func (s *userService) GetProfile(ctx context.Context, userID uint64) (*UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	profiles, err := buildProfiles(ctx, s.userRepo, []model.User{*user})
	if err != nil {
		return nil, err
	}
	return &profiles[0], nil
}

func (s *userService) UpdateUsername(ctx context.Context, userID uint64, username string) (*UserProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, NewValidationError("username", "用户名不能为空")
	}
	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.Username == username {
		return current, nil
	}
	if err := s.checkUsernameFree(ctx, username); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateUsername(ctx, userID, username); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, NewValidationError("username", "用户名已存在")
		}
		return nil, err
	}
	current.Username = username
	return current, nil
}

// 更换头像：先上传新对象，数据库更新成功后再删除旧对象；更新失败则删掉刚上传的对象
func (s *userService) UpdateProfilePicture(ctx context.Context, userID uint64, upload Upload) (*UserProfile, error) {
	if err := upload.validate("profile_picture", "image/"); err != nil {
		return nil, err
	}
	current, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.storage.Upload(ctx, profilePicturePrefix, upload.Filename, upload.Reader, upload.Size, upload.ContentType)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfilePicture(ctx, userID, key); err != nil {
		removeObject(ctx, s.storage, key)
		return nil, err
	}
	removeObject(ctx, s.storage, current.ProfilePicture)

	current.ProfilePicture = key
	return current, nil
}

func (s *userService) Search(ctx context.Context, query string, page PageRequest) (*Page[UserProfile], error) {
	page = page.Normalize()
	users, total, err := s.userRepo.Search(ctx, strings.TrimSpace(query), page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	profiles, err := buildProfiles(ctx, s.userRepo, users)
	if err != nil {
		return nil, err
	}
	return &Page[UserProfile]{Items: profiles, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *userService) checkUsernameFree(ctx context.Context, username string) error {
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return NewValidationError("username", "用户名已存在")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *userService) authResult(ctx context.Context, user *model.User) (*AuthResult, error) {
	tokens, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	profiles, err := buildProfiles(ctx, s.userRepo, []model.User{*user})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: profiles[0], Tokens: tokens}, nil
}

// buildProfiles 批量统计一组用户的派生计数，保持传入顺序
func buildProfiles(ctx context.Context, userRepo repository.UserRepository, users []model.User) ([]UserProfile, error) {
	ids := make([]uint64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	stats, err := userRepo.Stats(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make([]UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, UserProfile{User: u, Stats: stats[u.ID]})
	}
	return profiles, nil
}

// removeObject 尽力删除对象，失败只记日志
func removeObject(ctx context.Context, storage MediaStorage, key string) {
	if key == "" {
		return
	}
	if err := storage.Remove(ctx, key); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("删除对象失败")
	}
}
