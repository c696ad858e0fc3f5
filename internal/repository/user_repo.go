package repository

import (
	"Orion_Shorts/internal/model"
	"context"
	"strings"

	"gorm.io/gorm"
)

// 用户仓库：账号的增改查，以及搜索、推荐和派生计数这些读查询
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID uint64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUsername(ctx context.Context, userID uint64, username string) error
	UpdateProfilePicture(ctx context.Context, userID uint64, key string) error

	// 用户名不区分大小写的子串匹配，按粉丝数倒序
	Search(ctx context.Context, query string, offset, limit int) ([]model.User, int64, error)
	// 推荐关注：排除自己和已关注的人，按id顺序
	Discover(ctx context.Context, userID uint64, limit int) ([]model.User, error)
	// 批量统计粉丝数、关注数、作品数、获赞数
	Stats(ctx context.Context, userIDs []uint64) (map[uint64]model.UserStats, error)

	WithTx(tx *gorm.DB) UserRepository
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, userID uint64) (*model.User, error) {
	var result model.User
	if err := r.db.WithContext(ctx).First(&result, userID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var result model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&result).Error; err != nil {
		return nil, err // 没找到时是 gorm.ErrRecordNotFound
	}
	return &result, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var result model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userRepository) UpdateUsername(ctx context.Context, userID uint64, username string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("username", username).Error
}

func (r *userRepository) UpdateProfilePicture(ctx context.Context, userID uint64, key string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("profile_picture", key).Error
}

func (r *userRepository) Search(ctx context.Context, query string, offset, limit int) ([]model.User, int64, error) {
	db := r.db.WithContext(ctx)
	pattern := "%" + strings.ToLower(query) + "%"

	var total int64
	if err := db.Model(&model.User{}).Where("LOWER(username) LIKE ?", pattern).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := db.Where("LOWER(username) LIKE ?", pattern).
		Order("(SELECT COUNT(*) FROM followers WHERE followers.following_id = users.id) DESC").
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, total, err
}

func (r *userRepository) Discover(ctx context.Context, userID uint64, limit int) ([]model.User, error) {
	db := r.db.WithContext(ctx)
	followed := db.Model(&model.Follower{}).Select("following_id").Where("follower_id = ?", userID)

	var users []model.User
	err := db.Where("id <> ?", userID).
		Where("id NOT IN (?)", followed).
		Order("id asc").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// 分组统计的一行
type countRow struct {
	ID     uint64
	N      int64
	Hearts int64
}

func (r *userRepository) Stats(ctx context.Context, userIDs []uint64) (map[uint64]model.UserStats, error) {
	stats := make(map[uint64]model.UserStats, len(userIDs))
	if len(userIDs) == 0 {
		return stats, nil
	}
	db := r.db.WithContext(ctx)

	var followers, following, videos []countRow
	if err := db.Model(&model.Follower{}).
		Select("following_id AS id, COUNT(*) AS n").
		Where("following_id IN ?", userIDs).
		Group("following_id").
		Scan(&followers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Follower{}).
		Select("follower_id AS id, COUNT(*) AS n").
		Where("follower_id IN ?", userIDs).
		Group("follower_id").
		Scan(&following).Error; err != nil {
		return nil, err
	}
	// 获赞数直接汇总视频上的冗余计数，不再去扫likes表
	if err := db.Model(&model.Video{}).
		Select("author_id AS id, COUNT(*) AS n, COALESCE(SUM(like_count), 0) AS hearts").
		Where("author_id IN ?", userIDs).
		Group("author_id").
		Scan(&videos).Error; err != nil {
		return nil, err
	}

	for _, id := range userIDs {
		stats[id] = model.UserStats{}
	}
	for _, row := range followers {
		s := stats[row.ID]
		s.FollowerCount = row.N
		stats[row.ID] = s
	}
	for _, row := range following {
		s := stats[row.ID]
		s.FollowingCount = row.N
		stats[row.ID] = s
	}
	for _, row := range videos {
		s := stats[row.ID]
		s.VideoCount = row.N
		s.HeartCount = row.Hearts
		stats[row.ID] = s
	}
	return stats, nil
}
