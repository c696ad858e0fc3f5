package repository

import (
	"Orion_Shorts/internal/model"
	"context"

	"gorm.io/gorm"
)

// FollowerWithStatus 是粉丝列表的一行：粉丝本人，以及当前用户是否也关注了他
type FollowerWithStatus struct {
	model.User
	IsFollowing bool
}

type FollowRepository interface {
	CreateIfAbsent(ctx context.Context, followerID, followingID uint64) (bool, error)
	Delete(ctx context.Context, followerID, followingID uint64) (bool, error)
	Exists(ctx context.Context, followerID, followingID uint64) (bool, error)

	// 关注了targetID的所有用户，并标注viewerID是否关注了列表里的每个人
	ListFollowers(ctx context.Context, targetID, viewerID uint64) ([]FollowerWithStatus, error)
	// userID关注的所有用户
	ListFollowing(ctx context.Context, userID uint64) ([]model.User, error)
	// 互相关注：userID关注的人 ∩ 关注userID的人
	ListFriends(ctx context.Context, userID uint64) ([]model.User, error)

	WithTx(tx *gorm.DB) FollowRepository
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) WithTx(tx *gorm.DB) FollowRepository {
	return &followRepository{db: tx}
}

func (r *followRepository) CreateIfAbsent(ctx context.Context, followerID, followingID uint64) (bool, error) {
	edge := &model.Follower{FollowerID: followerID, FollowingID: followingID}
	return createIfAbsent(r.db.WithContext(ctx), edge, "follower_id", "following_id")
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint64) (bool, error) {
	result := r.db.WithContext(ctx).Exec("DELETE FROM followers WHERE follower_id = ? AND following_id = ?", followerID, followingID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follower{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) ListFollowers(ctx context.Context, targetID, viewerID uint64) ([]FollowerWithStatus, error) {
	var rows []FollowerWithStatus
	// 每一行用相关子查询判断 viewer -> 该粉丝 这条边是否存在
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("users.*, EXISTS (SELECT 1 FROM followers v WHERE v.follower_id = ? AND v.following_id = users.id) AS is_following", viewerID).
		Joins("JOIN followers f ON f.follower_id = users.id AND f.following_id = ?", targetID).
		Order("f.created_at desc").Order("users.id asc").
		Scan(&rows).Error
	return rows, err
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint64) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN followers f ON f.following_id = users.id AND f.follower_id = ?", userID).
		Order("f.created_at desc").Order("users.id asc").
		Find(&users).Error
	return users, err
}

func (r *followRepository) ListFriends(ctx context.Context, userID uint64) ([]model.User, error) {
	db := r.db.WithContext(ctx)
	follows := db.Model(&model.Follower{}).Select("following_id").Where("follower_id = ?", userID)
	followers := db.Model(&model.Follower{}).Select("follower_id").Where("following_id = ?", userID)

	var users []model.User
	err := db.Where("id IN (?)", follows).
		Where("id IN (?)", followers).
		Order("id asc").
		Find(&users).Error
	return users, err
}
