package service

import (
	"Orion_Shorts/internal/data"
	"Orion_Shorts/internal/model"
	"Orion_Shorts/internal/testutil"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	repos *data.Repositories
	uow   data.UnitOfWork
}

func newTestEnv(t *testing.T) *testEnv {
	db := testutil.NewDB(t)
	repos := data.NewRepositories(db, nil)
	return &testEnv{db: db, repos: repos, uow: data.NewUnitOfWork(db, repos)}
}

func (e *testEnv) likeService() LikeService {
	return NewLikeService(e.uow, e.repos.VideoRepo, e.repos.LikeRepo)
}

func (e *testEnv) commentService() CommentService {
	return NewCommentService(e.uow, e.repos.VideoRepo, e.repos.CommentRepo)
}

func (e *testEnv) followService() FollowService {
	return NewFollowService(e.uow, e.repos.UserRepo, e.repos.FollowRepo)
}

func TestToggleLikeTwiceRestoresCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	fan := testutil.CreateUser(t, env.db, "fan")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})
	svc := env.likeService()

	result, err := svc.ToggleLike(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleCreated, result)
	assert.Equal(t, uint64(1), testutil.ReloadVideo(t, env.db, video.ID).LikeCount)
	assert.Equal(t, int64(1), testutil.Count(t, env.db, &model.Like{}, "video_id = ?", video.ID))

	liked, err := svc.LikeStatus(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	result, err = svc.ToggleLike(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, result)
	assert.Equal(t, uint64(0), testutil.ReloadVideo(t, env.db, video.ID).LikeCount)
	assert.Equal(t, int64(0), testutil.Count(t, env.db, &model.Like{}, "video_id = ?", video.ID))

	// 取消点赞不产生通知
	assert.Equal(t, int64(1), testutil.Count(t, env.db, &model.Notification{}, "user_id = ? AND type = ?", author.ID, model.NotificationLike))
}

func TestLikeCountMatchesRowsAfterManyToggles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})
	svc := env.likeService()

	users := []*model.User{
		testutil.CreateUser(t, env.db, "u1"),
		testutil.CreateUser(t, env.db, "u2"),
		testutil.CreateUser(t, env.db, "u3"),
	}
	// u1 点一次，u2 点两次，u3 点三次
	for i, u := range users {
		for n := 0; n <= i; n++ {
			_, err := svc.ToggleLike(ctx, u.ID, video.ID)
			require.NoError(t, err)
		}
	}

	rows, err := env.repos.LikeRepo.CountByVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.Equal(t, uint64(rows), testutil.ReloadVideo(t, env.db, video.ID).LikeCount)
}

// 通知写入失败时，点赞记录和计数器一起回滚
func TestToggleLikeRollsBackWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	fan := testutil.CreateUser(t, env.db, "fan")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})
	require.NoError(t, env.db.Migrator().DropTable(&model.Notification{}))

	_, err := env.likeService().ToggleLike(ctx, fan.ID, video.ID)
	require.Error(t, err)

	rows, err := env.repos.LikeRepo.CountByVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Zero(t, testutil.ReloadVideo(t, env.db, video.ID).LikeCount)
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})

	result, err := env.likeService().ToggleLike(ctx, author.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleCreated, result)
	assert.Equal(t, uint64(1), testutil.ReloadVideo(t, env.db, video.ID).LikeCount)
	assert.Equal(t, int64(0), testutil.Count(t, env.db, &model.Notification{}, ""))
}

func TestToggleLikeUnknownVideo(t *testing.T) {
	env := newTestEnv(t)
	fan := testutil.CreateUser(t, env.db, "fan")

	_, err := env.likeService().ToggleLike(context.Background(), fan.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), testutil.Count(t, env.db, &model.Like{}, ""))
}

func TestToggleFavoriteLeavesCountersAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	fan := testutil.CreateUser(t, env.db, "fan")
	older := testutil.CreateVideo(t, env.db, author.ID, "older", time.Time{})
	newer := testutil.CreateVideo(t, env.db, author.ID, "newer", time.Time{})
	svc := NewFavoriteService(env.uow, env.repos.FavoriteRepo)

	for _, v := range []*model.Video{older, newer} {
		result, err := svc.ToggleFavorite(ctx, fan.ID, v.ID)
		require.NoError(t, err)
		assert.Equal(t, ToggleCreated, result)
	}

	favorites, err := svc.ListFavorites(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, newer.ID, favorites[0].VideoID)
	assert.Equal(t, "author", favorites[0].Video.Author.Username)

	result, err := svc.ToggleFavorite(ctx, fan.ID, older.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, result)

	reloaded := testutil.ReloadVideo(t, env.db, older.ID)
	assert.Zero(t, reloaded.LikeCount)
	assert.Zero(t, reloaded.CommentCount)
	assert.Equal(t, int64(0), testutil.Count(t, env.db, &model.Notification{}, ""))
	assert.Equal(t, int64(1), testutil.Count(t, env.db, &model.Favorite{}, ""))
}

func TestTwoCommentsIncrementCountAndNotify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	fan := testutil.CreateUser(t, env.db, "fan")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})
	svc := env.commentService()

	first, err := svc.PostComment(ctx, fan.ID, video.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, "fan", first.User.Username)
	_, err = svc.PostComment(ctx, fan.ID, video.ID, "second")
	require.NoError(t, err)

	rows, err := env.repos.CommentRepo.CountByVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.Equal(t, uint64(rows), testutil.ReloadVideo(t, env.db, video.ID).CommentCount)
	assert.Equal(t, int64(2), testutil.Count(t, env.db, &model.Notification{}, "user_id = ? AND type = ?", author.ID, model.NotificationComment))

	comments, err := svc.ListComments(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
}

func TestPostCommentRollsBackWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	fan := testutil.CreateUser(t, env.db, "fan")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})
	require.NoError(t, env.db.Migrator().DropTable(&model.Notification{}))

	_, err := env.commentService().PostComment(ctx, fan.ID, video.ID, "hello")
	require.Error(t, err)

	rows, err := env.repos.CommentRepo.CountByVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Zero(t, testutil.ReloadVideo(t, env.db, video.ID).CommentCount)
}

func TestPostCommentRejectsEmptyText(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "author")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})

	_, err := env.commentService().PostComment(context.Background(), author.ID, video.ID, "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "text")
	assert.Zero(t, testutil.ReloadVideo(t, env.db, video.ID).CommentCount)
}

func TestDeleteCommentOnlyByAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	fan := testutil.CreateUser(t, env.db, "fan")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})
	svc := env.commentService()

	comment, err := svc.PostComment(ctx, fan.ID, video.ID, "hello")
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, author.ID, comment.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, uint64(1), testutil.ReloadVideo(t, env.db, video.ID).CommentCount)

	require.NoError(t, svc.DeleteComment(ctx, fan.ID, comment.ID))
	assert.Equal(t, uint64(0), testutil.ReloadVideo(t, env.db, video.ID).CommentCount)
	assert.Equal(t, int64(0), testutil.Count(t, env.db, &model.Comment{}, ""))

	assert.ErrorIs(t, svc.DeleteComment(ctx, fan.ID, comment.ID), ErrNotFound)
}

func TestFollowStatusSequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "a")
	b := testutil.CreateUser(t, env.db, "b")
	svc := env.followService()

	following, err := svc.FollowStatus(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)

	result, err := svc.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleCreated, result)
	following, err = svc.FollowStatus(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)
	assert.Equal(t, int64(1), testutil.Count(t, env.db, &model.Notification{}, "user_id = ? AND type = ?", b.ID, model.NotificationFollow))

	result, err = svc.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, result)
	following, err = svc.FollowStatus(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestToggleFollowRejectsSelfAndUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "a")
	svc := env.followService()

	_, err := svc.ToggleFollow(ctx, a.ID, a.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "user_id")

	_, err = svc.ToggleFollow(ctx, a.ID, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), testutil.Count(t, env.db, &model.Follower{}, ""))
}

func TestFriendsRequireBothDirections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "a")
	b := testutil.CreateUser(t, env.db, "b")
	c := testutil.CreateUser(t, env.db, "c")
	testutil.Follow(t, env.db, a.ID, b.ID)
	testutil.Follow(t, env.db, b.ID, a.ID)
	testutil.Follow(t, env.db, a.ID, c.ID)
	svc := env.followService()

	friends, err := svc.Friends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, b.ID, friends[0].ID)

	friends, err = svc.Friends(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, a.ID, friends[0].ID)

	friends, err = svc.Friends(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestFollowersCarryViewerFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	target := testutil.CreateUser(t, env.db, "target")
	viewer := testutil.CreateUser(t, env.db, "viewer")
	x := testutil.CreateUser(t, env.db, "x")
	y := testutil.CreateUser(t, env.db, "y")
	testutil.Follow(t, env.db, x.ID, target.ID)
	testutil.Follow(t, env.db, y.ID, target.ID)
	testutil.Follow(t, env.db, viewer.ID, x.ID)
	svc := env.followService()

	followers, err := svc.Followers(ctx, target.ID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)

	flags := map[uint64]bool{}
	for _, f := range followers {
		flags[f.ID] = f.IsFollowing
	}
	assert.True(t, flags[x.ID])
	assert.False(t, flags[y.ID])

	for _, f := range followers {
		if f.ID == x.ID {
			assert.Equal(t, int64(1), f.Stats.FollowerCount)
			assert.Equal(t, int64(1), f.Stats.FollowingCount)
		}
	}

	following, err := svc.Following(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, x.ID, following[0].ID)
}

func TestDiscoverExcludesSelfAndFollowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := testutil.CreateUser(t, env.db, "me")
	followed := testutil.CreateUser(t, env.db, "followed")
	b := testutil.CreateUser(t, env.db, "b")
	c := testutil.CreateUser(t, env.db, "c")
	testutil.Follow(t, env.db, me.ID, followed.ID)

	users, err := env.followService().Discover(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, b.ID, users[0].ID)
	assert.Equal(t, c.ID, users[1].ID)
}

func TestMarkAllSeenIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	fan := testutil.CreateUser(t, env.db, "fan")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})
	_, err := env.likeService().ToggleLike(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	_, err = env.followService().ToggleFollow(ctx, fan.ID, author.ID)
	require.NoError(t, err)

	svc := NewNotificationService(env.repos.NotificationRepo)
	notifications, err := svc.ListNotifications(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, model.NotificationFollow, notifications[0].Type)
	require.NotNil(t, notifications[0].TriggeringUser)
	assert.Equal(t, "fan", notifications[0].TriggeringUser.Username)

	marked, err := svc.MarkAllSeen(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	marked, err = svc.MarkAllSeen(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)

	unseen, err := svc.CountUnseen(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, unseen)
}
