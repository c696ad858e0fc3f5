package service

import (
	"Orion_Shorts/internal/data"
	"Orion_Shorts/internal/model"
	"Orion_Shorts/internal/testutil"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingViews struct {
	videoIDs []uint64
}

func (r *recordingViews) RecordView(_ context.Context, videoID uint64) error {
	r.videoIDs = append(r.videoIDs, videoID)
	return nil
}

func (e *testEnv) videoService(storage MediaStorage, views ViewRecorder) VideoService {
	return NewVideoService(e.uow, e.repos.VideoRepo, e.repos.UserRepo, storage, views)
}

func TestTrendingTiesBreakNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	views := testutil.CreateVideo(t, env.db, author.ID, "views", base)
	likes := testutil.CreateVideo(t, env.db, author.ID, "likes", base.Add(time.Hour))
	comments := testutil.CreateVideo(t, env.db, author.ID, "comments", base.Add(2*time.Hour))
	quiet := testutil.CreateVideo(t, env.db, author.ID, "quiet", base.Add(3*time.Hour))

	require.NoError(t, env.db.Model(&model.Video{}).Where("id = ?", views.ID).Update("view_count", 10).Error)
	require.NoError(t, env.db.Model(&model.Video{}).Where("id = ?", likes.ID).
		Updates(map[string]interface{}{"like_count": 6, "comment_count": 4}).Error)
	require.NoError(t, env.db.Model(&model.Video{}).Where("id = ?", comments.ID).Update("comment_count", 10).Error)

	page, err := env.videoService(testutil.NewMemoryStorage(), &recordingViews{}).Trending(ctx, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, DefaultPageSize, page.PageSize)

	var order []uint64
	for _, v := range page.Items {
		order = append(order, v.ID)
	}
	// 三个视频都是10分，新的在前；0分的排最后
	assert.Equal(t, []uint64{comments.ID, likes.ID, views.ID, quiet.ID}, order)
	assert.Equal(t, "author", page.Items[0].Author.Username)

	second, err := env.videoService(testutil.NewMemoryStorage(), &recordingViews{}).Trending(ctx, PageRequest{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, quiet.ID, second.Items[0].ID)
	assert.False(t, second.HasNext())
}

func TestDeleteVideoCascadesOnlyThatVideo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	fan := testutil.CreateUser(t, env.db, "fan")
	doomed := testutil.CreateVideo(t, env.db, author.ID, "doomed", time.Time{})
	kept := testutil.CreateVideo(t, env.db, author.ID, "kept", time.Time{})

	likes := env.likeService()
	comments := env.commentService()
	favorites := NewFavoriteService(env.uow, env.repos.FavoriteRepo)
	for _, v := range []*model.Video{doomed, kept} {
		_, err := likes.ToggleLike(ctx, fan.ID, v.ID)
		require.NoError(t, err)
		_, err = comments.PostComment(ctx, fan.ID, v.ID, "nice")
		require.NoError(t, err)
		_, err = favorites.ToggleFavorite(ctx, fan.ID, v.ID)
		require.NoError(t, err)
	}

	storage := testutil.NewMemoryStorage()
	storage.Objects[doomed.VideoKey] = []byte("bytes")
	svc := env.videoService(storage, &recordingViews{})

	err := svc.DeleteVideo(ctx, fan.ID, doomed.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, int64(2), testutil.Count(t, env.db, &model.Video{}, ""))

	require.NoError(t, svc.DeleteVideo(ctx, author.ID, doomed.ID))

	for _, m := range []interface{}{&model.Like{}, &model.Comment{}, &model.Favorite{}, &model.Notification{}} {
		assert.Equal(t, int64(0), testutil.Count(t, env.db, m, "video_id = ?", doomed.ID))
	}
	assert.Equal(t, int64(2), testutil.Count(t, env.db, &model.Notification{}, "video_id = ?", kept.ID))
	assert.False(t, storage.Has(doomed.VideoKey))

	reloaded := testutil.ReloadVideo(t, env.db, kept.ID)
	assert.Equal(t, uint64(1), reloaded.LikeCount)
	assert.Equal(t, uint64(1), reloaded.CommentCount)

	_, err = svc.GetVideoByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteVideo(ctx, author.ID, doomed.ID), ErrNotFound)
}

func TestCreateVideoUploadsMedia(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	storage := testutil.NewMemoryStorage()
	svc := env.videoService(storage, &recordingViews{})

	video, err := svc.CreateVideo(ctx, author.ID, NewVideo{
		Title:       "  first clip ",
		Description: "desc",
		Video:       Upload{Filename: "clip.MP4", Size: 4, ContentType: "video/mp4", Reader: strings.NewReader("clip")},
		Thumbnail:   &Upload{Filename: "cover.png", Size: 5, ContentType: "image/png", Reader: strings.NewReader("cover")},
	})
	require.NoError(t, err)
	assert.Equal(t, "first clip", video.Title)
	assert.Equal(t, "author", video.Author.Username)
	assert.True(t, strings.HasPrefix(video.VideoKey, "videos/"))
	assert.True(t, strings.HasSuffix(video.VideoKey, ".mp4"))
	assert.True(t, strings.HasPrefix(video.ThumbnailKey, "thumbnails/"))
	assert.Equal(t, 2, storage.Len())
}

func TestCreateVideoValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	storage := testutil.NewMemoryStorage()
	svc := env.videoService(storage, &recordingViews{})

	_, err := svc.CreateVideo(ctx, author.ID, NewVideo{
		Title: "clip",
		Video: Upload{Filename: "notes.txt", Size: 4, ContentType: "text/plain", Reader: strings.NewReader("text")},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "video_file")

	_, err = svc.CreateVideo(ctx, author.ID, NewVideo{
		Video: Upload{Filename: "clip.mp4", Size: 4, ContentType: "video/mp4", Reader: strings.NewReader("clip")},
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")

	assert.Zero(t, storage.Len())
	assert.Equal(t, int64(0), testutil.Count(t, env.db, &model.Video{}, ""))
}

func TestCreateVideoRemovesUploadWhenThumbnailFails(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "author")
	storage := testutil.NewMemoryStorage()
	storage.FailPrefix = "thumbnails"
	svc := env.videoService(storage, &recordingViews{})

	_, err := svc.CreateVideo(context.Background(), author.ID, NewVideo{
		Title:     "clip",
		Video:     Upload{Filename: "clip.mp4", Size: 4, ContentType: "video/mp4", Reader: strings.NewReader("clip")},
		Thumbnail: &Upload{Filename: "cover.png", Size: 5, ContentType: "image/png", Reader: strings.NewReader("cover")},
	})
	assert.ErrorIs(t, err, testutil.ErrUploadFailed)
	assert.Zero(t, storage.Len())
	assert.Equal(t, int64(0), testutil.Count(t, env.db, &model.Video{}, ""))
}

func TestFeedsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := testutil.CreateUser(t, env.db, "me")
	star := testutil.CreateUser(t, env.db, "star")
	stranger := testutil.CreateUser(t, env.db, "stranger")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := testutil.CreateVideo(t, env.db, star.ID, "old", base)
	recent := testutil.CreateVideo(t, env.db, star.ID, "recent", base.Add(time.Hour))
	testutil.CreateVideo(t, env.db, stranger.ID, "other", base.Add(2*time.Hour))
	testutil.Follow(t, env.db, me.ID, star.ID)
	svc := env.videoService(testutil.NewMemoryStorage(), &recordingViews{})

	feed, err := svc.FollowingFeed(ctx, me.ID, PageRequest{})
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, recent.ID, feed.Items[0].ID)
	assert.Equal(t, old.ID, feed.Items[1].ID)

	own, err := svc.UserVideos(ctx, star.ID, PageRequest{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.Total)
	require.Len(t, own.Items, 1)
	assert.Equal(t, recent.ID, own.Items[0].ID)
	assert.True(t, own.HasNext())

	_, err = svc.UserVideos(ctx, 999, PageRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.GetFeed(ctx, PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	require.Len(t, all.Items, 2)
	assert.Equal(t, "other", all.Items[0].Title)
	assert.Equal(t, recent.ID, all.Items[1].ID)
	assert.Equal(t, "stranger", all.Items[0].Author.Username)
	assert.True(t, all.HasNext())
}

func TestVideoCacheInvalidatedByLike(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := testutil.NewDB(t)
	repos := data.NewRepositories(db, rdb)
	uow := data.NewUnitOfWork(db, repos)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	fan := testutil.CreateUser(t, db, "fan")
	video := testutil.CreateVideo(t, db, author.ID, "clip", time.Time{})

	views := &recordingViews{}
	videos := NewVideoService(uow, repos.VideoRepo, repos.UserRepo, testutil.NewMemoryStorage(), views)
	got, err := videos.ViewVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.LikeCount)
	assert.Equal(t, []uint64{video.ID}, views.videoIDs)

	cacheKey := "video:info:" + strconv.FormatUint(video.ID, 10)
	assert.True(t, mr.Exists(cacheKey))

	// 缓存命中时不会看到绕过服务直接写库的修改
	require.NoError(t, db.Model(&model.Video{}).Where("id = ?", video.ID).Update("title", "changed").Error)
	cached, err := videos.GetVideoByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, "clip", cached.Title)

	_, err = NewLikeService(uow, repos.VideoRepo, repos.LikeRepo).ToggleLike(ctx, fan.ID, video.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cacheKey))

	fresh, err := videos.GetVideoByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), fresh.LikeCount)
	assert.Equal(t, "changed", fresh.Title)
}

func TestViewProcessor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	video := testutil.CreateVideo(t, env.db, author.ID, "clip", time.Time{})
	processor := NewViewProcessor(env.repos.VideoRepo)

	require.NoError(t, processor.Process(ctx, []byte(`{"video_id":`+strconv.FormatUint(video.ID, 10)+`}`)))
	require.NoError(t, processor.Process(ctx, []byte(`{"video_id":`+strconv.FormatUint(video.ID, 10)+`}`)))
	assert.Equal(t, uint64(2), testutil.ReloadVideo(t, env.db, video.ID).ViewCount)

	assert.ErrorIs(t, processor.Process(ctx, []byte("not json")), ErrMalformedMessage)
	assert.ErrorIs(t, processor.Process(ctx, []byte(`{}`)), ErrMalformedMessage)
	// 视频已经删除的播放直接忽略
	assert.NoError(t, processor.Process(ctx, []byte(`{"video_id":999}`)))
}

type capturePublisher struct {
	queue string
	body  []byte
}

func (p *capturePublisher) Publish(_ context.Context, queue string, body []byte) error {
	p.queue = queue
	p.body = body
	return nil
}

func TestQueuedViewRecorderPublishesMessage(t *testing.T) {
	publisher := &capturePublisher{}
	require.NoError(t, NewQueuedViewRecorder(publisher).RecordView(context.Background(), 7))
	assert.Equal(t, QueueVideoView, publisher.queue)
	assert.JSONEq(t, `{"video_id":7}`, string(publisher.body))
}

// 大量并发请求同一个刚失效的视频，singleflight保证只有一个请求回源
func BenchmarkGetVideoByID_CacheBreakdown(b *testing.B) {
	mr := miniredis.RunT(b)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b.Cleanup(func() { _ = rdb.Close() })

	db := testutil.NewDB(b)
	repos := data.NewRepositories(db, rdb)
	uow := data.NewUnitOfWork(db, repos)
	author := testutil.CreateUser(b, db, "author")
	target := testutil.CreateVideo(b, db, author.ID, "hot", time.Time{})
	videos := NewVideoService(uow, repos.VideoRepo, repos.UserRepo, testutil.NewMemoryStorage(), &recordingViews{})

	ctx := context.Background()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := videos.GetVideoByID(ctx, target.ID); err != nil {
				b.Errorf("GetVideoByID failed: %v", err)
			}
		}
	})
}
