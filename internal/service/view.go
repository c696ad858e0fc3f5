package service

import (
	"Orion_Shorts/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// 遵循：项目名.业务领域.实体/功能
const QueueVideoView = "orion.video_view.queue"

// ErrMalformedMessage 表示消息体无法解析，重试也不会成功
var ErrMalformedMessage = errors.New("消息格式错误")

// VideoViewMessage 是MQ中传递的一次播放
type VideoViewMessage struct {
	VideoID uint64 `json:"video_id"`
}

// ViewRecorder 记录一次视频播放
type ViewRecorder interface {
	RecordView(ctx context.Context, videoID uint64) error
}

// MessagePublisher 把消息发到指定队列，由pkg/rabbitmq实现
type MessagePublisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

type queuedViewRecorder struct {
	publisher MessagePublisher
}

// NewQueuedViewRecorder 把播放事件发到MQ，由consumer异步写库
func NewQueuedViewRecorder(publisher MessagePublisher) ViewRecorder {
	return &queuedViewRecorder{publisher: publisher}
}

func (r *queuedViewRecorder) RecordView(ctx context.Context, videoID uint64) error {
	body, err := json.Marshal(VideoViewMessage{VideoID: videoID})
	if err != nil {
		return err
	}
	return r.publisher.Publish(ctx, QueueVideoView, body)
}

type directViewRecorder struct {
	videoRepo repository.VideoRepository
}

// NewDirectViewRecorder 直接在数据库里+1，没有MQ时使用
func NewDirectViewRecorder(videoRepo repository.VideoRepository) ViewRecorder {
	return &directViewRecorder{videoRepo: videoRepo}
}

func (r *directViewRecorder) RecordView(ctx context.Context, videoID uint64) error {
	_, err := r.videoRepo.IncrementViewCount(ctx, videoID)
	return err
}

// ViewProcessor 是consumer端：解析消息，view_count原子+1
// 播放不删缓存，缓存里的播放数靠过期时间刷新
type ViewProcessor struct {
	videoRepo repository.VideoRepository
}

func NewViewProcessor(videoRepo repository.VideoRepository) *ViewProcessor {
	return &ViewProcessor{videoRepo: videoRepo}
}

// Process 返回ErrMalformedMessage时消息应该直接丢弃；视频已被删除的播放会被忽略
func (p *ViewProcessor) Process(ctx context.Context, body []byte) error {
	var msg VideoViewMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.VideoID == 0 {
		return fmt.Errorf("%w: %s", ErrMalformedMessage, string(body))
	}
	_, err := p.videoRepo.IncrementViewCount(ctx, msg.VideoID)
	return err
}
