package main

import (
	"Orion_Shorts/internal/repository"
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/config"
	"Orion_Shorts/pkg/logger"
	"Orion_Shorts/pkg/rabbitmq"
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// 消费者进程：连接mysql和rabbitMQ，把播放事件持久化成view_count
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}

	// 连接数据库
	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到数据库: %v", err)
	}
	// 连接RabbitMQ
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()
	if err := rabbitmq.DeclareQueue(rabbitMQConn, service.QueueVideoView); err != nil {
		logger.Log.Fatalf("无法声明播放队列: %v", err)
	}

	// 播放数不走缓存，rdb传nil
	processor := service.NewViewProcessor(repository.NewVideoRepository(db, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumeViews(ctx, rabbitMQConn, processor); err != nil {
		logger.Log.Fatalf("播放消费者退出: %v", err)
	}
	logger.Log.Info("播放消费者已停止")
}

// 播放消息队列消费者：1、通过mq的TCP连接创建channel 2、通过ch注册消费者 3、循环读取消息直到ctx取消 4、处理消息，并对mq中的消息进行安全管理
func consumeViews(ctx context.Context, conn *amqp.Connection, processor *service.ViewProcessor) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	msgs, err := ch.Consume(
		service.QueueVideoView, // queue
		"",                     // consumer
		false,                  // auto-ack: 处理完再手动确认
		false,                  // exclusive
		false,                  // no-local
		false,                  // no-wait
		nil,                    // args
	)
	if err != nil {
		return err
	}
	logger.Log.Info(" [*] 等待播放消息中. 按 CTRL+C 退出")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("RabbitMQ通道已关闭")
			}
			handleDelivery(ctx, processor, d)
		}
	}
}

// 根据处理结果决定如何“确认”消息：坏消息直接丢弃，数据库错误重新入队
func handleDelivery(ctx context.Context, processor *service.ViewProcessor, d amqp.Delivery) {
	logCtx := logger.Log.WithField("body", string(d.Body)).WithField("redelivered", d.Redelivered)

	err := processor.Process(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, service.ErrMalformedMessage):
		logCtx.WithError(err).Error("消息JSON解析失败")
		_ = d.Nack(false, false)
	default:
		logCtx.WithError(err).Error("处理消息失败，将进行重试")
		_ = d.Nack(false, true)
	}
}
