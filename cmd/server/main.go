package main

import (
	"Orion_Shorts/internal/data"
	"Orion_Shorts/internal/handler"
	"Orion_Shorts/internal/model"
	"Orion_Shorts/internal/router"
	"Orion_Shorts/internal/service"
	"Orion_Shorts/pkg/config"
	"Orion_Shorts/pkg/logger"
	"Orion_Shorts/pkg/rabbitmq"
	"Orion_Shorts/pkg/redis"
	"Orion_Shorts/pkg/storage"
	"Orion_Shorts/pkg/token"
	"context"
	"log"
	"time"

	"github.com/streadway/amqp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 加载.env文件和环境变量
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	// 初始化logger
	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}

	// 初始化Redis，连不上时不使用视频缓存
	redisClient, err := redis.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Log.WithError(err).Warn("无法连接到Redis，视频缓存已关闭")
	} else {
		defer redisClient.Close()
		logger.Log.Info("Redis连接成功")
	}

	// 数据源名称，用户名:密码@网络协议(地址:端口号)/数据库名?charset=字符集&parseTime=是否解析时间&loc=时区
	// TranslateError让唯一索引冲突变成gorm.ErrDuplicatedKey
	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Log.Fatalf("无法连接到数据库: %v", err)
	}
	logger.Log.Info("数据库连接成功")
	// db.AutoMigrate(),没有这个表就创建,没有属性列则创建列,没有约束则增加约束;不会主动删除和修改
	if err := db.AutoMigrate(model.All()...); err != nil {
		logger.Log.Fatalf("数据库迁移失败: %v", err)
	}
	logger.Log.Info("数据库迁移成功")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mediaStorage, err := storage.NewMinioStorage(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
		cfg.Minio.Bucket, cfg.Minio.UseSSL, cfg.Minio.BaseURL)
	cancel()
	if err != nil {
		logger.Log.Fatalf("无法连接到对象存储: %v", err)
	}
	logger.Log.WithField("bucket", cfg.Minio.Bucket).Info("对象存储连接成功")

	repos := data.NewRepositories(db, redisClient)
	uow := data.NewUnitOfWork(db, repos)

	// 初始化RabbitMQ，连不上时播放数直接写库
	var views service.ViewRecorder
	rabbitMQConn, err := connectBroker(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.WithError(err).Warn("无法连接到RabbitMQ，播放数将同步写入数据库")
		views = service.NewDirectViewRecorder(repos.VideoRepo)
	} else {
		defer rabbitMQConn.Close() // 确保程序退出时关闭连接
		logger.Log.Info("RabbitMQ连接成功")
		views = service.NewQueuedViewRecorder(rabbitmq.NewPublisher(rabbitMQConn))
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userService := service.NewUserService(repos.UserRepo, tokens, mediaStorage)
	videoService := service.NewVideoService(uow, repos.VideoRepo, repos.UserRepo, mediaStorage, views)
	likeService := service.NewLikeService(uow, repos.VideoRepo, repos.LikeRepo)
	favoriteService := service.NewFavoriteService(uow, repos.FavoriteRepo)
	followService := service.NewFollowService(uow, repos.UserRepo, repos.FollowRepo)
	commentService := service.NewCommentService(uow, repos.VideoRepo, repos.CommentRepo)
	notificationService := service.NewNotificationService(repos.NotificationRepo)

	r := router.SetupRouter(router.Handlers{
		User:         handler.NewUserHandler(userService, mediaStorage),
		Video:        handler.NewVideoHandler(videoService, mediaStorage),
		Like:         handler.NewLikeHandler(likeService),
		Favorite:     handler.NewFavoriteHandler(favoriteService, mediaStorage),
		Follow:       handler.NewFollowHandler(followService, mediaStorage),
		Comment:      handler.NewCommentHandler(commentService, mediaStorage),
		Notification: handler.NewNotificationHandler(notificationService, mediaStorage),
	}, tokens)

	logger.Log.WithField("addr", cfg.HTTPAddr).Info("服务器启动")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Log.Fatalf("服务器启动失败: %v", err)
	}
}

// connectBroker 连接RabbitMQ并声明播放队列
func connectBroker(url string) (*amqp.Connection, error) {
	conn, err := rabbitmq.InitRabbitMQ(url)
	if err != nil {
		return nil, err
	}
	if err := rabbitmq.DeclareQueue(conn, service.QueueVideoView); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
