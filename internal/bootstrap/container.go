package bootstrap

import (
	"context"
	"log"
	"time"

	"emojify-be/internal/config"
	"emojify-be/internal/controller"
	"emojify-be/internal/handler"
	"emojify-be/internal/pkg/logger"
	"emojify-be/internal/pkg/mailer"
	"emojify-be/internal/repository/unitofwork"
	"emojify-be/internal/service"
	"emojify-be/internal/websocket"
	"emojify-be/pkg/generation/replicate"
	pktNats "emojify-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	OAuthController      controller.IOAuthController
	UserController       controller.IUserController
	GenerationController controller.IGenerationController
	BillingController    controller.IBillingController
	EmojiController      controller.IEmojiController
	ActivityController   controller.IActivityController

	// Background Services (Exposed for main.go to run)
	ActivityService service.IActivityService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	activityPublisher := service.NewActivityPublisher(pubSub, sysLogger)
	activityService := service.NewActivityService(uowFactory, pubSub, sysLogger)

	provider := replicate.NewClient(cfg.Generation.APIToken, cfg.Generation.ModelVersion)
	providerReady := cfg.Generation.APIToken != "" && cfg.Generation.ModelVersion != ""
	if !providerReady {
		log.Printf("[WARN] Generation provider credentials missing; /generate will refuse requests")
	}

	generationService := service.NewGenerationService(
		uowFactory,
		provider,
		providerReady,
		time.Duration(cfg.Generation.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Generation.PollIntervalMs)*time.Millisecond,
		natsPub,
		activityPublisher,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, emailService)
	oauthService := service.NewOAuthService(
		uowFactory,
		cfg.OAuth.GoogleClientID,
		cfg.OAuth.GoogleClientSecret,
		cfg.OAuth.GoogleRedirectURL,
	)
	userService := service.NewUserService(uowFactory)
	emojiService := service.NewEmojiService(uowFactory, activityPublisher)

	billingService := service.NewBillingService(
		uowFactory,
		cfg.Stripe,
		cfg.App.ClientURL,
		emailService,
		natsPub,
		activityPublisher,
		sysLogger,
	)

	// 3.5 Notification System
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		AuthController:       controller.NewAuthController(authService),
		OAuthController:      controller.NewOAuthController(oauthService, cfg.App.ClientURL),
		UserController:       controller.NewUserController(userService),
		GenerationController: controller.NewGenerationController(generationService),
		BillingController:    controller.NewBillingController(billingService),
		EmojiController:      controller.NewEmojiController(emojiService),
		ActivityController:   controller.NewActivityController(activityService),

		ActivityService: activityService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
