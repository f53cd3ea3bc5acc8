package main

import (
	appcontext "github.com/SeakMengs/EventHub/internal/app_context"
	"github.com/SeakMengs/EventHub/internal/auth"
	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/SeakMengs/EventHub/internal/controller"
	"github.com/SeakMengs/EventHub/internal/database"
	"github.com/SeakMengs/EventHub/internal/env"
	"github.com/SeakMengs/EventHub/internal/issuer"
	"github.com/SeakMengs/EventHub/internal/mailer"
	"github.com/SeakMengs/EventHub/internal/middleware"
	"github.com/SeakMengs/EventHub/internal/queue"
	ratelimiter "github.com/SeakMengs/EventHub/internal/rate_limiter"
	"github.com/SeakMengs/EventHub/internal/repository"
	"github.com/SeakMengs/EventHub/internal/route"
	"github.com/SeakMengs/EventHub/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	storage, closeStorage, err := appcontext.NewStorage(cfg, logger)
	if err != nil {
		logger.Panic(err)
	}
	defer closeStorage()

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterCustomValidations(v); err != nil {
			logger.Panicf("Failed to register custom validations: %v", err)
		}
	}

	renderer, measurer, err := appcontext.NewRenderer(cfg.Certificate, logger)
	if err != nil {
		logger.Panic(err)
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	defer rateLimiter.Stop()
	mail := mailer.NewFromConfig(cfg.Mail, cfg.IsProduction(), logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger)

	issuerOpts := []issuer.Option{issuer.WithFrontendURL(cfg.FRONTEND_URL)}
	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
		JWTService: jwtService,
		Storage:    storage,
		Renderer:   renderer,
		Measurer:   measurer,
	}

	// without rabbitmq generation stays synchronous and delivery is triggered by hand
	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
	if err != nil {
		logger.Warnf("RabbitMQ unavailable, asynchronous jobs are disabled: %v", err)
	} else {
		defer func() {
			if err := rabbitMQ.Close(); err != nil {
				logger.Errorf("Failed to close RabbitMQ connection: %v", err)
			}
		}()
		app.Queue = rabbitMQ
		issuerOpts = append(issuerOpts, issuer.WithDeliveryQueue(rabbitMQ))
		logger.Info("RabbitMQ connected \n")
	}

	app.Issuer = issuer.New(issuer.StoresFromRepository(repo), storage, renderer, mail, logger, issuerOpts...)

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FRONTEND_URL}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "Retry-After"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimiterMiddleware)

	_controller := controller.NewController(&app)

	r.GET("/", _controller.Index.Index)

	rApi := r.Group("/api")

	route.V1_Templates(rApi, _controller.Template, _controller.TemplateBuilder, _middleware)
	route.V1_EventCertificates(rApi, _controller.Certificate, _middleware)
	route.V1_Certificates(rApi, _controller.Certificate, _middleware)
	route.V1_Verify(rApi, _controller.Certificate)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panicf("Error running server: %v \n", err)
	}
}
