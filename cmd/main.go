package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutriportions/config"
	"nutriportions/routes"
	"nutriportions/services"
	"nutriportions/utils"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := services.NewRealtimeHub()
	logs := services.NewDailyLogService(db, cfg.Timezone)
	foods := services.NewFoodBankService(db)

	var (
		images    services.ImageStore
		mailer    services.Mailer
		snsClient services.SNSAPI
		analyzer  services.Analyzer
	)
	if cfg.AWSEnabled() {
		awsCfg, err := config.LoadAWS(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("aws config")
		}
		if cfg.S3Bucket != "" {
			images = utils.NewS3Uploader(awsCfg, cfg.S3Bucket, cfg.CloudFrontURL)
		}
		if cfg.SESEmail != "" {
			mailer = utils.NewSESMailer(awsCfg, cfg.SESEmail)
		}
		if cfg.SNSFCMArn != "" || cfg.SNSAPNSArn != "" {
			snsClient = sns.NewFromConfig(awsCfg)
		}
		if cfg.AnalyzeURL == "" {
			analyzer = services.NewRekognitionAnalyzer(rekognition.NewFromConfig(awsCfg), foods)
		}
	}
	if cfg.AnalyzeURL != "" {
		analyzer = services.NewHTTPAnalyzer(cfg.AnalyzeURL, cfg.AnalyzeAPIKey, cfg.AnalyzeTimeout)
	}
	if analyzer == nil {
		log.Warn().Str(utils.PACKAGE, "main").Msg("no photo analyzer configured")
	}

	providers := map[string]services.IdentityProvider{}
	if cfg.GoogleClientID != "" {
		providers["google"] = services.GoogleProvider(cfg.GoogleClientID)
	}
	if cfg.AppleClientID != "" {
		providers["apple"] = services.AppleProvider(cfg.AppleClientID)
	}
	var verifier *services.IdentityVerifier
	if len(providers) > 0 {
		verifier = services.NewIdentityVerifier(providers)
		defer verifier.Close()
	}

	auth := services.NewAuthService(db, cfg.JWTSecret, logs, mailer, verifier)
	push := services.NewPushService(db, snsClient, cfg.SNSFCMArn, cfg.SNSAPNSArn, hub)

	deps := routes.Deps{
		DB:              db,
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSOrigins,
		Auth:            auth,
		Profiles:        services.NewProfileService(db, auth, mailer, images),
		Logs:            logs,
		Items:           services.NewDailyItemService(db, logs, hub),
		Foods:           foods,
		Photos:          services.NewPhotoAnalysisService(db, analyzer, foods, images),
		Images:          images,
		Measurements:    services.NewBodyMeasurementService(db, logs),
		Workouts:        services.NewWorkoutService(db, logs),
		Guides:          services.NewGuideService(db, images),
		MealPlans:       services.NewMealPlanService(db, foods),
		Recommendations: services.NewRecommendationService(db, logs),
		Analytics:       services.NewAnalyticsService(db, logs),
		Notifications:   services.NewNotificationService(db),
		Push:            push,
		Hub:             hub,
	}

	scheduler := services.NewScheduler(db, logs, push, cfg.SchedulerInterval)
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str(utils.PACKAGE, "main").Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Str(utils.PACKAGE, "main").Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := scheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler stop")
	}
}
