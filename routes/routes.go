package routes

import (
	"net/http"
	"time"

	"nutriportions/controllers"
	"nutriportions/middlewares"
	"nutriportions/services"
	"nutriportions/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// base64 of a full-size image plus room for the rest of the JSON
const maxImageBody = utils.MaxImageBytes/3*4 + 64<<10

// Deps is everything the router needs to build its controllers.
type Deps struct {
	DB          *gorm.DB
	JWTSecret   string
	CORSOrigins []string

	Auth            *services.AuthService
	Profiles        *services.ProfileService
	Logs            *services.DailyLogService
	Items           *services.DailyItemService
	Foods           *services.FoodBankService
	Photos          *services.PhotoAnalysisService
	Images          services.ImageStore
	Measurements    *services.BodyMeasurementService
	Workouts        *services.WorkoutService
	Guides          *services.GuideService
	MealPlans       *services.MealPlanService
	Recommendations *services.RecommendationService
	Analytics       *services.AnalyticsService
	Notifications   *services.NotificationService
	Push            *services.PushService
	Hub             *services.RealtimeHub
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(), middlewares.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(d.CORSOrigins) == 0 || (len(d.CORSOrigins) == 1 && d.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = d.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(utils.Registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})))

	authC := controllers.NewAuthController(d.Auth)
	profileC := controllers.NewProfileController(d.Profiles)
	dayC := controllers.NewDailyLogController(d.Logs)
	itemC := controllers.NewDailyItemController(d.Items)
	foodC := controllers.NewFoodBankController(d.Foods)
	photoC := controllers.NewPhotoController(d.Photos, d.Images)
	measureC := controllers.NewMeasurementController(d.Measurements)
	workoutC := controllers.NewWorkoutController(d.Workouts)
	contentC := controllers.NewContentController(d.Guides, d.MealPlans)
	recC := controllers.NewRecommendationController(d.Recommendations)
	analyticsC := controllers.NewAnalyticsController(d.Analytics)
	notifC := controllers.NewNotificationController(d.Notifications)
	deviceC := controllers.NewDeviceController(d.Push)
	devC := controllers.NewDevController(d.Push)
	rtC := controllers.NewRealtimeController(d.Hub)

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", authC.Register)
		auth.POST("/login", authC.Login)
		auth.POST("/social", authC.Social)
		auth.POST("/forgot-password", authC.ForgotPassword)
		auth.POST("/reset-password", authC.ResetPassword)
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware(d.JWTSecret))
	{
		api.GET("/user/profile", profileC.GetProfile)
		api.PUT("/user/profile", middlewares.BodyLimit(maxImageBody), profileC.UpdateProfile)

		api.GET("/daily", dayC.GetDay)
		api.PUT("/daily/water", dayC.SetWater)
		api.GET("/daily/history", dayC.History)
		api.POST("/daily/items", itemC.AddFromFoodBank)
		api.POST("/daily/items/analysis", itemC.AddAnalyzed)
		api.POST("/daily/items/meal-plan", itemC.AddFromMealPlan)
		api.PATCH("/daily/items/:id", itemC.UpdateQuantity)
		api.DELETE("/daily/items/:id", itemC.Delete)

		api.GET("/food-bank", foodC.List)
		api.GET("/food-bank/categories", foodC.Categories)
		api.GET("/food-bank/:id", foodC.Get)
		api.GET("/food-bank/:id/preview", foodC.Preview)

		api.POST("/analysis/photo", middlewares.BodyLimit(maxImageBody), photoC.Analyze)

		api.GET("/measurements", measureC.List)
		api.POST("/measurements", measureC.Record)
		api.POST("/measurements/weight", measureC.QuickWeight)
		api.GET("/measurements/trend", measureC.Trend)
		api.DELETE("/measurements/:id", measureC.Delete)

		api.GET("/workouts", workoutC.List)
		api.POST("/workouts", workoutC.Add)
		api.GET("/workouts/week", workoutC.Week)
		api.DELETE("/workouts/:id", workoutC.Delete)

		api.GET("/guides", contentC.ListGuides)
		api.GET("/meal-plan", contentC.MyPlan)
		api.GET("/recommendations", recC.Get)
		api.GET("/analytics/summary", analyticsC.GetAnalyticsSummary)
		api.GET("/analytics/weekly", analyticsC.GetWeeklyOverview)

		api.POST("/devices", deviceC.Register)
		api.GET("/ws", rtC.Connect)
	}

	admin := api.Group("/admin")
	admin.Use(middlewares.AdminOnly(d.DB))
	{
		admin.GET("/clients", profileC.ListClients)
		admin.POST("/clients", profileC.CreateClient)
		admin.PUT("/clients/:id/goals", profileC.UpdateGoals)
		admin.PUT("/clients/:id/template", profileC.ApplyTemplate)
		admin.GET("/clients/:id/measurements", measureC.ClientList)
		admin.POST("/clients/:id/measurements", measureC.ClientRecord)
		admin.GET("/clients/:id/meal-plan", contentC.ClientPlan)
		admin.POST("/clients/:id/meal-plan", contentC.AddPlanItem)
		admin.POST("/clients/:id/push", devC.PushTest)
		admin.DELETE("/meal-plan/:itemId", contentC.DeletePlanItem)

		admin.POST("/food-bank", foodC.Create)
		admin.PUT("/food-bank/:id", foodC.Update)
		admin.POST("/food-bank/import", foodC.Import)

		admin.POST("/guides", middlewares.BodyLimit(maxImageBody), contentC.CreateGuide)
		admin.DELETE("/guides/:id", contentC.DeleteGuide)

		admin.GET("/templates", profileC.ListTemplates)
		admin.POST("/templates", profileC.CreateTemplate)

		admin.GET("/notifications", notifC.List)
		admin.POST("/notifications", notifC.Create)
		admin.PATCH("/notifications/:id", notifC.Toggle)
		admin.DELETE("/notifications/:id", notifC.Delete)

		admin.POST("/uploads", middlewares.BodyLimit(maxImageBody), photoC.Upload)
	}

	return r
}
