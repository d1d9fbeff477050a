// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/javajoker/machinery-catalog/internal/config"
	"github.com/javajoker/machinery-catalog/internal/handlers"
	"github.com/javajoker/machinery-catalog/internal/middleware"
	"github.com/javajoker/machinery-catalog/internal/repository"
	"github.com/javajoker/machinery-catalog/internal/services"
)

// Services groups the application services shared by the router and startup tasks.
type Services struct {
	Auth     *services.AuthService
	Category *services.CategoryService
	Product  *services.ProductService
	Review   *services.ReviewService
	Export   *services.ExportService
	Admin    *services.AdminService

	audit *repository.AuditRepository
}

func NewServices(db *gorm.DB, redisClient *redis.Client, storage services.ObjectStorage, cfg *config.Config) *Services {
	productRepo := repository.NewProductRepository(db)
	imageRepo := repository.NewProductImageRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	issueLog := services.NewAlertingIssueLog(issueRepo, services.NewNotificationService(cfg.Email))

	categoryService := services.NewCategoryService(categoryRepo, redisClient,
		time.Duration(cfg.Redis.SchemaTTL)*time.Minute, cfg.Redis.KeyPrefix)
	productService := services.NewProductService(productRepo, imageRepo, categoryService, storage, issueLog, cfg.Storage)

	return &Services{
		Auth:     services.NewAuthService(adminRepo, cfg),
		Category: categoryService,
		Product:  productService,
		Review:   services.NewReviewService(reviewRepo, storage, issueLog, cfg.Storage.ReviewsBucket, cfg.Storage.MaxAttempts),
		Export:   services.NewExportService(productService, categoryService),
		Admin:    services.NewAdminService(db, issueRepo, auditRepo),
		audit:    auditRepo,
	}
}

func Initialize(svc *Services, cfg *config.Config) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Auth)
	categoryHandler := handlers.NewCategoryHandler(svc.Category)
	productHandler := handlers.NewProductHandler(svc.Product, svc.Export)
	reviewHandler := handlers.NewReviewHandler(svc.Review)
	adminHandler := handlers.NewAdminHandler(svc.Admin)

	limits := middleware.NewRateLimits(cfg.RateLimit)
	maxBody := int64(cfg.Server.MaxBodyMB) << 20

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())
	r.Use(limits.General())
	r.Use(func(c *gin.Context) {
		if maxBody > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", limits.Login(), authHandler.Login)
			auth.POST("/refresh", limits.Login(), authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Public catalog
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/featured", productHandler.GetFeaturedProducts)
			products.GET("/slug/:slug", productHandler.GetProductBySlug)
			products.GET("/:id/related", productHandler.GetRelatedProducts)
			products.GET("/:id/attributes", productHandler.GetFormattedAttributes)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.GET("/:id/fields", categoryHandler.GetFields)
		}
		v1.GET("/subcategories", categoryHandler.GetSubcategories)
		v1.GET("/reviews", reviewHandler.GetPublicReviews)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		admin.Use(middleware.AuditLog(svc.audit))
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/issues", adminHandler.GetIssues)
			admin.POST("/issues/:id/resolve", adminHandler.ResolveIssue)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)

			adminProducts := admin.Group("/products")
			{
				adminProducts.GET("", productHandler.AdminGetProducts)
				adminProducts.GET("/export", productHandler.ExportProducts)
				adminProducts.GET("/:id", productHandler.GetProduct)
				adminProducts.POST("", limits.Upload(), productHandler.CreateProduct)
				adminProducts.PUT("/:id", limits.Upload(), productHandler.UpdateProduct)
				adminProducts.DELETE("/:id", productHandler.DeleteProduct)
				adminProducts.GET("/:id/images", productHandler.ListImages)
				adminProducts.DELETE("/:id/images/:imageId", productHandler.DeleteImage)
				adminProducts.POST("/:id/videos", productHandler.AddVideo)
				adminProducts.POST("/:id/videos/upload", limits.Upload(), productHandler.UploadVideo)
				adminProducts.DELETE("/:id/videos/:index", productHandler.RemoveVideo)
				adminProducts.POST("/:id/pdf", limits.Upload(), productHandler.UploadPDF)
				adminProducts.DELETE("/:id/pdf", productHandler.DeletePDF)
			}

			adminCategories := admin.Group("/categories")
			{
				adminCategories.POST("", categoryHandler.CreateCategory)
				adminCategories.PUT("/:id", categoryHandler.UpdateCategory)
				adminCategories.DELETE("/:id", categoryHandler.DeleteCategory)
				adminCategories.POST("/:id/fields", categoryHandler.CreateField)
			}
			admin.POST("/subcategories", categoryHandler.CreateSubcategory)
			admin.PUT("/subcategories/:id", categoryHandler.UpdateSubcategory)
			admin.DELETE("/subcategories/:id", categoryHandler.DeleteSubcategory)
			admin.PUT("/fields/:id", categoryHandler.UpdateField)
			admin.DELETE("/fields/:id", categoryHandler.DeleteField)

			adminReviews := admin.Group("/reviews")
			{
				adminReviews.GET("", reviewHandler.GetReviews)
				adminReviews.GET("/stats", reviewHandler.GetReviewStats)
				adminReviews.GET("/cities", reviewHandler.GetCities)
				adminReviews.GET("/provinces", reviewHandler.GetProvinces)
				adminReviews.GET("/:id", reviewHandler.GetReview)
				adminReviews.POST("", limits.Upload(), reviewHandler.CreateReview)
				adminReviews.PUT("/:id", limits.Upload(), reviewHandler.UpdateReview)
				adminReviews.DELETE("/:id", reviewHandler.DeleteReview)
				adminReviews.PATCH("/:id/toggle", reviewHandler.ToggleReviewStatus)
			}
		}
	}

	return r
}
