package app

import (
	"sqlprep_backend/docs"
	"sqlprep_backend/internal/config"
	"sqlprep_backend/internal/middleware"
	"sqlprep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 路径沿用前端既有约定（根级路由，含一个 /:mockId 通配）。
// CRUD 接口和原实现一样不要求会话；两个 AI 代理接口消耗外部额度，必须登录。
func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// 认证
	router.POST("/signup", c.auth.Signup)
	router.POST("/login", c.auth.Login)
	router.POST("/logout", c.auth.Logout)
	router.GET("/auth", c.auth.CheckAuth)

	// 模拟测试
	router.POST("/create-mock", c.mockTest.CreateMock)
	router.GET("/mocks/:userId", c.mockTest.ListMocks)
	router.GET("/:mockId", c.mockTest.GetMock)

	// 进度
	router.GET("/trackProgress/:mockId", c.progress.ListProgress)
	router.PATCH("/update-status/:id", c.progress.UpdateStatus)
	router.PATCH("/update-feedback/:id", c.progress.UpdateFeedback)

	// 服务端 AI 代理
	authorized := router.Group("/")
	authorized.Use(middleware.AuthMiddleware(cfg))
	{
		authorized.POST("/generate-mock", c.mockTest.GenerateMock)
		authorized.POST("/generate-feedback/:id", c.progress.GenerateFeedback)
	}
}
