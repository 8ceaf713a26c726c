package app

import (
	"onlinecourse_backend/docs"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/middleware"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 课程与考试
	a.registerCourseRoutes(router, c, cfg)

	// 3. 需要授权的账户接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret, a.blacklist))
	{
		authGroup.POST("/logout", c.auth.Logout)
		authGroup.GET("/profile", c.auth.GetProfile)
	}

	// 4. 管理接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerCourseRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	courses := router.Group("/api/courses")
	{
		// 可选认证：游客可浏览，报名对游客为空操作
		optional := courses.Group("")
		optional.Use(middleware.TryAuthMiddleware(cfg.JWT.Secret, a.blacklist))
		{
			optional.GET("", c.course.ListCourses)
			optional.GET("/:id", c.course.GetCourse)
			optional.POST("/:id/enroll", c.course.Enroll)
		}

		// 考试提交与成绩：强制认证
		authorized := courses.Group("")
		authorized.Use(middleware.AuthMiddleware(cfg.JWT.Secret, a.blacklist))
		{
			authorized.POST("/:id/submit", c.exam.Submit)
			authorized.GET("/:id/submissions/:submissionId/result", c.exam.Result)
		}
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret, a.blacklist), middleware.RoleMiddleware(model.RoleInstructor))
	{
		admin.POST("/courses", c.admin.CreateCourse)
		admin.PUT("/courses/:id", c.admin.UpdateCourse)
		admin.DELETE("/courses/:id", c.admin.DeleteCourse)
		admin.POST("/courses/:id/image", c.admin.UploadCourseImage)
		admin.POST("/courses/:id/instructors/:instructorId", c.admin.AddCourseInstructor)
		admin.POST("/courses/:id/lessons", c.admin.CreateLesson)
		admin.POST("/courses/:id/questions", c.admin.CreateQuestion)

		admin.DELETE("/lessons/:id", c.admin.DeleteLesson)
		admin.DELETE("/questions/:id", c.admin.DeleteQuestion)
		admin.GET("/questions/:id/choices", c.admin.ListChoices)
		admin.POST("/questions/:id/choices", c.admin.CreateChoice)
		admin.PATCH("/choices/:id", c.admin.UpdateChoice)
		admin.DELETE("/choices/:id", c.admin.DeleteChoice)

		admin.POST("/instructors", c.admin.CreateInstructor)
		admin.POST("/learners", c.admin.CreateLearner)
		admin.GET("/submissions", c.admin.ListSubmissions)
	}
}
