package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"

	"github.com/rollbook/rollbook-api/internal/handler"
	appmiddleware "github.com/rollbook/rollbook-api/internal/middleware"
	"github.com/rollbook/rollbook-api/internal/service"
)

func registerRoutes(
	r *gin.Engine,
	db *sqlx.DB,
	authSvc *service.AuthService,
	metricsSvc *service.MetricsService,
	students *handler.StudentHandler,
	attendance *handler.AttendanceHandler,
	auth *handler.AuthHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.GET("/docs/*any", ginswagger.WrapHandler(swaggerfiles.Handler))

	r.GET("/auth/google", auth.Login)
	r.GET("/auth/google/callback", auth.Callback)
	r.GET("/logout", auth.Logout)

	r.StaticFile("/login", "./web/login.html")
	r.StaticFile("/app.js", "./web/app.js")
	r.GET("/", appmiddleware.RedirectToLogin(authSvc, "/login"), func(c *gin.Context) {
		c.File("./web/index.html")
	})

	api := r.Group("/api")
	api.Use(appmiddleware.Session(authSvc))
	{
		api.GET("/user", auth.CurrentUser)

		api.GET("/students", students.List)
		api.POST("/students", students.Create)
		api.POST("/students/upload", students.Upload)
		api.DELETE("/students/:id", students.Delete)
		api.GET("/students/:id/attendance", students.Report)

		api.POST("/attendance", attendance.Mark)
		api.POST("/attendance/bulk", attendance.BulkMark)
		api.GET("/attendance/history", attendance.History)
		api.GET("/attendance/:date", attendance.Roster)
		api.GET("/attendance/:date/summary", attendance.Summary)
		api.GET("/attendance/:date/export", attendance.Export)
		api.DELETE("/attendance/all", attendance.DeleteAll)
		api.DELETE("/attendance/date/:date", attendance.DeleteByDate)
		api.DELETE("/attendance/:id", attendance.DeleteRecord)
	}
}
