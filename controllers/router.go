package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/princinho/storefront/middleware"
)

func NewRouter(app *App, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}
	app.Logger.Info("cors configured", slog.Any("origins", allowedOrigins))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return origins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(app.Logger))
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api/v1")
	api.POST("/register", app.Register())
	api.POST("/login", app.Login())
	api.GET("/logout", app.Logout())
	api.GET("/refresh-token", app.RefreshToken())
	api.POST("/password/forgot", app.ForgotPassword())
	api.PUT("/password/reset/:token", app.ResetPassword())

	session := api.Group("")
	session.Use(middleware.RequireAuth(app.Auth, app.Cookies))
	{
		session.GET("/me", app.Me())
		session.PUT("/me/update", app.UpdateProfile())
		session.PUT("/password/update", app.UpdatePassword())
	}

	admin := session.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", app.ListUsers())
		admin.GET("/user/:id", app.GetUser())
		admin.PUT("/user/:id", app.UpdateUser())
		admin.DELETE("/user/:id", app.DeleteUser())
	}

	return r
}
