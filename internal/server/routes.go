package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/traci1003/CareerCatalyst/internal/controller/jobboard"
	"github.com/traci1003/CareerCatalyst/internal/middleware"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOrginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrgins := strings.Split(allowOrginsStr, ",")

	boardController := jobboard.NewJobBoardController(s.DB, s.Registry)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrgins, // Add your frontend URL
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // Enable cookies/auth
	}))

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	{
		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB))

			// Job board endpoints sit in front of external platform APIs, so
			// inbound traffic is rate limited per user
			boardRoute := needAuth.Group("/jobboard")
			{
				boardRoute.Use(middleware.EnvRateLimitMiddleware())
				boardRoute.GET(":platform/search", boardController.SearchHandler)
				boardRoute.GET(":platform/jobs/:external_id", boardController.DetailsHandler)
				boardRoute.POST(":platform/apply", boardController.ApplyHandler)
				boardRoute.PUT(":platform/credentials", boardController.UpdateCredentialsHandler)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
