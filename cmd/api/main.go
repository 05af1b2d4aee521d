package main

import (
	"context"
	"net/http"

	"placemap/internal/config"
	"placemap/internal/handler"
	"placemap/internal/repository"
	"placemap/internal/service"
	"placemap/internal/weather"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	// Database connection
	conn, err := pgxpool.New(context.Background(), config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	// Initialize layers
	repo := repository.NewRepository(conn)

	locationService := service.NewLocationService(repo)
	categoryService := service.NewCategoryService(repo)
	clientService := service.NewClientService(repo)
	weatherClient := weather.NewClient(config.WeatherBaseURL, log.Logger)

	locationHandler := handler.NewLocationHandler(locationService, weatherClient)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	clientHandler := handler.NewClientHandler(clientService)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		api.POST("/client/identify", clientHandler.Identify)

		api.POST("/locations/visited", locationHandler.SaveVisited)
		api.GET("/locations/visited", locationHandler.GetVisited)
		api.POST("/locations/faved", locationHandler.SaveFaved)
		api.GET("/locations/faved", locationHandler.GetFaved)
		api.PUT("/locations/faved/:id/category", locationHandler.AssignCategory)
		api.GET("/locations/faved/category/:categoryId", locationHandler.GetFavedByCategory)
		api.GET("/locations/weather", locationHandler.Weather)

		api.POST("/categories", categoryHandler.Create)
		api.GET("/categories", categoryHandler.List)
		api.GET("/categories/:id", categoryHandler.Get)
		api.PUT("/categories/:id", categoryHandler.Update)
	}

	r.Run(config.ServerAddress)
}
