// cmd/validation/main.go
package main

import (
	"log"

	"validation-service/internal/api/handlers"
	"validation-service/internal/api/responses"
	"validation-service/internal/config"
	"validation-service/internal/core/ingestao"
	"validation-service/internal/core/relatorio"
	"validation-service/internal/core/validacao"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	responses.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Falha ao carregar a configuração: ", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Falha ao iniciar o logger: ", err)
	}
	defer logger.Sync()

	ingestaoService := ingestao.NewService(logger)
	validacaoService := validacao.NewService(logger)
	relatorioService := relatorio.NewService(logger)
	validationHandler := handlers.NewValidationHandler(ingestaoService, validacaoService, relatorioService, cfg, logger)

	router := gin.Default()

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/validate", validationHandler.HandleValidacao)
		apiV1.POST("/validate/resumo", validationHandler.HandleValidacaoResumo)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "validation-service"})
	})

	log.Printf("🚀 Validation Service (Go) iniciado e escutando na porta %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Falha ao iniciar o servidor de validação: ", err)
	}
}
