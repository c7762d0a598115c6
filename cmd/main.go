package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"pedegas/config"
	"pedegas/internal/pkg/cache"
	"pedegas/internal/pkg/database"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/pkg/token"

	// Camadas da API para Injeção de Dependências
	"pedegas/internal/api/delivery"
	"pedegas/internal/api/deliveryman"
	"pedegas/internal/api/inventory"
	"pedegas/internal/api/router"
	"pedegas/internal/api/station"
	"pedegas/internal/api/user"

	"pedegas/internal/repository/deliverymanrepo"
	"pedegas/internal/repository/deliveryrepo"
	"pedegas/internal/repository/inventoryrepo"
	"pedegas/internal/repository/stationrepo"
	"pedegas/internal/repository/userrepo"

	"pedegas/internal/service/deliverymanservice"
	"pedegas/internal/service/deliveryservice"
	"pedegas/internal/service/inventoryservice"
	"pedegas/internal/service/stationservice"
	"pedegas/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço PedeGás...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir, seguimos com as variáveis do ambiente do sistema.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	appLog.Info("Conexão Redis estabelecida.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	appLog.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)
	stationRepo := stationrepo.NewGasStationRepository(db, cfg.DBTimeout, appLog)
	inventoryRepo := inventoryrepo.NewInventoryRepository(db, cacheClient, cfg.DBTimeout, appLog)
	deliveryRepo := deliveryrepo.NewDeliveryRepository(db, cfg.DBTimeout, appLog)
	deliverymanRepo := deliverymanrepo.NewDeliverymanRepository(db, cfg.DBTimeout, appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	userSvc := userservice.NewService(userRepo, stationRepo, tokenSvc, cacheClient, cfg.ResetTokenTTL, appLog)
	stationSvc := stationservice.NewService(stationRepo, appLog)
	inventorySvc := inventoryservice.NewService(inventoryRepo, appLog)
	deliverySvc := deliveryservice.NewService(deliveryRepo, appLog)
	deliverymanSvc := deliverymanservice.NewService(deliverymanRepo, appLog)
	appLog.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	handlers := router.Handlers{
		User:        user.NewHandler(userSvc, appLog),
		Station:     station.NewHandler(stationSvc, appLog),
		Inventory:   inventory.NewHandler(inventorySvc, appLog),
		Delivery:    delivery.NewHandler(deliverySvc, appLog),
		Deliveryman: deliveryman.NewHandler(deliverymanSvc, appLog),
	}
	appLog.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(handlers, tokenSvc, cacheClient, router.RateLimit{
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor PedeGás ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
