package server

import (
	"context"
	"log"
	"path/filepath"

	"github.com/gin-gonic/gin"

	v1 "rais/internal/api/v1"
	"rais/internal/config"
	"rais/internal/importer"
	"rais/internal/mapper"
	"rais/internal/model"
	"rais/internal/store"
	"rais/internal/transformer"
)

// Server HTTP服务器
type Server struct {
	router       *gin.Engine
	permanent    *store.Store
	collaborator mapper.Collaborator
	v1           *v1.Handler
}

// NewServer 创建服务器并装配整条导入流水线
func NewServer(cfg *config.AppConfig) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "rais.db")

	permanent, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	risk := loadRiskConfig(cfg, permanent)
	riskPolicy := model.NewRiskPolicy(risk.BatchWatchRate, risk.BatchHighRate)
	twoTier := store.NewTwoTier(store.NewSessionStore(riskPolicy), permanent)

	// 配了 API Key 才启用外部映射协作方，失败只降级不阻塞
	var collaborator mapper.Collaborator
	if cfg.Mapper.GeminiAPIKey != "" {
		c, err := mapper.NewGeminiCollaborator(context.Background(),
			cfg.Mapper.GeminiAPIKey, cfg.Mapper.GeminiModel, cfg.Mapper.Timeout())
		if err != nil {
			log.Printf("[server] 外部映射协作方不可用: %v", err)
		} else {
			collaborator = c
		}
	}

	coordinator := importer.NewCoordinator(
		mapper.NewColumnMapper(collaborator, cfg.Mapper.MinConfidence, cfg.Mapper.CacheSize),
		transformer.NewTransformerWithPolicy(riskPolicy),
		twoTier,
	)

	s := &Server{
		router:       gin.Default(),
		permanent:    permanent,
		collaborator: collaborator,
		v1:           v1.NewHandler(twoTier, coordinator, risk),
	}

	s.setupRoutes()

	return s
}

// loadRiskConfig 永久层配置表里的阈值覆盖文件配置
func loadRiskConfig(cfg *config.AppConfig, permanent *store.Store) config.RiskConfig {
	risk := cfg.Risk

	if v, err := permanent.GetConfigFloat("batch_watch_rate"); err == nil {
		risk.BatchWatchRate = v
	}
	if v, err := permanent.GetConfigFloat("batch_high_rate"); err == nil {
		risk.BatchHighRate = v
	}
	if v, err := permanent.GetConfigFloat("kpi_watch_delta"); err == nil {
		risk.KPIWatchDelta = v
	}
	if v, err := permanent.GetConfigFloat("kpi_alert_delta"); err == nil {
		risk.KPIAlertDelta = v
	}

	return risk
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 释放底层资源
func (s *Server) Close() error {
	if s.collaborator != nil {
		_ = s.collaborator.Close()
	}
	return s.permanent.Close()
}
