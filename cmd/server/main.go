// Package main 是中继服务的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"learning-compass-go/internal/config"
	"learning-compass-go/internal/handler"
	"learning-compass-go/internal/middleware"
	"learning-compass-go/internal/repository"
	"learning-compass-go/internal/service"
	"learning-compass-go/pkg/database"
	"learning-compass-go/pkg/llm"
	"learning-compass-go/pkg/log"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化响应缓存（可选）：未配置 Redis 时退化为空实现
	var cache repository.CacheRepository = repository.NopCache{}
	if cfg.Redis.Addr != "" {
		database.InitRedis(cfg.Redis)
		ttl := time.Duration(cfg.Redis.TTLMinutes) * time.Minute
		if ttl <= 0 {
			ttl = time.Hour
		}
		cache = repository.NewCacheRepository(database.RDB, ttl)
	} else {
		log.Info("未配置 Redis，响应缓存已禁用")
	}

	// 4. 初始化 Service (依赖注入)
	llmClient := llm.NewClient(cfg.LLM)
	chatService := service.NewChatService(llmClient)
	conceptService := service.NewConceptService(llmClient, cache)
	formulaService := service.NewFormulaService(llmClient, chatService, cache)

	// 5. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志、CORS 中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), middleware.CORS(), gin.Recovery())

	// 6. 初始化 Handler 并注册路由
	chatHandler := handler.NewChatHandler(chatService)
	conceptHandler := handler.NewConceptHandler(conceptService)
	formulaHandler := handler.NewFormulaHandler(formulaService)

	api := r.Group("/api")
	{
		chat := api.Group("/chat")
		{
			chat.POST("/initial", chatHandler.Initial)
			chat.POST("", chatHandler.Chat)
		}

		concept := api.Group("/concept")
		{
			concept.POST("", conceptHandler.Combined)
			concept.POST("/explain", conceptHandler.Explain)
			concept.POST("/relate", conceptHandler.Relate)
		}

		formulas := api.Group("/formulas")
		{
			formulas.POST("", formulaHandler.Generate)
			formulas.POST("/categories", formulaHandler.Categories)
		}

		api.GET("/health", handler.Health)
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
