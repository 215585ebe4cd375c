package main

import (
	"InnerCompassGo/config"
	"InnerCompassGo/middleware"
	"InnerCompassGo/repositories"
	"InnerCompassGo/routes"
	"InnerCompassGo/services"
	"InnerCompassGo/utils"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	conf, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	// 初始化日志
	if err := config.InitLogger(conf.Environment); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	defer config.Logger.Sync()

	if conf.JWTSecret == "" {
		config.Logger.Fatalw("JWT_SECRET 未配置")
	}
	utils.SetJWTSecret(conf.JWTSecret)

	// 初始化数据库
	if err := config.InitDB(conf); err != nil {
		config.Logger.Fatalw("无法初始化数据库", "error", err)
	}

	// 初始化Redis，不可用时使用进程内锁，聊天不保存摘要
	var locker services.UserLocker
	if err := config.InitRedis(conf); err != nil {
		config.Logger.Warnw("Redis不可用，使用本地锁", "error", err)
		config.RedisClient = nil
		locker = services.NewLocalUserLocker()
	} else {
		locker = services.NewRedisUserLocker(config.RedisClient)
	}

	// Deepseek客户端，未配置时陪伴聊天返回 503
	var deepseekClient *services.DeepseekClient
	if conf.DeepseekAPIKey != "" {
		deepseekClient, err = services.NewDeepseekClient(conf.DeepseekAPIKey, conf.DeepseekAPIEndpoint, conf.DeepseekChatModel)
		if err != nil {
			config.Logger.Fatalw("无法初始化Deepseek客户端", "error", err)
		}
	}

	invoker, err := newInvoker(conf, deepseekClient)
	if err != nil {
		config.Logger.Warnw("生成能力不可用，评分和任务只使用规则计算", "error", err)
	}

	users := repositories.NewUserRepository(config.DB)
	wellnessService := services.NewWellnessService(services.WellnessDeps{
		Journals: repositories.NewJournalRepository(config.DB),
		Tasks:    repositories.NewTaskRepository(config.DB),
		Scores:   repositories.NewScoreRepository(config.DB),
		Users:    users,
		Invoker:  invoker,
		Locker:   locker,
		Weights: services.ScoringWeights{
			Base:       conf.ScoreBase,
			Sentiment:  conf.ScoreSentimentWeight,
			Compliance: conf.ScoreComplianceWeight,
			Mood:       conf.ScoreMoodWeight,
			Recency:    services.DefaultScoringWeights().Recency,
		},
		Tiers: services.TaskTiers{
			LowBelow:        conf.TaskLowTierBelow,
			MaintenanceFrom: conf.TaskMaintenanceTierMin,
		},
		Goals: services.GoalTargets{
			Weekly:  conf.WeeklyJournalTarget,
			Monthly: conf.MonthlyJournalTarget,
		},
	})
	chatService := services.NewChatService(deepseekClient, config.RedisClient)

	// 设置Gin模式
	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	middleware.SetupMiddleware(r)
	routes.RegisterRoutes(r, routes.Dependencies{
		Users:             users,
		Wellness:          wellnessService,
		Chat:              chatService,
		InternalAuthToken: conf.InternalAuthToken,
	})

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:    ":" + conf.ServerPort,
		Handler: r,
	}

	// 在goroutine中启动服务器
	go func() {
		config.Logger.Infow("启动服务器", "port", conf.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			config.Logger.Fatalw("服务器启动失败", "error", err)
		}
	}()

	// 等待中断信号以实现优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	config.Logger.Infow("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		config.Logger.Errorw("服务器关闭失败", "error", err)
	}

	config.Logger.Infow("正在等待所有后台任务完成...")
	chatService.Wait()
	config.Logger.Infow("所有后台任务已完成")
}

// newInvoker 按 GENERATION_PROVIDER 构造生成适配器，失败时返回 nil 接口
func newInvoker(conf config.Config, deepseekClient *services.DeepseekClient) (services.Invoker, error) {
	var generator services.TextGenerator
	switch conf.GenerationProvider {
	case "gemini":
		if conf.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is empty")
		}
		g, err := services.NewGeminiGenerator(context.Background(), conf.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		generator = g
	case "deepseek":
		if deepseekClient == nil {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is empty")
		}
		generator = deepseekClient
	case "", "none":
		return nil, fmt.Errorf("GENERATION_PROVIDER not set")
	default:
		return nil, fmt.Errorf("unsupported GENERATION_PROVIDER %q", conf.GenerationProvider)
	}

	adapter, err := services.NewGenerationAdapter(generator, conf.GenerationVariants())
	if err != nil {
		return nil, err
	}
	return adapter, nil
}
