package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/bookvine/internal/app"
	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/logger"
	"github.com/bookvine/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	release := cfg.Server.Mode == "release"
	enforceSecretStrength(cfg, release, stdLog)
	setupDatabase(cfg, stdLog)
	seedDefaultAdmin(release, stdLog)

	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	})
	if err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// enforceSecretStrength 弱密钥在生产环境直接拒绝启动，开发环境只告警
func enforceSecretStrength(cfg *config.Config, release bool, stdLog *log.Logger) {
	if !isWeakSecret(cfg.JWT.SecretKey) && !isWeakSecret(cfg.UserJWT.SecretKey) {
		return
	}
	if release {
		stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
	}
	stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
}

func setupDatabase(cfg *config.Config, stdLog *log.Logger) {
	err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}
}

func seedDefaultAdmin(release bool, stdLog *log.Logger) {
	username := os.Getenv("BV_DEFAULT_ADMIN_USERNAME")
	password := os.Getenv("BV_DEFAULT_ADMIN_PASSWORD")
	if release && password == "" {
		stdLog.Printf("警告: 未设置 BV_DEFAULT_ADMIN_PASSWORD，已跳过默认管理员初始化")
		return
	}
	if err := models.InitDefaultAdmin(username, password); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + "██████╗  ██████╗  ██████╗ ██╗  ██╗██╗   ██╗██╗███╗   ██╗███████╗" + ansiReset)
	fmt.Println(ansiCyan + "██╔══██╗██╔═══██╗██╔═══██╗██║ ██╔╝██║   ██║██║████╗  ██║██╔════╝" + ansiReset)
	fmt.Println(ansiCyan + "██████╔╝██║   ██║██║   ██║█████╔╝ ██║   ██║██║██╔██╗ ██║█████╗  " + ansiReset)
	fmt.Println(ansiCyan + "██╔══██╗██║   ██║██║   ██║██╔═██╗ ╚██╗ ██╔╝██║██║╚██╗██║██╔══╝  " + ansiReset)
	fmt.Println(ansiCyan + "██████╔╝╚██████╔╝╚██████╔╝██║  ██╗ ╚████╔╝ ██║██║ ╚████║███████╗" + ansiReset)
	fmt.Println(ansiCyan + "╚═════╝  ╚═════╝  ╚═════╝ ╚═╝  ╚═╝  ╚═══╝  ╚═╝╚═╝  ╚═══╝╚══════╝" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Bookvine API" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
