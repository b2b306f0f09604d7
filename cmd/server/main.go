package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"terminal-terrace/edustream/config"
	"terminal-terrace/edustream/internal/database"
	"terminal-terrace/edustream/internal/logging"
	"terminal-terrace/edustream/internal/route"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. 加载配置
	config.MustLoad("config.yaml")

	// 2. 初始化日志
	logConf := config.Conf.Log
	builder := logging.New().
		Level(logConf.Level).
		Format(logConf.Format).
		With("service", "edustream")
	if logConf.Output == "file" && logConf.Path != "" {
		builder = builder.FromPath(logConf.Path)
	}
	logger, err := builder.Make()
	if err != nil {
		log.Fatal().Err(err).Msg("初始化日志失败")
	}
	defer logger.Close()
	logger.SetGlobal()

	// 3. 初始化数据库
	if err := database.InitDatabase(); err != nil {
		log.Fatal().Err(err).Msg("初始化数据库失败")
	}
	defer database.Close()

	// 4. 设置路由
	r, err := route.SetupRouter()
	if err != nil {
		log.Fatal().Err(err).Msg("初始化路由失败")
	}

	// 5. 启动服务
	srv := &http.Server{
		Addr:         config.Conf.Server.Addr(),
		Handler:      r,
		ReadTimeout:  config.Conf.Server.ReadTimeout,
		WriteTimeout: config.Conf.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("服务异常退出")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("收到退出信号，正在关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("关闭服务失败")
	}
}
