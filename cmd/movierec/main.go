// Command movierec 启动基于知识图谱的电影推荐 HTTP 服务。
//
//	movierec -config configs/movierec.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/movierec/config"
	_ "github.com/rushteam/movierec/config/builders"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/recommend"
	"github.com/rushteam/movierec/server"
)

func main() {
	path := flag.String("config", "configs/movierec.yaml", "path to the application config")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintf(os.Stderr, "movierec: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.LoadApp(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.Log)
	log := logging.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := config.NewDeps(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Warn().Err(err).Msg("close dependencies")
		}
	}()

	p, err := cfg.BuildPipeline(config.Factory(deps))
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	log.Info().
		Str("pipeline", cfg.Pipeline.Name).
		Int("nodes", len(p.Nodes)).
		Str("graph", cfg.Graph.Endpoint).
		Msg("pipeline ready")

	svc := recommend.NewService(p, deps.EntityPrefix)
	return server.New(cfg.Server, svc).Run(ctx)
}
