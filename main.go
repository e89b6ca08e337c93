package main

import (
	"context"
	"time"

	"atmo-monitor-go/platform"
	"atmo-monitor-go/services/config"
	"atmo-monitor-go/services/monitor"
	"atmo-monitor-go/x/logx"
)

func main() {
	time.Sleep(platform.BootDelay)
	log := logx.New(logx.LevelInfo).With("board", platform.BoardName)
	log.Info("boot")

	p, err := config.Load(platform.BoardName)
	if err != nil {
		log.Error("config", "err", err)
		p = config.Default()
	}
	board, err := platform.Open(p, log)
	if err != nil {
		log.Error("platform", "err", err)
		return
	}
	if err := monitor.Run(context.Background(), board, monitor.Options{}); err != nil {
		log.Error("monitor exited", "err", err)
	}
}
