package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wowsimlabs/simops/internal/api"
	"github.com/wowsimlabs/simops/internal/monitor"
)

const gracefulTimeout = 10 * time.Second

func runMonitor(cmd *cobra.Command, args []string) error {
	logFile := flagStr(cmd, "log-file", cfg.Telemetry.LogFile)
	host := flagStr(cmd, "host", cfg.Server.GameHost)
	gamePort := flagInt(cmd, "port", cfg.Server.GamePort)
	controlPort := flagInt(cmd, "control-port", cfg.Server.ControlPort)
	listen := flagStr(cmd, "listen", cfg.Monitor.ListenAddr)
	interval := flagDur(cmd, "interval", cfg.Monitor.Interval.Std())

	builder, err := newReportBuilder(logFile, host, gamePort, controlPort, !monNoFaults)
	if err != nil {
		return err
	}

	mon := monitor.New(logger, builder, interval)
	srv, err := api.NewServer(logger, listen, mon)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()
	logger.Info("monitor serving", "addr", srv.Address(), "interval", interval)

	monDone := make(chan struct{})
	go func() {
		mon.Run(ctx)
		close(monDone)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			stop()
			<-monDone
			return err
		}
	}
	stop()

	// Drain in-flight HTTP requests first, then let the eval loop wind down.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	<-monDone
	logger.Info("shutdown complete")
	return nil
}
