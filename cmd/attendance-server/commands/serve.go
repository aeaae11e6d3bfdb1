package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/events"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/service"
	"github.com/ravantech1548/Face-recogn-attendance/internal/config"
	"github.com/ravantech1548/Face-recogn-attendance/internal/grpcapi"
	"github.com/ravantech1548/Face-recogn-attendance/internal/httpapi"
	"github.com/ravantech1548/Face-recogn-attendance/internal/printer"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance HTTP API",
	Long: `Start the attendance HTTP API.

Also starts the staff directory refresh, the event log pruner, the redis
event publisher (when ATTENDANCE_REDIS_ADDR is set) and the gRPC health
server (when ATTENDANCE_GRPC_ADDR is set). Stops on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStack(ctx, cfg, logger)
	if err != nil {
		return printer.ErrorWithContext(
			"failed to open attendance store",
			err.Error(),
			map[string]string{"Store": cfg.Store},
			[]string{"Check ATTENDANCE_DB_PATH or DATABASE_URL"},
		)
	}
	defer st.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	staff := service.NewStaffDirectory(st.staff, cfg.StaffRefreshInterval(), logger)
	staff.Start(ctx)
	defer staff.Stop()

	var publisher service.Publisher
	if cfg.RedisAddr != "" {
		pub, err := openPublisher(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer pub.Close()
		publisher = pub
	}

	svc := service.NewAttendanceService(st.records, staff, st.events, service.Options{
		Location:     loc,
		StoreTimeout: cfg.StoreTimeout(),
		Logger:       logger,
		Publisher:    publisher,
	})

	pruner := service.NewEventPruner(st.events, service.PrunerConfig{
		RetentionDays: cfg.EventRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	if cfg.GRPCAddr != "" {
		stopGRPC, err := startGRPC(ctx, cfg.GRPCAddr, svc, logger)
		if err != nil {
			return err
		}
		defer stopGRPC()
	}

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:            logger,
		Addr:              cfg.HTTPAddr,
		AttendanceService: svc,
		FaceEventRPS:      cfg.FaceEventRPS,
		FaceEventBurst:    cfg.FaceEventBurst,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			"addr", cfg.HTTPAddr, "env", cfg.Env, "store", cfg.Store, "timezone", loc.String())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return printer.Error(
				"http server failed",
				err.Error(),
				[]string{fmt.Sprintf("Is %s already in use?", cfg.HTTPAddr)},
			)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	return nil
}

func openPublisher(ctx context.Context, cfg config.Config, logger *slog.Logger) (*events.RedisPublisher, error) {
	pub, err := events.NewRedisPublisher(&redis.Options{Addr: cfg.RedisAddr}, cfg.RedisNamespace)
	if err != nil {
		return nil, err
	}

	// Publishing is best-effort, so an unreachable redis only warns.
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pub.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable; events will be dropped until it is back",
			"addr", cfg.RedisAddr, "err", err)
	} else {
		logger.Info("publishing attendance events",
			"addr", cfg.RedisAddr, "channel", events.ChannelName(cfg.RedisNamespace))
	}
	return pub, nil
}

func startGRPC(ctx context.Context, addr string, p grpcapi.Pinger, logger *slog.Logger) (func(), error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc listen %s: %w", addr, err)
	}

	reporter := grpcapi.NewHealthReporter(p, 10*time.Second, logger)
	gs := grpcapi.NewServer(reporter, logger)
	reporter.Start(ctx)

	go func() {
		if err := gs.Serve(lis); err != nil {
			logger.Error("grpc server stopped", "err", err)
		}
	}()

	return func() {
		reporter.Stop()
		gs.GracefulStop()
	}, nil
}
