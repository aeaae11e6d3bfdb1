package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/events"
	"github.com/ravantech1548/Face-recogn-attendance/internal/printer"
)

var watchRedisAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream attendance events as they happen",
	Long: `Subscribe to the attendance event channel and print one colored line per
check-in, check-out or ignored sighting. Stops on SIGINT or SIGTERM.

Examples:
  # Use ATTENDANCE_REDIS_ADDR
  attendance-server watch

  # Explicit redis
  attendance-server watch --redis localhost:6379`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchRedisAddr, "redis", "", "Redis address (default ATTENDANCE_REDIS_ADDR)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := watchRedisAddr
	if addr == "" {
		addr = cfg.RedisAddr
	}
	if addr == "" {
		return printer.Error(
			"no redis configured",
			"Attendance events are only published when redis is configured.",
			[]string{"Set ATTENDANCE_REDIS_ADDR", "Pass --redis host:port"},
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := events.NewRedisPublisher(&redis.Options{Addr: addr}, cfg.RedisNamespace)
	if err != nil {
		return err
	}
	defer client.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return printer.ErrorWithContext(
			"redis connection failed",
			fmt.Sprintf("Could not connect to redis at %s", addr),
			map[string]string{"Error": err.Error()},
			[]string{"Check that redis is running and reachable"},
		)
	}

	sub, err := client.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	printer.Step("watching %s (Ctrl+C to stop)\n", events.ChannelName(cfg.RedisNamespace))
	return streamEvents(ctx, sub, cmd)
}

func streamEvents(ctx context.Context, sub *events.Subscription, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	evs, errs := sub.Events(), sub.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-evs:
			if !ok {
				return nil
			}
			printer.FormatEvent(out, ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			printer.Warning("%v\n", err)
		}
	}
}
