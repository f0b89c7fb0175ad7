package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/poligraft/internal/api"
	"github.com/sells-group/poligraft/internal/monitoring"
	"github.com/sells-group/poligraft/internal/queue"
	"github.com/sells-group/poligraft/internal/store"
)

var servePort int

// requeueLimit bounds how many unprocessed Results are re-enqueued on start.
const requeueLimit = 1000

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		env := initPipeline(st)
		g, gctx := errgroup.WithContext(ctx)

		var (
			dispatcher queue.Dispatcher
			depth      monitoring.QueueDepth
		)
		switch cfg.Queue.Driver {
		case "temporal":
			tc, err := queue.DialTemporal(queue.TemporalConfig{
				HostPort:  cfg.Queue.TemporalHost,
				Namespace: cfg.Queue.TemporalNamespace,
				TaskQueue: cfg.Queue.TemporalTaskQueue,
			})
			if err != nil {
				return err
			}
			defer tc.Close()
			dispatcher = queue.NewTemporalDispatcher(tc, cfg.Queue.TemporalTaskQueue)
		default:
			mq := queue.NewMemoryQueue(env.Processor, cfg.Queue.Workers, cfg.Queue.Buffer)
			g.Go(func() error { return mq.Run(gctx) })
			dispatcher = mq
			depth = mq
		}

		g.Go(func() error {
			requeuePending(gctx, st, dispatcher)
			return nil
		})

		checker := monitoring.NewChecker(monitoring.NewCollector(st, depth), 5*time.Minute, 24)
		g.Go(func() error {
			checker.Run(gctx)
			return nil
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.NewServer(env.Creator, st, dispatcher).Routes(cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port), zap.String("queue", cfg.Queue.Driver))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		return g.Wait()
	},
}

// requeuePending enqueues Results left unprocessed by a previous run.
func requeuePending(ctx context.Context, st store.Store, d queue.Dispatcher) int {
	unprocessed := false
	pending, err := st.ListResults(ctx, store.ResultFilter{Processed: &unprocessed, Limit: requeueLimit})
	if err != nil {
		zap.L().Error("requeue: list unprocessed results", zap.Error(err))
		return 0
	}

	n := 0
	for _, r := range pending {
		if err := d.Enqueue(ctx, r.ID); err != nil {
			zap.L().Warn("requeue: enqueue failed", zap.String("result_id", r.ID), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		n++
	}
	if n > 0 {
		zap.L().Info("requeue: unprocessed results enqueued", zap.Int("count", n))
	}
	return n
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
