package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/sells-group/poligraft/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process results from the Temporal task queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("worker"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		env := initPipeline(st)

		tc, err := queue.DialTemporal(queue.TemporalConfig{
			HostPort:  cfg.Queue.TemporalHost,
			Namespace: cfg.Queue.TemporalNamespace,
			TaskQueue: cfg.Queue.TemporalTaskQueue,
		})
		if err != nil {
			return err
		}
		defer tc.Close()

		w := queue.NewTemporalWorker(tc, cfg.Queue.TemporalTaskQueue, env.Processor, cfg.Queue.Workers)
		zap.L().Info("starting worker",
			zap.String("task_queue", cfg.Queue.TemporalTaskQueue),
			zap.Int("workers", cfg.Queue.Workers),
		)
		return eris.Wrap(w.Run(worker.InterruptCh()), "worker run")
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
