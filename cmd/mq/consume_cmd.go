package main

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/iota-mq/pkg/configuration"
	"github.com/iota-uz/iota-mq/pkg/consumption"
	"github.com/iota-uz/iota-mq/pkg/consumption/extension"
	"github.com/iota-uz/iota-mq/pkg/logging"
	"github.com/iota-uz/iota-mq/pkg/metrics"
	"github.com/iota-uz/iota-mq/pkg/transport"
)

type consumeFlags struct {
	queues         []string
	timeLimit      time.Duration
	messageLimit   int64
	memoryLimitMB  uint64
	receiveTimeout time.Duration
	requeue        bool
}

func newConsumeCmd(g *globalFlags) *cobra.Command {
	var f consumeFlags

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Consume messages, logging and acknowledging each one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(g)
			if err != nil {
				return err
			}
			defer conf.Unload()

			if !cmd.Flags().Changed("time-limit") {
				f.timeLimit = conf.Queue.TimeLimit
			}
			if !cmd.Flags().Changed("message-limit") {
				f.messageLimit = conf.Queue.MessageLimit
			}
			if !cmd.Flags().Changed("memory-limit") {
				f.memoryLimitMB = conf.Queue.MemoryLimitMB
			}
			if !cmd.Flags().Changed("receive-timeout") {
				f.receiveTimeout = conf.Queue.ReceiveTimeout
			}
			return runConsume(cmd.Context(), conf, f)
		},
	}

	cmd.Flags().StringSliceVar(&f.queues, "queue", nil, "Queue to consume (repeatable, required)")
	cmd.Flags().DurationVar(&f.timeLimit, "time-limit", 0, "Stop after this long (0 = no limit)")
	cmd.Flags().Int64Var(&f.messageLimit, "message-limit", 0, "Stop after this many messages (0 = no limit)")
	cmd.Flags().Uint64Var(&f.memoryLimitMB, "memory-limit", 0, "Stop once the heap exceeds this many MB (0 = no limit)")
	cmd.Flags().DurationVar(&f.receiveTimeout, "receive-timeout", time.Second, "Receive budget per cycle")
	cmd.Flags().BoolVar(&f.requeue, "requeue", false, "Requeue messages instead of acknowledging them")
	_ = cmd.MarkFlagRequired("queue")
	return cmd
}

func runConsume(ctx context.Context, conf *configuration.Configuration, f consumeFlags) error {
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		cleanup := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL, logger)
		defer cleanup()
	}

	conn, err := openConnection(conf)
	if err != nil {
		return err
	}
	defer conn.Close()

	session := newSession(conf, conn)
	entry := logger.WithField("table", conn.TableName())

	qc := consumption.NewQueueConsumer(session, buildExtensions(entry, f), consumption.QueueConsumerOptions{
		ReceiveTimeout: f.receiveTimeout,
		Logger:         entry,
	})
	proc := logProcessor(entry, f.requeue)
	for _, q := range f.queues {
		qc.Bind(q, proc)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if conf.Prometheus.Enabled {
		g.Go(func() error {
			return metrics.Serve(gctx, conf.Prometheus.Addr, metrics.NewPrometheusController(conf.Prometheus.Path), logger)
		})
	}
	g.Go(func() error {
		defer cancel()
		if err := qc.Consume(gctx, nil); err != nil {
			return withCode(exitConsume, errors.Wrap(err, "consume"))
		}
		return nil
	})
	return g.Wait()
}

func buildExtensions(entry *logrus.Entry, f consumeFlags) consumption.Extension {
	exts := []consumption.Extension{
		extension.NewLogger(entry),
		extension.NewSignal(),
		extension.NewMetrics(),
	}
	if f.timeLimit > 0 {
		exts = append(exts, extension.NewLimitConsumptionTime(time.Now().Add(f.timeLimit)))
	}
	if f.messageLimit > 0 {
		exts = append(exts, extension.NewLimitConsumedMessages(f.messageLimit))
	}
	if f.memoryLimitMB > 0 {
		exts = append(exts, extension.NewLimitConsumerMemory(f.memoryLimitMB*1024*1024))
	}
	return consumption.NewChainExtension(exts...)
}

func logProcessor(entry *logrus.Entry, requeue bool) consumption.MessageProcessor {
	status := consumption.StatusAck
	if requeue {
		status = consumption.StatusRequeue
	}
	return consumption.ProcessorFunc(func(ctx context.Context, msg transport.Message, _ transport.Session) (consumption.Status, error) {
		fields := logrus.Fields{
			"priority":    msg.Priority(),
			"redelivered": msg.IsRedelivered(),
			"properties":  msg.Properties(),
			"headers":     msg.Headers(),
		}
		if m, ok := msg.(interface{ ID() int64 }); ok {
			fields["message_id"] = m.ID()
		}
		entry.WithContext(ctx).WithFields(fields).Info(msg.Body())
		return status, nil
	})
}
