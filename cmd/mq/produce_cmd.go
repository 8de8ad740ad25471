package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iota-uz/iota-mq/pkg/transport"
	"github.com/iota-uz/iota-mq/pkg/transport/dbal"
)

type produceOutput struct {
	Command  string `json:"command"`
	ID       int64  `json:"id"`
	Queue    string `json:"queue"`
	Priority int    `json:"priority"`
}

// messageSpec is one entry of a --file batch.
type messageSpec struct {
	Queue      string           `yaml:"queue"`
	Body       string           `yaml:"body"`
	Priority   int              `yaml:"priority"`
	Properties transport.Values `yaml:"properties"`
	Headers    transport.Values `yaml:"headers"`
}

func newProduceCmd(g *globalFlags) *cobra.Command {
	var (
		queue      string
		body       string
		priority   int
		properties []string
		headers    []string
		file       string
	)

	cmd := &cobra.Command{
		Use:   "produce",
		Short: "Send a message, or a YAML batch of messages, to a queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var specs []messageSpec
			if file != "" {
				var err error
				if specs, err = readMessageSpecs(file, queue); err != nil {
					return err
				}
			} else {
				props, err := parseValues("property", properties)
				if err != nil {
					return err
				}
				hdrs, err := parseValues("header", headers)
				if err != nil {
					return err
				}
				specs = []messageSpec{{Queue: queue, Body: body, Priority: priority, Properties: props, Headers: hdrs}}
			}
			for i, s := range specs {
				if s.Queue == "" {
					return withCode(exitUsage, fmt.Errorf("message %d: queue is required (--queue or queue: in --file)", i))
				}
			}

			conf, err := loadConfig(g)
			if err != nil {
				return err
			}
			defer conf.Unload()

			conn, err := openConnection(conf)
			if err != nil {
				return err
			}
			defer conn.Close()

			out, err := produce(cmd.Context(), newSession(conf, conn), specs)
			if err != nil {
				return err
			}
			if file == "" {
				return writeJSON(out[0])
			}
			return writeJSON(out)
		},
	}

	cmd.Flags().StringVar(&queue, "queue", "", "Queue name (default queue for --file entries)")
	cmd.Flags().StringVar(&body, "body", "", "Message body")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority, lower values are received first")
	cmd.Flags().StringArrayVar(&properties, "property", nil, "Message property key=value (repeatable)")
	cmd.Flags().StringArrayVar(&headers, "header", nil, "Message header key=value (repeatable)")
	cmd.Flags().StringVar(&file, "file", "", "YAML file with a list of messages")
	return cmd
}

func readMessageSpecs(path, defaultQueue string) ([]messageSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, withCode(exitUsage, errors.Wrap(err, "read --file"))
	}
	var specs []messageSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, withCode(exitUsage, errors.Wrap(err, "parse --file"))
	}
	for i := range specs {
		if specs[i].Queue == "" {
			specs[i].Queue = defaultQueue
		}
	}
	return specs, nil
}

func produce(ctx context.Context, session *dbal.Session, specs []messageSpec) ([]produceOutput, error) {
	producer := session.NewProducer()
	out := make([]produceOutput, 0, len(specs))
	for _, s := range specs {
		msg := dbal.NewMessage(s.Body, s.Properties, s.Headers)
		msg.SetPriority(s.Priority)
		if err := producer.Send(ctx, transport.NewQueue(s.Queue), msg); err != nil {
			return out, withCode(exitStore, errors.Wrap(err, "produce"))
		}
		out = append(out, produceOutput{
			Command:  "produce",
			ID:       msg.ID(),
			Queue:    s.Queue,
			Priority: s.Priority,
		})
	}
	return out, nil
}
