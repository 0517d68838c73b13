// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/evgen/internal/sink"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "EVGEN"

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:           "evgen",
		Short:         "Generate synthetic events and send them to a sink",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
	flags.String("sink", sink.TypeConsole, "sink type: "+strings.Join(sink.Types, ", "))
	flags.String("format", "csv", "event format: "+strings.Join(sink.Formats, ", "))
	flags.String("path", "", "output file (file sink) or directory (directory sink)")
	flags.String("mode", "append", "file mode: append or truncate")
	flags.String("extension", ".log", "session file extension (directory sink)")
	flags.String("amqp-url", "", "AMQP broker URL")
	flags.String("amqp-queue", "", "AMQP queue name")
	flags.StringSlice("kafka-brokers", nil, "Kafka broker addresses")
	flags.String("kafka-topic", "", "Kafka topic")
	flags.String("eventhub-connection-string", "", "Event Hubs namespace connection string")
	flags.String("eventhub-name", "", "event hub name")
	flags.String("cloudevents-source", "", "cloudevents source URI")
	flags.String("cloudevents-type", "", "cloudevents type")
	flags.String("cloudevents-encoding", "json", "cloudevents layout: json or text")

	for key, flag := range map[string]string{
		"log-level":                       "log-level",
		"sink.type":                       "sink",
		"sink.format":                     "format",
		"sink.path":                       "path",
		"sink.mode":                       "mode",
		"sink.extension":                  "extension",
		"sink.amqp.url":                   "amqp-url",
		"sink.amqp.queue":                 "amqp-queue",
		"sink.kafka.brokers":              "kafka-brokers",
		"sink.kafka.topic":                "kafka-topic",
		"sink.eventhub.connection-string": "eventhub-connection-string",
		"sink.eventhub.name":              "eventhub-name",
		"sink.cloudevents.source":         "cloudevents-source",
		"sink.cloudevents.type":           "cloudevents-type",
		"sink.cloudevents.encoding":       "cloudevents-encoding",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(newGenerateCmd(v))
	return root
}

// loadConfig reads the optional config file and EVGEN_* environment
// variables, e.g. EVGEN_SINK_EVENTHUB_CONNECTION_STRING.
func loadConfig(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config file %s: %w", configFile, err)
	}
	return nil
}

func newLogger(v *viper.Viper, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "evgen",
		Level:  hclog.LevelFromString(v.GetString("log-level")),
		Output: out,
	})
}

func sinkConfig(v *viper.Viper) (sink.Config, error) {
	var c struct {
		Sink sink.Config `mapstructure:"sink"`
	}
	if err := v.Unmarshal(&c); err != nil {
		return c.Sink, fmt.Errorf("unable to decode sink configuration: %w", err)
	}
	return c.Sink, nil
}
