// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package sink builds the evgen.Writer selected by configuration.
package sink

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/evgen"
	"github.com/hashicorp/evgen/formatters/cloudevents"
	"github.com/hashicorp/evgen/sinks/amqp"
	"github.com/hashicorp/evgen/sinks/eventhub"
	"github.com/hashicorp/evgen/sinks/kafka"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-secure-stdlib/strutil"
)

const (
	TypeConsole   = "console"
	TypeFile      = "file"
	TypeDirectory = "directory"
	TypeAMQP      = "amqp"
	TypeKafka     = "kafka"
	TypeEventHub  = "eventhub"

	// FormatCloudEvents selects the cloudevents formatter.
	FormatCloudEvents = "cloudevents"
)

// Types lists the supported sink types.
var Types = []string{TypeConsole, TypeFile, TypeDirectory, TypeAMQP, TypeKafka, TypeEventHub}

// Formats lists the supported formats.
var Formats = []string{evgen.CSVFormat, evgen.JSONFormat, FormatCloudEvents}

// Config selects and configures one sink.
type Config struct {
	Type   string `mapstructure:"type"`
	Format string `mapstructure:"format"`

	// Path is the file for the file sink and the directory for the directory
	// sink.
	Path      string `mapstructure:"path"`
	Mode      string `mapstructure:"mode"`
	Extension string `mapstructure:"extension"`

	AMQP        AMQPConfig        `mapstructure:"amqp"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	EventHub    EventHubConfig    `mapstructure:"eventhub"`
	CloudEvents CloudEventsConfig `mapstructure:"cloudevents"`
}

type AMQPConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type EventHubConfig struct {
	ConnectionString string `mapstructure:"connection-string"`
	Name             string `mapstructure:"name"`
}

// CloudEventsConfig sets the envelope fields of the cloudevents format.
type CloudEventsConfig struct {
	Source string `mapstructure:"source"`
	Type   string `mapstructure:"type"`

	// Encoding is "json" (one line per event, the default) or "text"
	// (indented).
	Encoding string `mapstructure:"encoding"`
}

// Validate checks the fields required by the selected sink type.
func (c *Config) Validate() error {
	const op = "sink.(Config).Validate"
	if !strutil.StrListContains(Types, c.Type) {
		return fmt.Errorf("%s: unknown sink %q, expected one of %s: %w", op, c.Type, strings.Join(Types, ", "), evgen.ErrConfiguration)
	}
	if c.Format != "" && !strutil.StrListContains(Formats, c.Format) {
		return fmt.Errorf("%s: unknown format %q, expected one of %s: %w", op, c.Format, strings.Join(Formats, ", "), evgen.ErrConfiguration)
	}
	var missing []string
	switch c.Type {
	case TypeFile, TypeDirectory:
		if c.Path == "" {
			missing = append(missing, "path")
		}
	case TypeAMQP:
		if c.AMQP.URL == "" {
			missing = append(missing, "amqp.url")
		}
		if c.AMQP.Queue == "" {
			missing = append(missing, "amqp.queue")
		}
	case TypeKafka:
		if len(c.Kafka.Brokers) == 0 {
			missing = append(missing, "kafka.brokers")
		}
		if c.Kafka.Topic == "" {
			missing = append(missing, "kafka.topic")
		}
	case TypeEventHub:
		if c.EventHub.ConnectionString == "" {
			missing = append(missing, "eventhub.connection-string")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %s sink requires %s: %w", op, c.Type, strings.Join(missing, ", "), evgen.ErrConfiguration)
	}
	return nil
}

// formatter builds the configured Formatter.
func (c *Config) formatter() (evgen.Formatter, error) {
	const op = "sink.(Config).formatter"
	if c.Format != FormatCloudEvents {
		return evgen.NewFormatter(c.Format)
	}
	encoding, err := cloudevents.ParseEncoding(c.CloudEvents.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	source := c.CloudEvents.Source
	if source == "" {
		source = "https://github.com/hashicorp/evgen"
	}
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid cloudevents source: %w: %w", op, evgen.ErrConfiguration, err)
	}
	typ := c.CloudEvents.Type
	if typ == "" {
		typ = "evgen.event"
	}
	return &cloudevents.Formatter{Source: u, Type: typ, Encoding: encoding}, nil
}

// New validates c and returns the Writer it describes.
func New(c Config, logger hclog.Logger) (evgen.Writer, error) {
	const op = "sink.New"
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	f, err := c.formatter()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger = logger.Named(c.Type)

	var w evgen.Writer
	switch c.Type {
	case TypeConsole:
		w, err = evgen.NewConsoleWriter(evgen.WithFormatter(f))
	case TypeFile, TypeDirectory:
		mode, perr := evgen.ParseMode(c.Mode)
		if perr != nil {
			return nil, fmt.Errorf("%s: %w", op, perr)
		}
		opts := []evgen.Option{evgen.WithFormatter(f), evgen.WithMode(mode), evgen.WithLogger(logger)}
		if c.Type == TypeFile {
			w, err = evgen.NewFileWriter(c.Path, opts...)
			break
		}
		if c.Extension != "" {
			opts = append(opts, evgen.WithExtension(c.Extension))
		}
		w, err = evgen.NewDirectoryWriter(c.Path, opts...)
	case TypeAMQP:
		w, err = amqp.New(c.AMQP.URL, c.AMQP.Queue, amqp.WithFormatter(f), amqp.WithLogger(logger))
	case TypeKafka:
		w, err = kafka.New(c.Kafka.Brokers, c.Kafka.Topic, kafka.WithFormatter(f), kafka.WithLogger(logger))
	case TypeEventHub:
		w, err = eventhub.New(c.EventHub.ConnectionString, c.EventHub.Name, eventhub.WithFormatter(f), eventhub.WithLogger(logger))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("sink ready")
	return w, nil
}
