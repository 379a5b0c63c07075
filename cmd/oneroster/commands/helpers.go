package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/fivetwenty-io/oneroster/pkg/oneroster"
	"github.com/fivetwenty-io/oneroster/pkg/orclient"
	"github.com/getsentry/sentry-go"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))

	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q (use table, json or yaml)", constants.ErrInvalidOutputFormat, format)
	}
}

// render writes data as JSON or YAML, or as a table of header and rows.
func render(w io.Writer, data interface{}, header []string, rows [][]string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.IndentSize))

		err = encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(constants.IndentSize)

		err = encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode as YAML: %w", err)
		}

		return encoder.Close()
	default:
		table := tablewriter.NewWriter(w)
		table.Header(header)

		for _, row := range rows {
			_ = table.Append(row)
		}

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// display formats an optional value for a table cell.
func display(value *string) string {
	if value == nil || *value == "" {
		return constants.NotAvailable
	}

	return *value
}

func displayBool(value *bool) string {
	if value == nil {
		return constants.NotAvailable
	}

	return strconv.FormatBool(*value)
}

func displayList(values []string) string {
	if len(values) == 0 {
		return constants.NotAvailable
	}

	return strings.Join(values, ", ")
}

// NewLogger returns the CLI logger: a zerolog console writer on stderr at
// debug level with --verbose and warn otherwise.
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	noColor := true
	if file, ok := w.(*os.File); ok {
		noColor = !term.IsTerminal(int(file.Fd()))
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// buildConfig assembles a oneroster.Config from flags, environment and the
// config file.
func buildConfig(logger oneroster.Logger) (*oneroster.Config, error) {
	cfg := loadConfig()

	if cfg.APIURL == "" {
		return nil, constants.ErrNoAPIURLConfigured
	}

	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, constants.ErrNoCredentials
	}

	return &oneroster.Config{
		AppID:          cfg.AppID,
		AppSecret:      cfg.AppSecret,
		APIURL:         cfg.APIURL,
		AuthScheme:     cfg.AuthScheme,
		TokenURL:       cfg.TokenURL,
		UsernameSource: cfg.UsernameSource,
		RetryAttempts:  cfg.Retries,
		Debug:          viper.GetBool("verbose"),
		Logger:         logger,
	}, nil
}

// buildErrorSink creates the sinks selected by --sentry-dsn and --nats-url.
// The returned function flushes and closes them.
func buildErrorSink(cfg *CLIConfig, logger oneroster.Logger) (oneroster.ErrorSink, func(), error) {
	var (
		sinks   []oneroster.ErrorSink
		closers []func()
	)

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: constants.ClientName + "@" + constants.ClientVersion,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("initializing sentry: %w", err)
		}

		sinks = append(sinks, oneroster.NewSentrySink(nil))
		closers = append(closers, func() { sentry.Flush(constants.SentryFlushTimeout) })
	}

	if cfg.NATSURL != "" {
		subject := cfg.NATSSubject
		if subject == "" {
			subject = constants.DefaultNATSSubject
		}

		sink, closer, err := oneroster.ConnectNATSSink(cfg.NATSURL, subject, logger)
		if err != nil {
			return nil, nil, err
		}

		sinks = append(sinks, sink)
		closers = append(closers, closer)
	}

	closeAll := func() {
		for _, closer := range closers {
			closer()
		}
	}

	switch len(sinks) {
	case 0:
		return nil, closeAll, nil
	case 1:
		return sinks[0], closeAll, nil
	default:
		return oneroster.SinkFunc(func(message string) {
			for _, sink := range sinks {
				sink.CaptureMessage(message)
			}
		}), closeAll, nil
	}
}

// CreateClient builds a client from the CLI configuration. The returned
// function releases the error sinks and must be called when done.
func CreateClient() (oneroster.Client, func(), error) {
	logger := oneroster.NewZerologLogger(NewLogger(os.Stderr, viper.GetBool("verbose")))

	cfg, err := buildConfig(logger)
	if err != nil {
		return nil, nil, err
	}

	sink, closeSinks, err := buildErrorSink(loadConfig(), logger)
	if err != nil {
		return nil, nil, err
	}

	cfg.ErrorSink = sink

	client, err := orclient.New(cfg)
	if err != nil {
		closeSinks()

		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, closeSinks, nil
}
