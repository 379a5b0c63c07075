package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// CLIConfig represents the CLI configuration.
type CLIConfig struct {
	APIURL         string `json:"api_url"                   yaml:"api_url"`
	AppID          string `json:"app_id"                    yaml:"app_id"`
	AppSecret      string `json:"app_secret"                yaml:"app_secret"`
	AuthScheme     string `json:"auth_scheme,omitempty"     yaml:"auth_scheme,omitempty"`
	TokenURL       string `json:"token_url,omitempty"       yaml:"token_url,omitempty"`
	UsernameSource string `json:"username_source,omitempty" yaml:"username_source,omitempty"`
	Output         string `json:"output,omitempty"          yaml:"output,omitempty"`
	Retries        int    `json:"retries,omitempty"         yaml:"retries,omitempty"`
	SentryDSN      string `json:"sentry_dsn,omitempty"      yaml:"sentry_dsn,omitempty"`
	NATSURL        string `json:"nats_url,omitempty"        yaml:"nats_url,omitempty"`
	NATSSubject    string `json:"nats_subject,omitempty"    yaml:"nats_subject,omitempty"`
}

// configSetters maps config keys to setters used by `config set`.
var configSetters = map[string]func(*CLIConfig, string) error{
	"api_url":         func(c *CLIConfig, v string) error { c.APIURL = v; return nil },
	"app_id":          func(c *CLIConfig, v string) error { c.AppID = v; return nil },
	"app_secret":      func(c *CLIConfig, v string) error { c.AppSecret = v; return nil },
	"token_url":       func(c *CLIConfig, v string) error { c.TokenURL = v; return nil },
	"username_source": func(c *CLIConfig, v string) error { c.UsernameSource = v; return nil },
	"sentry_dsn":      func(c *CLIConfig, v string) error { c.SentryDSN = v; return nil },
	"nats_url":        func(c *CLIConfig, v string) error { c.NATSURL = v; return nil },
	"nats_subject":    func(c *CLIConfig, v string) error { c.NATSSubject = v; return nil },
	"auth_scheme": func(c *CLIConfig, v string) error {
		if v != constants.AuthSchemeOAuth1 && v != constants.AuthSchemeOAuth2 {
			return fmt.Errorf("%w: %q", constants.ErrUnsupportedAuthScheme, v)
		}

		c.AuthScheme = v

		return nil
	},
	"output": func(c *CLIConfig, v string) error {
		switch v {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			c.Output = v

			return nil
		default:
			return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, v)
		}
	},
	"retries": func(c *CLIConfig, v string) error {
		retries, err := strconv.Atoi(v)
		if err != nil || retries < 0 {
			return fmt.Errorf("%w: %q", constants.ErrInvalidRetries, v)
		}

		c.Retries = retries

		return nil
	},
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show, set and initialize the roster API connection settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with the app secret masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig().redacted()

			rows := [][]string{
				{"API URL", config.APIURL},
				{"App ID", config.AppID},
				{"App Secret", config.AppSecret},
				{"Auth Scheme", config.AuthScheme},
				{"Token URL", config.TokenURL},
				{"Username Source", config.UsernameSource},
				{"Output", config.Output},
				{"Retries", strconv.Itoa(config.Retries)},
				{"Sentry DSN", config.SentryDSN},
				{"NATS URL", config.NATSURL},
				{"NATS Subject", config.NATSSubject},
				{"Config File", configFilePath()},
			}

			return render(cmd.OutOrStdout(), config, []string{"Property", "Value"}, rows)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	keys := make([]string, 0, len(configSetters))
	for key := range configSetters {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(keys, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ReplaceAll(args[0], "-", "_")

			setter, ok := configSetters[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, args[0])
			}

			config := loadFileConfig()

			err := setter(config, args[1])
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long:  "Prompt for the API URL and credentials and write them to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadFileConfig()
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			var err error

			config.APIURL, err = prompt(reader, out, "API URL", config.APIURL)
			if err != nil {
				return err
			}

			config.AppID, err = prompt(reader, out, "App ID", config.AppID)
			if err != nil {
				return err
			}

			config.AppSecret, err = promptSecret(out)
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "Configuration written to %s\n", configFilePath())

			return nil
		},
	}
}

func prompt(reader *bufio.Reader, out io.Writer, label, current string) (string, error) {
	if current != "" {
		_, _ = fmt.Fprintf(out, "%s [%s]: ", label, current)
	} else {
		_, _ = fmt.Fprintf(out, "%s: ", label)
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}

	return line, nil
}

func promptSecret(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", constants.ErrTerminalRequired
	}

	_, _ = fmt.Fprint(out, "App Secret: ")

	secret, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read app secret: %w", err)
	}

	_, _ = fmt.Fprintln(out)

	return string(secret), nil
}

// loadConfig returns the effective configuration: flags, then environment,
// then the config file.
func loadConfig() *CLIConfig {
	return &CLIConfig{
		APIURL:         viper.GetString("api_url"),
		AppID:          viper.GetString("app_id"),
		AppSecret:      viper.GetString("app_secret"),
		AuthScheme:     viper.GetString("auth_scheme"),
		TokenURL:       viper.GetString("token_url"),
		UsernameSource: viper.GetString("username_source"),
		Output:         viper.GetString("output"),
		Retries:        viper.GetInt("retries"),
		SentryDSN:      viper.GetString("sentry_dsn"),
		NATSURL:        viper.GetString("nats_url"),
		NATSSubject:    viper.GetString("nats_subject"),
	}
}

// loadFileConfig reads only the config file, so that `config set` does not
// persist values that came from flags or the environment.
func loadFileConfig() *CLIConfig {
	config := &CLIConfig{}

	// configFilePath is built from the user's home dir or the --config flag.
	// #nosec G304
	data, err := os.ReadFile(configFilePath())
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

func saveConfig(config *CLIConfig) error {
	path := configFilePath()

	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func configFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}

	if path := viper.GetString("config"); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(constants.ConfigDirName, constants.ConfigFileName)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName)
}

func (c *CLIConfig) redacted() *CLIConfig {
	clone := *c
	if clone.AppSecret != "" {
		clone.AppSecret = constants.MaskedSecret
	}

	return &clone
}
