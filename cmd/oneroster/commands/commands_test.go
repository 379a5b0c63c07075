package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/fivetwenty-io/oneroster/pkg/oneroster"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// useServer points the CLI configuration at handler.
func useServer(t *testing.T, handler http.HandlerFunc, output string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("api_url", server.URL)
	viper.Set("app_id", "key")
	viper.Set("app_secret", "secret")
	viper.Set("output", output)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func TestResourceCommands(t *testing.T) {
	for _, cmd := range []*cobra.Command{
		NewSchoolsCommand(),
		NewTenantsCommand(),
		NewStudentsCommand(),
		NewTeachersCommand(),
		NewClassesCommand(),
		NewEnrollmentsCommand(),
	} {
		t.Run(cmd.Use, func(t *testing.T) {
			assert.NotEmpty(t, cmd.Aliases)

			list := findSubcommand(cmd, "list")
			require.NotNil(t, list)

			for _, flag := range []string{"limit", "offset", "all", "filter", "sort"} {
				assert.NotNil(t, list.Flags().Lookup(flag), "flag %s should exist", flag)
			}

			get := findSubcommand(cmd, "get")
			require.NotNil(t, get)
			assert.Equal(t, "get SOURCED_ID", get.Use)
			assert.NotNil(t, get.Args)
		})
	}
}

func TestStudentsList(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/students", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "status='active'", r.URL.Query().Get("filter"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":[
			{"sourcedId":"u1","givenName":"Jane","email":"jane@example.com"},
			{"sourcedId":"u2","givenName":"John"}
		]}`))
	}, constants.FormatJSON)

	out, err := execute(t, NewStudentsCommand(), "list", "--limit", "2", "--filter", "status='active'")
	require.NoError(t, err)

	var students []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &students))
	require.Len(t, students, 2)
	assert.Equal(t, "jane@example.com", students[0]["username"])
	assert.Equal(t, "u2", students[1]["username"])
	assert.Contains(t, students[1], "email")
	assert.Nil(t, students[1]["email"])
}

func TestSchoolsListTable(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Total-Count", "10")
		_, _ = w.Write([]byte(`{"orgs":[{"sourcedId":"s1","name":"Lincoln High"}]}`))
	}, constants.FormatTable)

	out, err := execute(t, NewSchoolsCommand(), "list", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Lincoln High")
	assert.Contains(t, out, constants.NotAvailable)
	assert.Contains(t, out, "Use --all to fetch all pages.")
}

func TestEnrollmentsGet(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enrollments/e1" {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"enrollment":{"sourcedId":"e1","role":"student","primary":false}}`))
	}, constants.FormatYAML)

	out, err := execute(t, NewEnrollmentsCommand(), "get", "e1")
	require.NoError(t, err)

	var enrollment map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &enrollment))
	assert.Equal(t, "student", enrollment["role"])
	assert.Equal(t, false, enrollment["primary"])

	_, err = execute(t, NewEnrollmentsCommand(), "get", "missing")
	require.Error(t, err)
	assert.True(t, oneroster.IsNotFound(err))
}

func TestRequestCommand(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/academicSessions":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"academicSessions":[]}`))
		case "/gone":
			w.WriteHeader(http.StatusGatewayTimeout)
		default:
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("denied"))
		}
	}, constants.FormatTable)

	out, err := execute(t, NewRequestCommand(), "academicSessions", "--param", "limit=5")
	require.NoError(t, err)
	assert.Contains(t, out, `{"academicSessions":[]}`)

	out, err = execute(t, NewRequestCommand(), "/private")
	require.Error(t, err)
	assert.True(t, oneroster.IsForbidden(err))
	assert.Contains(t, out, "denied")

	_, err = execute(t, NewRequestCommand(), "/gone")
	assert.True(t, oneroster.IsGatewayTimeout(err))

	_, err = execute(t, NewRequestCommand(), "/x", "--param", "novalue")
	require.ErrorIs(t, err, ErrInvalidParam)
}

func TestRosterCommand(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/schools":
			_, _ = w.Write([]byte(`{"orgs":[{"sourcedId":"s1"}]}`))
		case "/students":
			_, _ = w.Write([]byte(`{"users":[{"sourcedId":"u1"},{"sourcedId":"u2"}]}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}, constants.FormatJSON)

	out, err := execute(t, NewRosterCommand())
	require.NoError(t, err)

	var summary RosterSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, RosterSummary{Schools: 1, Students: 2}, summary)
}

func TestCreateClient_MissingConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, _, err := CreateClient()
	require.ErrorIs(t, err, constants.ErrNoAPIURLConfigured)

	viper.Set("api_url", "https://example.oneroster.com")

	_, _, err = CreateClient()
	require.ErrorIs(t, err, constants.ErrNoCredentials)
}

func TestConfigCommands(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(path)
	viper.Set("output", constants.FormatJSON)

	cmd := NewConfigCommand()

	_, err := execute(t, cmd, "set", "api-url", "https://example.oneroster.com")
	require.NoError(t, err)

	_, err = execute(t, cmd, "set", "app_secret", "secret")
	require.NoError(t, err)

	_, err = execute(t, cmd, "set", "retries", "-1")
	require.ErrorIs(t, err, constants.ErrInvalidRetries)

	_, err = execute(t, cmd, "set", "auth_scheme", "basic")
	require.ErrorIs(t, err, constants.ErrUnsupportedAuthScheme)

	_, err = execute(t, cmd, "set", "colour", "red")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var saved CLIConfig
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "https://example.oneroster.com", saved.APIURL)
	assert.Equal(t, "secret", saved.AppSecret)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	viper.Set("app_secret", "secret")

	out, err := execute(t, NewConfigCommand(), "show")
	require.NoError(t, err)
	assert.NotContains(t, out, `"secret"`)
	assert.Contains(t, out, constants.MaskedSecret)
}

func TestVersionCommand(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("output", constants.FormatJSON)

	out, err := execute(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"))
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "oneroster-go/0.4.0", info.Library)
}

func TestOutputFormat(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	format, err := outputFormat()
	require.NoError(t, err)
	assert.Equal(t, constants.FormatTable, format)

	viper.Set("output", "xml")

	_, err = outputFormat()
	require.ErrorIs(t, err, constants.ErrInvalidOutputFormat)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"filter=role='student'", "limit=10"})
	require.NoError(t, err)
	assert.Equal(t, oneroster.Params{"filter": "role='student'", "limit": "10"}, params)

	_, err = parseParams([]string{"=x"})
	require.ErrorIs(t, err, ErrInvalidParam)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("verbose emits transport debug lines", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger := oneroster.NewZerologLogger(NewLogger(&buf, true))
		logger.Debug("HTTP Request", map[string]interface{}{"path": "/students"})

		assert.Contains(t, buf.String(), "HTTP Request")
		assert.Contains(t, buf.String(), "/students")
	})

	t.Run("quiet drops debug and info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger := oneroster.NewZerologLogger(NewLogger(&buf, false))
		logger.Debug("HTTP Request", nil)
		logger.Info("fetching", nil)
		logger.Warn("slow provider", nil)

		assert.NotContains(t, buf.String(), "HTTP Request")
		assert.NotContains(t, buf.String(), "fetching")
		assert.Contains(t, buf.String(), "slow provider")
	})
}
