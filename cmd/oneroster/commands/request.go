package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/oneroster/pkg/oneroster"
	"github.com/spf13/cobra"
)

// ErrInvalidParam is returned for a --param without "=".
var ErrInvalidParam = errors.New("invalid parameter, expected key=value")

// NewRequestCommand creates the request command, a raw GET against the API.
func NewRequestCommand() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "request PATH",
		Short: "Perform a raw GET request",
		Long: `Perform a GET request against a path relative to the API URL and print
the response body. Pagination defaults (limit, offset) are added unless set
with --param.`,
		Example: `  oneroster request /academicSessions --param filter="schoolYear='2025'"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}

			client, closeClient, err := CreateClient()
			if err != nil {
				return err
			}
			defer closeClient()

			path := "/" + strings.TrimLeft(args[0], "/")

			resp, err := client.Connection().Execute(cmd.Context(), path, oneroster.MethodGet, query)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), resp.Body())

			if !resp.Success() {
				return oneroster.NewAPIError(oneroster.MethodGet, resp)
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")

	return cmd
}

func parseParams(pairs []string) (oneroster.Params, error) {
	params := oneroster.Params{}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParam, pair)
		}

		params[key] = value
	}

	return params, nil
}
