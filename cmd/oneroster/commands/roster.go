package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// RosterSummary counts the records of each collection.
type RosterSummary struct {
	Schools     int `json:"schools"     yaml:"schools"`
	Students    int `json:"students"    yaml:"students"`
	Teachers    int `json:"teachers"    yaml:"teachers"`
	Classes     int `json:"classes"     yaml:"classes"`
	Enrollments int `json:"enrollments" yaml:"enrollments"`
}

// NewRosterCommand creates the roster command.
func NewRosterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "Summarize the full roster",
		Long:  "Fetch schools, students, teachers, classes and enrollments concurrently and print their counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeClient, err := CreateClient()
			if err != nil {
				return err
			}
			defer closeClient()

			roster, err := client.FetchRoster(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch roster: %w", err)
			}

			summary := RosterSummary{
				Schools:     len(roster.Schools),
				Students:    len(roster.Students),
				Teachers:    len(roster.Teachers),
				Classes:     len(roster.Classes),
				Enrollments: len(roster.Enrollments),
			}

			rows := [][]string{
				{"Schools", strconv.Itoa(summary.Schools)},
				{"Students", strconv.Itoa(summary.Students)},
				{"Teachers", strconv.Itoa(summary.Teachers)},
				{"Classes", strconv.Itoa(summary.Classes)},
				{"Enrollments", strconv.Itoa(summary.Enrollments)},
			}

			return render(cmd.OutOrStdout(), summary, []string{"Resource", "Count"}, rows)
		},
	}
}
