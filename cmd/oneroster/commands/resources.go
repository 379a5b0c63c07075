package commands

import (
	"fmt"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/fivetwenty-io/oneroster/pkg/oneroster"
	"github.com/spf13/cobra"
)

// record is implemented by every mapped roster record.
type record interface {
	ToMap() map[string]interface{}
}

// resourceCommand describes the list/get commands of one collection.
type resourceCommand[T record] struct {
	use      string
	aliases  []string
	singular string
	resource func(oneroster.Client) oneroster.ResourceClient[T]
	header   []string
	row      func(T) []string
}

// ListOptions holds the options for listing a collection.
type ListOptions struct {
	Limit  int
	Offset int
	All    bool
	Filter string
	Sort   string
}

func newResourceCommand[T record](rc resourceCommand[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     rc.use,
		Aliases: rc.aliases,
		Short:   "Read " + rc.use,
		Long:    fmt.Sprintf("List %s or get a single %s by sourcedId", rc.use, rc.singular),
	}

	cmd.AddCommand(newResourceListCommand(rc))
	cmd.AddCommand(newResourceGetCommand(rc))

	return cmd
}

func newResourceListCommand[T record](rc resourceCommand[T]) *cobra.Command {
	var opts ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + rc.use,
		Long:  fmt.Sprintf("List %s one page at a time, or every page with --all", rc.use),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeClient, err := CreateClient()
			if err != nil {
				return err
			}
			defer closeClient()

			listOpts := &oneroster.ListOptions{
				Limit:  opts.Limit,
				Offset: opts.Offset,
				Filter: opts.Filter,
				Sort:   opts.Sort,
			}

			var (
				items []T
				page  *oneroster.Page[T]
			)

			if opts.All {
				items, err = rc.resource(client).All(cmd.Context(), listOpts)
			} else {
				page, err = rc.resource(client).List(cmd.Context(), listOpts)
				if page != nil {
					items = page.Items
				}
			}

			if err != nil {
				return fmt.Errorf("failed to list %s: %w", rc.use, err)
			}

			return outputRecords(cmd, rc, items, page)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", oneroster.PageLimit, "records per page")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "index of the first record")
	cmd.Flags().BoolVar(&opts.All, "all", false, "fetch all pages")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter expression, e.g. \"status='active'\"")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "field to sort by")

	return cmd
}

func newResourceGetCommand[T record](rc resourceCommand[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get SOURCED_ID",
		Short: "Get " + rc.singular + " details",
		Long:  fmt.Sprintf("Display a single %s by sourcedId", rc.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeClient, err := CreateClient()
			if err != nil {
				return err
			}
			defer closeClient()

			item, err := rc.resource(client).Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", rc.singular, err)
			}

			return render(cmd.OutOrStdout(), (*item).ToMap(), rc.header, [][]string{rc.row(*item)})
		},
	}
}

func outputRecords[T record](cmd *cobra.Command, rc resourceCommand[T], items []T, page *oneroster.Page[T]) error {
	out := cmd.OutOrStdout()

	format, err := outputFormat()
	if err != nil {
		return err
	}

	maps := make([]map[string]interface{}, 0, len(items))
	rows := make([][]string, 0, len(items))

	for _, item := range items {
		maps = append(maps, item.ToMap())
		rows = append(rows, rc.row(item))
	}

	if format == constants.FormatTable && len(items) == 0 {
		_, _ = fmt.Fprintf(out, "No %s found\n", rc.use)

		return nil
	}

	err = render(out, maps, rc.header, rows)
	if err != nil {
		return err
	}

	if format == constants.FormatTable && page != nil && page.HasMore() {
		_, _ = fmt.Fprintf(out, "\nShowing %d %s from offset %d. Use --all to fetch all pages.\n",
			len(items), rc.use, page.Offset)
	}

	return nil
}

// NewSchoolsCommand creates the schools command group.
func NewSchoolsCommand() *cobra.Command {
	return newResourceCommand(resourceCommand[oneroster.School]{
		use:      "schools",
		aliases:  []string{"school"},
		singular: "school",
		resource: func(c oneroster.Client) oneroster.ResourceClient[oneroster.School] { return c.Schools() },
		header:   []string{"UID", "Name", "Number", "Tenant"},
		row: func(s oneroster.School) []string {
			return []string{display(s.UID), display(s.Name), display(s.Number), display(s.TenantID)}
		},
	})
}

// NewTenantsCommand creates the tenants command group.
func NewTenantsCommand() *cobra.Command {
	return newResourceCommand(resourceCommand[oneroster.Tenant]{
		use:      "tenants",
		aliases:  []string{"tenant", "orgs"},
		singular: "tenant",
		resource: func(c oneroster.Client) oneroster.ResourceClient[oneroster.Tenant] { return c.Tenants() },
		header:   []string{"UID", "Name", "Number", "Parent"},
		row: func(t oneroster.Tenant) []string {
			return []string{display(t.UID), display(t.Name), display(t.Number), display(t.TenantID)}
		},
	})
}

// NewStudentsCommand creates the students command group.
func NewStudentsCommand() *cobra.Command {
	return newResourceCommand(resourceCommand[oneroster.Student]{
		use:      "students",
		aliases:  []string{"student"},
		singular: "student",
		resource: func(c oneroster.Client) oneroster.ResourceClient[oneroster.Student] { return c.Students() },
		header:   []string{"UID", "First Name", "Last Name", "Username", "Email", "Grades", "School"},
		row: func(s oneroster.Student) []string {
			return []string{
				display(s.UID), display(s.FirstName), display(s.LastName), display(s.Username),
				display(s.Email), displayList(s.Grades), display(s.SchoolID),
			}
		},
	})
}

// NewTeachersCommand creates the teachers command group.
func NewTeachersCommand() *cobra.Command {
	return newResourceCommand(resourceCommand[oneroster.Teacher]{
		use:      "teachers",
		aliases:  []string{"teacher"},
		singular: "teacher",
		resource: func(c oneroster.Client) oneroster.ResourceClient[oneroster.Teacher] { return c.Teachers() },
		header:   []string{"UID", "First Name", "Last Name", "Username", "Email", "School"},
		row: func(t oneroster.Teacher) []string {
			return []string{
				display(t.UID), display(t.FirstName), display(t.LastName), display(t.Username),
				display(t.Email), display(t.SchoolID),
			}
		},
	})
}

// NewClassesCommand creates the classes command group.
func NewClassesCommand() *cobra.Command {
	return newResourceCommand(resourceCommand[oneroster.Class]{
		use:      "classes",
		aliases:  []string{"class"},
		singular: "class",
		resource: func(c oneroster.Client) oneroster.ResourceClient[oneroster.Class] { return c.Classes() },
		header:   []string{"UID", "Title", "Code", "School", "Terms"},
		row: func(c oneroster.Class) []string {
			return []string{display(c.UID), display(c.Title), display(c.ClassCode), display(c.SchoolID), displayList(c.TermIDs)}
		},
	})
}

// NewEnrollmentsCommand creates the enrollments command group.
func NewEnrollmentsCommand() *cobra.Command {
	return newResourceCommand(resourceCommand[oneroster.Enrollment]{
		use:      "enrollments",
		aliases:  []string{"enrollment"},
		singular: "enrollment",
		resource: func(c oneroster.Client) oneroster.ResourceClient[oneroster.Enrollment] { return c.Enrollments() },
		header:   []string{"UID", "Role", "User", "Class", "School", "Primary"},
		row: func(e oneroster.Enrollment) []string {
			return []string{
				display(e.UID), display(e.Role), display(e.UserID), display(e.ClassID),
				display(e.SchoolID), displayBool(e.Primary),
			}
		},
	})
}
