package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/serenespa/admin-console/internal/catalog"
	"github.com/spf13/cobra"
)

func newServicesCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Inspect and manage the service catalog",
	}
	cmd.AddCommand(newServicesListCmd(o), newServicesReactivateCmd(o))
	return cmd
}

func newServicesListCmd(o *options) *cobra.Command {
	var inactive bool
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active (or inactive) services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(o.cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.signIn(ctx, o.email, o.password); err != nil {
				return err
			}
			list := a.catalog.ListActive
			if inactive {
				list = a.catalog.ListInactive
			}
			services, err := list(ctx)
			if err != nil {
				return err
			}
			return printServices(cmd.OutOrStdout(), catalog.Filter(services, query))
		},
	}
	cmd.Flags().BoolVar(&inactive, "inactive", false, "List inactive services")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only services whose name or description contains this")
	return cmd
}

func newServicesReactivateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reactivate <sid>",
		Short: "Reactivate an inactive service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || sid <= 0 {
				return fmt.Errorf("invalid sid %q", args[0])
			}
			a, err := newApp(o.cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.signIn(ctx, o.email, o.password); err != nil {
				return err
			}
			if err := a.catalog.Reactivate(ctx, sid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "service %d reactivated\n", sid)
			return nil
		},
	}
}

func printServices(w io.Writer, services []catalog.Service) error {
	if len(services) == 0 {
		_, err := fmt.Fprintln(w, "No services found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SID\tNAME\tDURATION\tMEDIA")
	for _, s := range services {
		fmt.Fprintf(tw, "%d\t%s\t%d min\t%d\n", s.SID, s.Name, int(s.Duration), len(s.Media))
	}
	return tw.Flush()
}
