package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"topstore/internal/model"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print store statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.state.Stats()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Products:       %d\n", s.Products)
			fmt.Fprintf(out, "Orders:         %d\n", s.TotalOrders)
			fmt.Fprintf(out, "Pending orders: %d\n", s.PendingOrders)
			fmt.Fprintf(out, "Revenue:        %d RUB\n", s.TotalRevenue)
			for _, status := range model.OrderStatuses {
				fmt.Fprintf(out, "  %-10s %d\n", status, s.ByStatus[status])
			}
			return nil
		},
	}
}
