package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"topstore/internal/model"
)

const dateLayout = "2006-01-02 15:04"

func newOrdersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and update orders",
	}
	cmd.AddCommand(
		newOrdersListCommand(a),
		newOrdersStatusCommand(a),
		newOrdersImportCommand(a),
	)
	return cmd
}

func newOrdersListCommand(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status != "" && !model.OrderStatus(status).Valid() {
				return fmt.Errorf("unknown status %q", status)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tSTATUS\tCUSTOMER\tCITY\tITEMS\tTOTAL")
			for _, o := range a.state.Ledger.List() {
				if status != "" && o.Status != model.OrderStatus(status) {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
					o.ID, o.Date.Local().Format(dateLayout), o.Status,
					o.UserDetails.FullName, o.UserDetails.City, len(o.Items), o.TotalAmount)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	return cmd
}

func newOrdersStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set order status (New, Paid, Shipped, Delivered)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			found, err := a.state.Ledger.UpdateStatus(ctx, args[0], model.OrderStatus(args[1]))
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("order %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s\n", args[0], args[1])
			return nil
		},
	}
}

// newOrdersImportCommand загружает заказы из файла с JSON объектами подряд
// (формат scripts/generate_test_data.go)
func newOrdersImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import orders from a JSON stream file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			ctx, cancel := a.context(cmd)
			defer cancel()

			var imported, skipped int
			decoder := json.NewDecoder(file)
			for {
				var order model.Order
				err := decoder.Decode(&order)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return fmt.Errorf("decode order #%d: %w", imported+skipped+1, err)
				}
				if order.ID == "" || !order.Status.Valid() || !a.state.Ledger.Create(ctx, order) {
					skipped++
					continue
				}
				imported++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Import completed: %d imported, %d skipped\n", imported, skipped)
			return nil
		},
	}
}
