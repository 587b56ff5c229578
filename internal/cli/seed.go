package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"topstore/internal/catalog"
	"topstore/internal/seed"
)

func newSeedCommand(a *app) *cobra.Command {
	var products, orders int
	var seedValue int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with generated products and orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if products < 0 || orders < 0 {
				return fmt.Errorf("counts must not be negative")
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			gen := seed.New(seedValue)
			for _, d := range gen.Products(products) {
				if _, err := a.state.Catalog.Create(ctx, d); err != nil {
					return fmt.Errorf("create product %q: %w", d.Name, err)
				}
			}

			available := a.state.Catalog.List(catalog.Filter{})
			country := a.cfg.Shipping.SupportedCountry
			created := 0
			for i := 0; i < orders; i++ {
				order := gen.Order(a.state.IDs.Next(), country, available)
				if a.state.Ledger.Create(ctx, order) {
					created++
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products and %d orders\n", products, created)
			return nil
		},
	}
	cmd.Flags().IntVar(&products, "products", 10, "Number of products to generate")
	cmd.Flags().IntVar(&orders, "orders", 0, "Number of orders to generate")
	cmd.Flags().Int64Var(&seedValue, "seed", 0, "Random seed, 0 for time based")
	return cmd
}
