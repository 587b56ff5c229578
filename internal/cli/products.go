package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"topstore/internal/catalog"
	"topstore/internal/model"
)

func newProductsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the catalog",
	}
	cmd.AddCommand(
		newProductsListCommand(a),
		newProductsAddCommand(a),
		newProductsRemoveCommand(a),
	)
	return cmd
}

func newProductsListCommand(a *app) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products := a.state.Catalog.List(catalog.Filter{
				Category: model.Category(category),
				Search:   search,
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSIZES\tCOLORS")
			for _, p := range products {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					p.ID, p.Name, p.Category, p.Price,
					strings.Join(p.Sizes, ","), strings.Join(p.Colors, ","))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVarP(&search, "query", "q", "", "Search by name")
	return cmd
}

func newProductsAddCommand(a *app) *cobra.Command {
	var d catalog.Draft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product, omitted fields get catalog defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			p, err := a.state.Catalog.Create(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s created: %s, %d RUB\n", p.ID, p.Name, p.Price)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Name, "name", "", "Product name")
	f.StringVar(&d.Description, "description", "", "Product description")
	f.IntVar(&d.Price, "price", 0, "Price in RUB")
	f.StringVar((*string)(&d.Category), "category", "", "Category")
	f.StringSliceVar(&d.Sizes, "sizes", nil, "Available sizes")
	f.StringSliceVar(&d.Colors, "colors", nil, "Available colors")
	f.StringSliceVar(&d.Images, "images", nil, "Image URLs")
	f.Float64Var(&d.WeightKg, "weight", 0, "Weight in kg")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProductsRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			if !a.state.Catalog.Remove(ctx, args[0]) {
				return fmt.Errorf("product %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s removed\n", args[0])
			return nil
		},
	}
}
