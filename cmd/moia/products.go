package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"moia/internal/api"
)

func newProductsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Administer the product catalog",
	}
	cmd.AddCommand(
		newProductsCountCmd(flags),
		newProductsSearchCmd(flags),
		newProductsEditCmd(flags),
		newProductsDeleteCmd(flags),
	)
	return cmd
}

func newProductsCountCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the number of published products",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			n, err := res.Products.Count(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newProductsSearchCmd(flags *rootFlags) *cobra.Command {
	var q api.ProductQuery

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search products by filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			found, err := res.Products.SearchNow(context.Background(), q)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no products found")
				return nil
			}
			for _, p := range found {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s/%s/%s\t%.2f\n",
					p.ID, p.Name, p.Category, p.Gender, p.ClothingType, p.Price)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&q.Name, "name", "", "name filter")
	cmd.Flags().StringVar(&q.Category, "category", "", "category filter")
	cmd.Flags().StringVar(&q.Gender, "gender", "", "gender filter")
	cmd.Flags().StringVar(&q.ClothingType, "type", "", "clothing type filter")
	cmd.Flags().StringVar(&q.PriceMin, "price-min", "", "minimum price")
	cmd.Flags().StringVar(&q.PriceMax, "price-max", "", "maximum price")
	cmd.Flags().StringVar(&q.Sort, "sort", "", "sort order")
	return cmd
}

func newProductsEditCmd(flags *rootFlags) *cobra.Command {
	var p api.Product

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a product's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad product id %q", args[0])
			}
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			msg, err := res.Products.Edit(context.Background(), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "product name")
	cmd.Flags().StringVar(&p.Category, "category", "", "category")
	cmd.Flags().StringVar(&p.Gender, "gender", "", "gender")
	cmd.Flags().StringVar(&p.ClothingType, "type", "", "clothing type")
	cmd.Flags().Float64Var(&p.Price, "price", 0, "price")
	return cmd
}

func newProductsDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad product id %q", args[0])
			}
			res, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer res.Close()

			msg, err := res.Products.Delete(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
