package cmd

import (
	"fmt"
	"strconv"

	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/repository"
	"github.com/spf13/cobra"
)

type productFlags struct {
	name, description, price, stock, category, barcode, status string
}

func (f *productFlags) register(c *cobra.Command, defaultStatus string) {
	c.Flags().StringVar(&f.name, "name", "", "Product name")
	c.Flags().StringVar(&f.description, "description", "", "Description")
	c.Flags().StringVar(&f.price, "price", "", "Unit price, at most 2 decimals")
	c.Flags().StringVar(&f.stock, "stock", "", "Units in stock")
	c.Flags().StringVar(&f.category, "category", "", "Category")
	c.Flags().StringVar(&f.barcode, "barcode", "", "Barcode (unique)")
	c.Flags().StringVar(&f.status, "status", defaultStatus, "Catalog status")
}

func (f *productFlags) input() repository.ProductInput {
	return repository.ProductInput{
		Name:        f.name,
		Description: f.description,
		Price:       f.price,
		Stock:       f.stock,
		Category:    f.category,
		Barcode:     f.barcode,
		Status:      f.status,
	}
}

func (f *productFlags) overlay(c *cobra.Command, in *repository.ProductInput) {
	setIfChanged(c, "name", &in.Name, f.name)
	setIfChanged(c, "description", &in.Description, f.description)
	setIfChanged(c, "price", &in.Price, f.price)
	setIfChanged(c, "stock", &in.Stock, f.stock)
	setIfChanged(c, "category", &in.Category, f.category)
	setIfChanged(c, "barcode", &in.Barcode, f.barcode)
	setIfChanged(c, "status", &in.Status, f.status)
}

var (
	productCreate productFlags
	productUpdate productFlags
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product"},
	Short:   "Manage the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products",
	Args:  cobra.NoArgs,
	RunE:  listProducts,
}

var productsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE:  getProduct,
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a product",
	Args:  cobra.NoArgs,
	RunE:  createProduct,
}

var productsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a product; only the flags given are changed",
	Args:  cobra.ExactArgs(1),
	RunE:  updateProduct,
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a product no order detail refers to",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteProduct,
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsGetCmd, productsCreateCmd, productsUpdateCmd, productsDeleteCmd)

	productCreate.register(productsCreateCmd, models.ProductStatusAvailable)
	for _, name := range []string{"name", "description", "price", "stock", "category", "barcode"} {
		_ = productsCreateCmd.MarkFlagRequired(name)
	}
	productUpdate.register(productsUpdateCmd, "")
}

var productHeader = []string{"ID", "NAME", "PRICE", "STOCK", "CATEGORY", "BARCODE", "STATUS"}

func productRows(list ...models.Product) func() [][]string {
	return func() [][]string {
		rows := make([][]string, 0, len(list))
		for _, p := range list {
			rows = append(rows, []string{
				strconv.FormatInt(p.ID, 10), p.Name, p.Price.StringFixed(2), strconv.Itoa(p.Stock), p.Category, p.Barcode, p.Status,
			})
		}
		return rows
	}
}

func listProducts(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	list, err := repository.NewProductRepository(a.db).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	return render(cmd.OutOrStdout(), list, productHeader, productRows(list...))
}

func getProduct(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	p, err := repository.NewProductRepository(a.db).Get(ctx, args[0])
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), p, productHeader, productRows(*p))
}

func createProduct(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	id, err := repository.NewProductRepository(a.db).Create(ctx, productCreate.input())
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return reportCreated(cmd, "Product", id)
}

func updateProduct(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	repo := repository.NewProductRepository(a.db)
	current, err := repo.Get(ctx, args[0])
	if err != nil {
		return err
	}

	in := repository.ProductInput{
		Name:        current.Name,
		Description: current.Description,
		Price:       current.Price.StringFixed(2),
		Stock:       strconv.Itoa(current.Stock),
		Category:    current.Category,
		Barcode:     current.Barcode,
		Status:      current.Status,
	}
	productUpdate.overlay(cmd, &in)
	if err := repo.Update(ctx, args[0], in); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Product %s updated\n", args[0])
	return nil
}

func deleteProduct(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	if err := repository.NewProductRepository(a.db).Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Product %s deleted\n", args[0])
	return nil
}
