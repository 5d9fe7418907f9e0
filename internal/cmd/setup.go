package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/orders"
	"github.com/matthieukhl/commercial-manager/internal/repository"
	"github.com/spf13/cobra"
)

var (
	dropFirst bool
	withSeed  bool
)

var setupCmd = &cobra.Command{
	Use:   "setup-schema",
	Short: "Create the database schema and optionally sample data",
	Long: `Creates the customers, products, purchase_orders, order_details and
payments tables if they do not exist yet.

With --seed, existing rows are removed and a small set of sample customers,
products, orders and payments is written, which is handy for trying the
CLI and the HTTP API.`,
	Args: cobra.NoArgs,
	RunE: setupSchema,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop existing tables before creating")
	setupCmd.Flags().BoolVar(&withSeed, "seed", false, "Replace all rows with sample data")
}

func setupSchema(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 Setting up database...")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	if dropFirst {
		fmt.Println("🗑️  Dropping existing tables...")
		if err := a.db.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	fmt.Println("📋 Creating schema...")
	if err := a.db.SetupSchema(ctx); err != nil {
		return fmt.Errorf("failed to setup schema: %w", err)
	}

	if withSeed {
		fmt.Println("🧹 Removing existing rows...")
		if err := a.db.CleanupData(ctx); err != nil {
			return fmt.Errorf("failed to clean data: %w", err)
		}
		fmt.Println("📊 Populating with sample data...")
		if err := populateSampleData(ctx, a); err != nil {
			return fmt.Errorf("failed to populate sample data: %w", err)
		}
	}

	fmt.Println("✅ Database setup complete!")
	return nil
}

func populateSampleData(ctx context.Context, a *app) error {
	fmt.Println("   👥 Creating customers...")
	customerIDs, err := createCustomers(ctx, repository.NewCustomerRepository(a.db))
	if err != nil {
		return err
	}

	fmt.Println("   📦 Creating products...")
	productIDs, err := createProducts(ctx, repository.NewProductRepository(a.db))
	if err != nil {
		return err
	}

	fmt.Println("   🛒 Creating orders...")
	orderIDs, err := createOrders(ctx, a.orders, customerIDs, productIDs)
	if err != nil {
		return err
	}

	fmt.Println("   💳 Creating payments...")
	return createPayments(ctx, repository.NewPaymentRepository(a.db), orderIDs)
}

func createCustomers(ctx context.Context, repo *repository.CustomerRepository) ([]string, error) {
	customers := []repository.CustomerInput{
		{Name: "John Doe", Email: "john.doe@email.com", Phone: "2125550101", Address: "10 Park Ave, New York"},
		{Name: "Jane Smith", Email: "jane.smith@gmail.com", Phone: "442079460102", Address: "221B Baker St, London"},
		{Name: "Bob Wilson", Email: "bob.wilson@yahoo.com", Phone: "4165550103", Address: "55 King St, Toronto"},
		{Name: "Alice Brown", Email: "alice.brown@hotmail.com", Phone: "61290000104", Address: "1 George St, Sydney"},
		{Name: "Charlie Davis", Email: "charlie.davis@outlook.com", Phone: "49301234105", Address: "Unter den Linden 7, Berlin"},
	}

	ids := make([]string, 0, len(customers))
	for _, c := range customers {
		id, err := repo.Create(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to create customer %s: %w", c.Email, err)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return ids, nil
}

func createProducts(ctx context.Context, repo *repository.ProductRepository) ([]string, error) {
	products := []repository.ProductInput{
		{Name: "Laptop Pro 15\"", Description: "High-performance laptop for professionals", Price: "1299.99", Stock: "50", Category: models.CategoryElectronics, Barcode: "4006381333931", Status: models.ProductStatusAvailable},
		{Name: "Wireless Mouse", Description: "Ergonomic wireless mouse with USB receiver", Price: "29.99", Stock: "200", Category: models.CategoryElectronics, Barcode: "4006381333948", Status: models.ProductStatusAvailable},
		{Name: "Programming Book", Description: "Complete guide to modern software development", Price: "49.99", Stock: "100", Category: models.CategoryBooks, Barcode: "9780134190440", Status: models.ProductStatusAvailable},
		{Name: "Cotton T-Shirt", Description: "Premium cotton t-shirt, multiple sizes", Price: "19.99", Stock: "500", Category: models.CategoryClothing, Barcode: "5012345678900", Status: models.ProductStatusAvailable},
		{Name: "Running Shoes", Description: "Professional running shoes for athletes", Price: "89.99", Stock: "150", Category: models.CategorySports, Barcode: "5012345678917", Status: models.ProductStatusAvailable},
		{Name: "Coffee Mug", Description: "Ceramic coffee mug", Price: "9.99", Stock: "0", Category: models.CategoryHome, Barcode: "5012345678924", Status: models.ProductStatusDiscontinued},
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		id, err := repo.Create(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to create product %s: %w", p.Barcode, err)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return ids, nil
}

func createOrders(ctx context.Context, mgr *orders.Manager, customers, products []string) ([]string, error) {
	builders := []*orders.Builder{
		orders.NewBuilder("2024-03-01", "10 Park Ave, New York", "TRK-1001", models.OrderStatusDelivered, customers[0]).
			AddDetail(products[0], "1", "1299.99").
			AddDetail(products[1], "2", "29.99"),
		orders.NewBuilder("2024-03-04", "221B Baker St, London", "TRK-1002", models.OrderStatusShipped, customers[1]).
			AddDetail(products[2], "3", "45.00"),
		orders.NewBuilder("2024-03-09", "55 King St, Toronto", "TRK-1003", models.OrderStatusPaid, customers[2]).
			AddDetail(products[3], "5", "19.99").
			AddDetail(products[4], "1", "89.99").
			AddDetail(products[1], "1", "29.99"),
		orders.NewBuilder("2024-03-15", "1 George St, Sydney", "TRK-1004", models.OrderStatusPending, customers[3]).
			AddDetail(products[5], "4", "9.99"),
	}

	ids := make([]string, 0, len(builders))
	for _, b := range builders {
		id, err := mgr.Create(ctx, b.Input())
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return ids, nil
}

func createPayments(ctx context.Context, repo *repository.PaymentRepository, orderIDs []string) error {
	payments := []repository.PaymentInput{
		{OrderID: orderIDs[0], Date: "2024-03-01", Amount: "1359.97", PaymentMethod: "card"},
		{OrderID: orderIDs[1], Date: "2024-03-05", Amount: "135.00", PaymentMethod: "transfer"},
		{OrderID: orderIDs[2], Date: "2024-03-09", Amount: "100.00", PaymentMethod: "card"},
		{OrderID: orderIDs[2], Date: "2024-03-20", Amount: "119.93", PaymentMethod: "cash"},
	}

	for _, p := range payments {
		if _, err := repo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
	}
	return nil
}
