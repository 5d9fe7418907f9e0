package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/orders"
	"github.com/matthieukhl/commercial-manager/internal/validate"
	"github.com/spf13/cobra"
)

type orderFlags struct {
	date, address, track, status, customer string
	details                                []string
}

func (f *orderFlags) register(c *cobra.Command, defaultStatus string) {
	c.Flags().StringVar(&f.date, "date", "", "Order date, YYYY-MM-DD")
	c.Flags().StringVar(&f.address, "address", "", "Delivery address")
	c.Flags().StringVar(&f.track, "track", "", "Tracking number")
	c.Flags().StringVar(&f.status, "status", defaultStatus, "Order status")
	c.Flags().StringVar(&f.customer, "customer", "", "Customer id")
	c.Flags().StringArrayVar(&f.details, "detail", nil, "Line item as product:quantity:price (repeatable)")
}

// builder starts from the given header and appends every --detail value.
func (f *orderFlags) builder(in orders.Input) (*orders.Builder, error) {
	b := orders.NewBuilder(in.Date, in.DeliveryAddress, in.TrackNumber, in.Status, in.CustomerID)
	for _, raw := range f.details {
		productID, quantity, price, err := parseDetailFlag(raw)
		if err != nil {
			return nil, err
		}
		b.AddDetail(productID, quantity, price)
	}
	return b, nil
}

func (f *orderFlags) overlay(c *cobra.Command, in *orders.Input) {
	setIfChanged(c, "date", &in.Date, f.date)
	setIfChanged(c, "address", &in.DeliveryAddress, f.address)
	setIfChanged(c, "track", &in.TrackNumber, f.track)
	setIfChanged(c, "status", &in.Status, f.status)
	setIfChanged(c, "customer", &in.CustomerID, f.customer)
}

// parseDetailFlag splits "product:quantity:price". The parts are checked
// later by the order manager.
func parseDetailFlag(raw string) (productID, quantity, price string, err error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return "", "", "", &validate.ValidationError{Field: "detail", Reason: fmt.Sprintf("%q is not product:quantity:price", raw)}
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]), nil
}

var (
	orderCreate orderFlags
	orderUpdate orderFlags
)

var ordersCmd = &cobra.Command{
	Use:     "orders",
	Aliases: []string{"order"},
	Short:   "Manage purchase orders and their line items",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all purchase orders",
	Args:  cobra.NoArgs,
	RunE:  listOrders,
}

var ordersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one purchase order with its details",
	Args:  cobra.ExactArgs(1),
	RunE:  getOrder,
}

var ordersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a purchase order with at least one --detail",
	Example: `  commercial-manager orders create --date 2024-03-01 --address "12 Rue A" \
    --track TRK1 --customer 7 --detail 3:2:19.99`,
	Args: cobra.NoArgs,
	RunE: createOrder,
}

var ordersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a purchase order",
	Long: `Change a purchase order. Header fields not given keep their current value.
When at least one --detail is given, the order's details are replaced by
exactly the ones given; otherwise they are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: updateOrder,
}

var ordersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a purchase order and its details",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteOrder,
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd, ordersGetCmd, ordersCreateCmd, ordersUpdateCmd, ordersDeleteCmd)

	orderCreate.register(ordersCreateCmd, models.OrderStatusPending)
	for _, name := range []string{"date", "address", "track", "customer", "detail"} {
		_ = ordersCreateCmd.MarkFlagRequired(name)
	}
	orderUpdate.register(ordersUpdateCmd, "")
}

var orderHeader = []string{"ID", "DATE", "CUSTOMER", "STATUS", "TRACK", "LINES", "TOTAL", "ADDRESS"}

func orderRows(list ...models.PurchaseOrder) func() [][]string {
	return func() [][]string {
		rows := make([][]string, 0, len(list))
		for i := range list {
			o := &list[i]
			rows = append(rows, []string{
				strconv.FormatInt(o.ID, 10), o.Date, strconv.FormatInt(o.CustomerID, 10), o.Status, o.TrackNumber,
				strconv.Itoa(len(o.Details)), o.Total().StringFixed(2), o.DeliveryAddress,
			})
		}
		return rows
	}
}

func detailRows(o *models.PurchaseOrder) func() [][]string {
	return func() [][]string {
		rows := make([][]string, 0, len(o.Details))
		for i, d := range o.Details {
			rows = append(rows, []string{
				strconv.Itoa(i + 1), strconv.FormatInt(d.ProductID, 10), strconv.Itoa(d.Quantity), d.Price.StringFixed(2),
			})
		}
		return rows
	}
}

func listOrders(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.orders.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list purchase orders: %w", err)
	}
	return render(cmd.OutOrStdout(), list, orderHeader, orderRows(list...))
}

func getOrder(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.orders.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := render(cmd.OutOrStdout(), o, orderHeader, orderRows(*o)); err != nil {
		return err
	}
	if outputFormat == "json" {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return render(cmd.OutOrStdout(), nil, []string{"LINE", "PRODUCT", "QUANTITY", "PRICE"}, detailRows(o))
}

func createOrder(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := orderCreate.builder(orders.Input{
		Date:            orderCreate.date,
		DeliveryAddress: orderCreate.address,
		TrackNumber:     orderCreate.track,
		Status:          orderCreate.status,
		CustomerID:      orderCreate.customer,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "🛒 Writing order with %d detail(s)...\n", b.Len())
	id, err := a.orders.Create(cmd.Context(), b.Input())
	if err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}
	return reportCreated(cmd, "Purchase order", id)
}

func updateOrder(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	current, err := a.orders.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	in := orders.InputFrom(current)
	orderUpdate.overlay(cmd, &in)
	b, err := orderUpdate.builder(in)
	if err != nil {
		return err
	}

	if err := a.orders.Update(cmd.Context(), args[0], b.Input()); err != nil {
		return fmt.Errorf("failed to update purchase order: %w", err)
	}
	if b.Len() > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Purchase order %s updated, %d detail(s) replaced\n", args[0], b.Len())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Purchase order %s updated\n", args[0])
	}
	return nil
}

func deleteOrder(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.orders.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Purchase order %s deleted\n", args[0])
	return nil
}
