package cmd

import (
	"fmt"
	"strconv"

	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/repository"
	"github.com/spf13/cobra"
)

type paymentFlags struct {
	order, date, amount, method string
}

func (f *paymentFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.order, "order", "", "Purchase order id")
	c.Flags().StringVar(&f.date, "date", "", "Payment date, YYYY-MM-DD")
	c.Flags().StringVar(&f.amount, "amount", "", "Amount paid, at most 2 decimals")
	c.Flags().StringVar(&f.method, "method", "", "Payment method, e.g. card or transfer")
}

func (f *paymentFlags) input() repository.PaymentInput {
	return repository.PaymentInput{OrderID: f.order, Date: f.date, Amount: f.amount, PaymentMethod: f.method}
}

func (f *paymentFlags) overlay(c *cobra.Command, in *repository.PaymentInput) {
	setIfChanged(c, "order", &in.OrderID, f.order)
	setIfChanged(c, "date", &in.Date, f.date)
	setIfChanged(c, "amount", &in.Amount, f.amount)
	setIfChanged(c, "method", &in.PaymentMethod, f.method)
}

var (
	paymentCreate paymentFlags
	paymentUpdate paymentFlags
)

var paymentsCmd = &cobra.Command{
	Use:     "payments",
	Aliases: []string{"payment"},
	Short:   "Manage payments made against purchase orders",
}

var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all payments",
	Args:  cobra.NoArgs,
	RunE:  listPayments,
}

var paymentsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one payment",
	Args:  cobra.ExactArgs(1),
	RunE:  getPayment,
}

var paymentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a payment",
	Args:  cobra.NoArgs,
	RunE:  createPayment,
}

var paymentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a payment; only the flags given are changed",
	Args:  cobra.ExactArgs(1),
	RunE:  updatePayment,
}

var paymentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a payment",
	Args:  cobra.ExactArgs(1),
	RunE:  deletePayment,
}

func init() {
	rootCmd.AddCommand(paymentsCmd)
	paymentsCmd.AddCommand(paymentsListCmd, paymentsGetCmd, paymentsCreateCmd, paymentsUpdateCmd, paymentsDeleteCmd)

	paymentCreate.register(paymentsCreateCmd)
	for _, name := range []string{"order", "date", "amount", "method"} {
		_ = paymentsCreateCmd.MarkFlagRequired(name)
	}
	paymentUpdate.register(paymentsUpdateCmd)
}

var paymentHeader = []string{"ID", "ORDER", "DATE", "AMOUNT", "METHOD"}

func paymentRows(list ...models.Payment) func() [][]string {
	return func() [][]string {
		rows := make([][]string, 0, len(list))
		for _, p := range list {
			rows = append(rows, []string{
				strconv.FormatInt(p.ID, 10), strconv.FormatInt(p.OrderID, 10), p.Date, p.Amount.StringFixed(2), p.PaymentMethod,
			})
		}
		return rows
	}
}

func listPayments(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	list, err := repository.NewPaymentRepository(a.db).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list payments: %w", err)
	}
	return render(cmd.OutOrStdout(), list, paymentHeader, paymentRows(list...))
}

func getPayment(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	p, err := repository.NewPaymentRepository(a.db).Get(ctx, args[0])
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), p, paymentHeader, paymentRows(*p))
}

func createPayment(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	id, err := repository.NewPaymentRepository(a.db).Create(ctx, paymentCreate.input())
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return reportCreated(cmd, "Payment", id)
}

func updatePayment(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	repo := repository.NewPaymentRepository(a.db)
	current, err := repo.Get(ctx, args[0])
	if err != nil {
		return err
	}

	in := repository.PaymentInput{
		OrderID:       strconv.FormatInt(current.OrderID, 10),
		Date:          current.Date,
		Amount:        current.Amount.StringFixed(2),
		PaymentMethod: current.PaymentMethod,
	}
	paymentUpdate.overlay(cmd, &in)
	if err := repo.Update(ctx, args[0], in); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Payment %s updated\n", args[0])
	return nil
}

func deletePayment(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	if err := repository.NewPaymentRepository(a.db).Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Payment %s deleted\n", args[0])
	return nil
}
