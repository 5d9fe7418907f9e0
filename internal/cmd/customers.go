package cmd

import (
	"fmt"
	"strconv"

	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/repository"
	"github.com/spf13/cobra"
)

type customerFlags struct {
	name, email, phone, address string
}

func (f *customerFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.name, "name", "", "Customer name")
	c.Flags().StringVar(&f.email, "email", "", "Email address (unique)")
	c.Flags().StringVar(&f.phone, "phone", "", "Phone number, digits only (unique)")
	c.Flags().StringVar(&f.address, "address", "", "Postal address")
}

func (f *customerFlags) input() repository.CustomerInput {
	return repository.CustomerInput{Name: f.name, Email: f.email, Phone: f.phone, Address: f.address}
}

// overlay copies only the flags the user actually set onto in.
func (f *customerFlags) overlay(c *cobra.Command, in *repository.CustomerInput) {
	setIfChanged(c, "name", &in.Name, f.name)
	setIfChanged(c, "email", &in.Email, f.email)
	setIfChanged(c, "phone", &in.Phone, f.phone)
	setIfChanged(c, "address", &in.Address, f.address)
}

var (
	customerCreate customerFlags
	customerUpdate customerFlags
)

var customersCmd = &cobra.Command{
	Use:     "customers",
	Aliases: []string{"customer"},
	Short:   "Manage customers",
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all customers",
	Args:  cobra.NoArgs,
	RunE:  listCustomers,
}

var customersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one customer",
	Args:  cobra.ExactArgs(1),
	RunE:  getCustomer,
}

var customersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a customer",
	Args:  cobra.NoArgs,
	RunE:  createCustomer,
}

var customersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a customer; only the flags given are changed",
	Args:  cobra.ExactArgs(1),
	RunE:  updateCustomer,
}

var customersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a customer that has no purchase orders",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteCustomer,
}

func init() {
	rootCmd.AddCommand(customersCmd)
	customersCmd.AddCommand(customersListCmd, customersGetCmd, customersCreateCmd, customersUpdateCmd, customersDeleteCmd)

	customerCreate.register(customersCreateCmd)
	for _, name := range []string{"name", "email", "phone", "address"} {
		_ = customersCreateCmd.MarkFlagRequired(name)
	}
	customerUpdate.register(customersUpdateCmd)
}

func customerRows(list ...models.Customer) func() [][]string {
	return func() [][]string {
		rows := make([][]string, 0, len(list))
		for _, c := range list {
			rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, c.Email, c.Phone, c.Address})
		}
		return rows
	}
}

var customerHeader = []string{"ID", "NAME", "EMAIL", "PHONE", "ADDRESS"}

func listCustomers(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	list, err := repository.NewCustomerRepository(a.db).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list customers: %w", err)
	}
	return render(cmd.OutOrStdout(), list, customerHeader, customerRows(list...))
}

func getCustomer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	c, err := repository.NewCustomerRepository(a.db).Get(ctx, args[0])
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), c, customerHeader, customerRows(*c))
}

func createCustomer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	id, err := repository.NewCustomerRepository(a.db).Create(ctx, customerCreate.input())
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return reportCreated(cmd, "Customer", id)
}

func updateCustomer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	repo := repository.NewCustomerRepository(a.db)
	current, err := repo.Get(ctx, args[0])
	if err != nil {
		return err
	}

	in := repository.CustomerInput{Name: current.Name, Email: current.Email, Phone: current.Phone, Address: current.Address}
	customerUpdate.overlay(cmd, &in)
	if err := repo.Update(ctx, args[0], in); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Customer %s updated\n", args[0])
	return nil
}

func deleteCustomer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.queryContext(cmd.Context())
	defer cancel()

	if err := repository.NewCustomerRepository(a.db).Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Customer %s deleted\n", args[0])
	return nil
}

func setIfChanged(c *cobra.Command, flag string, dst *string, value string) {
	if c.Flags().Changed(flag) {
		*dst = value
	}
}

func reportCreated(cmd *cobra.Command, entity string, id int64) error {
	if outputFormat == "json" {
		return render(cmd.OutOrStdout(), map[string]int64{"id": id}, nil, nil)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s %d created\n", entity, id)
	return nil
}
