package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/facturo/facturo/internal/clients"
)

func newClientCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients (invoice recipients)",
	}

	cmd.AddCommand(newClientCreateCommand(opts))
	cmd.AddCommand(newClientShowCommand(opts))
	cmd.AddCommand(newClientListCommand(opts))
	cmd.AddCommand(newClientUpdateCommand(opts))
	cmd.AddCommand(newClientDeleteCommand(opts))
	cmd.AddCommand(newClientBankAccountCommand(opts))

	return cmd
}

func newClientCreateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			name, _ := cmd.Flags().GetString("name")
			address, _ := cmd.Flags().GetString("address")
			city, _ := cmd.Flags().GetString("city")
			county, _ := cmd.Flags().GetString("county")
			country, _ := cmd.Flags().GetString("country")
			fiscal, _ := cmd.Flags().GetString("fiscal-code")

			id, err := clients.New(db).Create(clients.CreateParams{
				Name:               name,
				Address:            address,
				City:               city,
				County:             county,
				PostalCode:         optStringPtr(cmd, "postal-code"),
				Country:            country,
				RegistrationNumber: optStringPtr(cmd, "registration-number"),
				FiscalCode:         fiscal,
				VATNumber:          optStringPtr(cmd, "vat-number"),
				VATPayer:           boolPtr(cmd, "vat-payer"),
				Email:              optStringPtr(cmd, "email"),
				Phone:              optStringPtr(cmd, "phone"),
				Website:            optStringPtr(cmd, "website"),
				ContactPerson:      optStringPtr(cmd, "contact-person"),
				Notes:              optStringPtr(cmd, "notes"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created client %d\n", id)
			return nil
		},
	}

	addClientFieldFlags(cmd)
	for _, f := range []string{"name", "address", "city", "county", "fiscal-code"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newClientShowCommand(opts *rootOptions) *cobra.Command {
	var fiscalCode string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a client by id or fiscal code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && fiscalCode == "" {
				return fmt.Errorf("provide a client id or --fiscal-code")
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()
			mgr := clients.New(db)

			var client *clients.Client
			if len(args) > 0 {
				id, err := parseID(args[0], "client")
				if err != nil {
					return err
				}
				client, err = mgr.Get(id)
				if err != nil {
					return err
				}
				if client == nil {
					return fmt.Errorf("client %d not found", id)
				}
			} else {
				client, err = mgr.GetByFiscalCode(fiscalCode)
				if err != nil {
					return err
				}
				if client == nil {
					return fmt.Errorf("no client with fiscal code %q", fiscalCode)
				}
			}

			printClient(cmd, client)
			return nil
		},
	}

	cmd.Flags().StringVar(&fiscalCode, "fiscal-code", "", "look up by fiscal code instead of id")
	return cmd
}

func newClientListCommand(opts *rootOptions) *cobra.Command {
	var filter clients.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := clients.New(db).List(filter)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No clients found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCITY\tCOUNTY\tFISCAL CODE")
			for _, c := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.City, c.County, c.FiscalCode)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&filter.Name, "name", "", "filter by name substring")
	cmd.Flags().StringVar(&filter.City, "city", "", "filter by city substring")
	cmd.Flags().StringVar(&filter.County, "county", "", "filter by county substring")
	cmd.Flags().StringVar(&filter.Country, "country", "", "filter by exact country")
	cmd.Flags().StringVar(&filter.FiscalCode, "fiscal-code", "", "filter by exact fiscal code")
	cmd.Flags().BoolVar(&filter.SortByName, "sort-name", false, "sort by name instead of id")
	return cmd
}

func newClientUpdateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update client fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "client")
			if err != nil {
				return err
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			found, err := clients.New(db).Update(id, clients.Update{
				Name:               stringPtr(cmd, "name"),
				Address:            stringPtr(cmd, "address"),
				City:               stringPtr(cmd, "city"),
				County:             stringPtr(cmd, "county"),
				PostalCode:         stringPtr(cmd, "postal-code"),
				Country:            stringPtr(cmd, "country"),
				RegistrationNumber: stringPtr(cmd, "registration-number"),
				FiscalCode:         stringPtr(cmd, "fiscal-code"),
				VATNumber:          stringPtr(cmd, "vat-number"),
				VATPayer:           boolPtr(cmd, "vat-payer"),
				Email:              stringPtr(cmd, "email"),
				Phone:              stringPtr(cmd, "phone"),
				Website:            stringPtr(cmd, "website"),
				ContactPerson:      stringPtr(cmd, "contact-person"),
				Notes:              stringPtr(cmd, "notes"),
			})
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("client %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated client %d\n", id)
			return nil
		},
	}

	addClientFieldFlags(cmd)
	return cmd
}

func newClientDeleteCommand(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client and its bank accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "client")
			if err != nil {
				return err
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()
			mgr := clients.New(db)

			client, err := mgr.Get(id)
			if err != nil {
				return err
			}
			if client == nil {
				return fmt.Errorf("client %d not found", id)
			}

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete client %d (%s) and all its bank accounts?", id, client.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			removed, err := mgr.Delete(id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("client %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted client %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newClientBankAccountCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank-account",
		Short: "Manage a client's bank accounts",
	}

	add := &cobra.Command{
		Use:   "add <client-id>",
		Short: "Attach a bank account to a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "client")
			if err != nil {
				return err
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			accountID, err := clients.New(db).AddBankAccount(id, bankAccountParamsFromFlags(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created bank account %d for client %d\n", accountID, id)
			return nil
		},
	}
	addBankAccountFlags(add)

	list := &cobra.Command{
		Use:   "list <client-id>",
		Short: "List a client's bank accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "client")
			if err != nil {
				return err
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			accounts, err := clients.New(db).BankAccounts(id)
			if err != nil {
				return err
			}
			printBankAccounts(cmd, accounts)
			return nil
		},
	}

	setDefault := &cobra.Command{
		Use:   "set-default <client-id> <account-id>",
		Short: "Mark one of the client's accounts as its default",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "client")
			if err != nil {
				return err
			}
			accountID, err := parseID(args[1], "bank account")
			if err != nil {
				return err
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := clients.New(db).SetDefaultBankAccount(id, accountID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bank account %d is now the default for client %d\n", accountID, id)
			return nil
		},
	}

	cmd.AddCommand(add, list, setDefault)
	return cmd
}

func addClientFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "client name")
	cmd.Flags().String("address", "", "street address")
	cmd.Flags().String("city", "", "city")
	cmd.Flags().String("county", "", "county")
	cmd.Flags().String("postal-code", "", "postal code")
	cmd.Flags().String("country", "", "country (default Romania)")
	cmd.Flags().String("registration-number", "", "trade registry number")
	cmd.Flags().String("fiscal-code", "", "fiscal code (CUI), unique among clients")
	cmd.Flags().String("vat-number", "", "VAT number")
	cmd.Flags().Bool("vat-payer", true, "whether the client is a VAT payer")
	cmd.Flags().String("email", "", "contact email")
	cmd.Flags().String("phone", "", "contact phone")
	cmd.Flags().String("website", "", "website URL")
	cmd.Flags().String("contact-person", "", "primary contact person")
	cmd.Flags().String("notes", "", "free-form notes")
}

func printClient(cmd *cobra.Command, c *clients.Client) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:                   %d\n", c.ID)
	fmt.Fprintf(out, "Name:                 %s\n", c.Name)
	fmt.Fprintf(out, "Address:              %s\n", c.Address)
	fmt.Fprintf(out, "City:                 %s\n", c.City)
	fmt.Fprintf(out, "County:               %s\n", c.County)
	fmt.Fprintf(out, "Postal code:          %s\n", orDash(c.PostalCode))
	fmt.Fprintf(out, "Country:              %s\n", c.Country)
	fmt.Fprintf(out, "Registration number:  %s\n", orDash(c.RegistrationNumber))
	fmt.Fprintf(out, "Fiscal code:          %s\n", c.FiscalCode)
	fmt.Fprintf(out, "VAT number:           %s\n", orDash(c.VATNumber))
	fmt.Fprintf(out, "VAT payer:            %s\n", yesNo(c.VATPayer))
	fmt.Fprintf(out, "Email:                %s\n", orDash(c.Email))
	fmt.Fprintf(out, "Phone:                %s\n", orDash(c.Phone))
	fmt.Fprintf(out, "Website:              %s\n", orDash(c.Website))
	fmt.Fprintf(out, "Contact person:       %s\n", orDash(c.ContactPerson))
	fmt.Fprintf(out, "Notes:                %s\n", orDash(c.Notes))
	if c.DefaultBankAccount != nil {
		fmt.Fprintf(out, "Default bank account: %d\n", *c.DefaultBankAccount)
	} else {
		fmt.Fprintf(out, "Default bank account: -\n")
	}
}
