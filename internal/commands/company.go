package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/facturo/facturo/internal/bankaccounts"
	"github.com/facturo/facturo/internal/companies"
)

func newCompanyCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage companies (invoice issuers)",
	}

	cmd.AddCommand(newCompanyCreateCommand(opts))
	cmd.AddCommand(newCompanyShowCommand(opts))
	cmd.AddCommand(newCompanyListCommand(opts))
	cmd.AddCommand(newCompanyUpdateCommand(opts))
	cmd.AddCommand(newCompanyDeleteCommand(opts))
	cmd.AddCommand(newCompanyBankAccountCommand(opts))

	return cmd
}

func newCompanyCreateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new company",
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
			regnum, _ := cmd.Flags().GetString("registration-number")
			fiscal, _ := cmd.Flags().GetString("fiscal-code")

			id, err := companies.New(db).Create(companies.CreateParams{
				Name:               name,
				Address:            address,
				City:               city,
				County:             county,
				PostalCode:         optStringPtr(cmd, "postal-code"),
				Country:            country,
				RegistrationNumber: regnum,
				FiscalCode:         fiscal,
				VATNumber:          optStringPtr(cmd, "vat-number"),
				VATPayer:           boolPtr(cmd, "vat-payer"),
				Email:              optStringPtr(cmd, "email"),
				Phone:              optStringPtr(cmd, "phone"),
				Website:            optStringPtr(cmd, "website"),
				LogoPath:           optStringPtr(cmd, "logo-path"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created company %d\n", id)
			return nil
		},
	}

	addCompanyFieldFlags(cmd)
	for _, f := range []string{"name", "address", "city", "county", "registration-number", "fiscal-code"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newCompanyShowCommand(opts *rootOptions) *cobra.Command {
	var fiscalCode string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a company by id or fiscal code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && fiscalCode == "" {
				return fmt.Errorf("provide a company id or --fiscal-code")
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()
			mgr := companies.New(db)

			var company *companies.Company
			if len(args) > 0 {
				id, err := parseID(args[0], "company")
				if err != nil {
					return err
				}
				company, err = mgr.Get(id)
				if err != nil {
					return err
				}
				if company == nil {
					return fmt.Errorf("company %d not found", id)
				}
			} else {
				company, err = mgr.GetByFiscalCode(fiscalCode)
				if err != nil {
					return err
				}
				if company == nil {
					return fmt.Errorf("no company with fiscal code %q", fiscalCode)
				}
			}

			printCompany(cmd, company)
			return nil
		},
	}

	cmd.Flags().StringVar(&fiscalCode, "fiscal-code", "", "look up by fiscal code instead of id")
	return cmd
}

func newCompanyListCommand(opts *rootOptions) *cobra.Command {
	var filter companies.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := companies.New(db).List(filter)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No companies found")
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

func newCompanyUpdateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update company fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "company")
			if err != nil {
				return err
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			found, err := companies.New(db).Update(id, companies.Update{
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
				LogoPath:           stringPtr(cmd, "logo-path"),
			})
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("company %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated company %d\n", id)
			return nil
		},
	}

	addCompanyFieldFlags(cmd)
	return cmd
}

func newCompanyDeleteCommand(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a company and its bank accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "company")
			if err != nil {
				return err
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()
			mgr := companies.New(db)

			company, err := mgr.Get(id)
			if err != nil {
				return err
			}
			if company == nil {
				return fmt.Errorf("company %d not found", id)
			}

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete company %d (%s) and all its bank accounts?", id, company.Name))
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
				return fmt.Errorf("company %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted company %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newCompanyBankAccountCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank-account",
		Short: "Manage a company's bank accounts",
	}

	add := &cobra.Command{
		Use:   "add <company-id>",
		Short: "Attach a bank account to a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "company")
			if err != nil {
				return err
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			accountID, err := companies.New(db).AddBankAccount(id, bankAccountParamsFromFlags(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created bank account %d for company %d\n", accountID, id)
			return nil
		},
	}
	addBankAccountFlags(add)

	list := &cobra.Command{
		Use:   "list <company-id>",
		Short: "List a company's bank accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "company")
			if err != nil {
				return err
			}

			db, err := opts.openDatabase(true)
			if err != nil {
				return err
			}
			defer db.Close()

			accounts, err := companies.New(db).BankAccounts(id)
			if err != nil {
				return err
			}
			printBankAccounts(cmd, accounts)
			return nil
		},
	}

	setDefault := &cobra.Command{
		Use:   "set-default <company-id> <account-id>",
		Short: "Mark one of the company's accounts as its default",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "company")
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

			if err := companies.New(db).SetDefaultBankAccount(id, accountID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bank account %d is now the default for company %d\n", accountID, id)
			return nil
		},
	}

	cmd.AddCommand(add, list, setDefault)
	return cmd
}

func addCompanyFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "company name")
	cmd.Flags().String("address", "", "street address")
	cmd.Flags().String("city", "", "city")
	cmd.Flags().String("county", "", "county")
	cmd.Flags().String("postal-code", "", "postal code")
	cmd.Flags().String("country", "", "country (default Romania)")
	cmd.Flags().String("registration-number", "", "trade registry number")
	cmd.Flags().String("fiscal-code", "", "fiscal code (CUI), unique among companies")
	cmd.Flags().String("vat-number", "", "VAT number")
	cmd.Flags().Bool("vat-payer", true, "whether the company is a VAT payer")
	cmd.Flags().String("email", "", "contact email")
	cmd.Flags().String("phone", "", "contact phone")
	cmd.Flags().String("website", "", "website URL")
	cmd.Flags().String("logo-path", "", "path to the company logo")
}

func printCompany(cmd *cobra.Command, c *companies.Company) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:                   %d\n", c.ID)
	fmt.Fprintf(out, "Name:                 %s\n", c.Name)
	fmt.Fprintf(out, "Address:              %s\n", c.Address)
	fmt.Fprintf(out, "City:                 %s\n", c.City)
	fmt.Fprintf(out, "County:               %s\n", c.County)
	fmt.Fprintf(out, "Postal code:          %s\n", orDash(c.PostalCode))
	fmt.Fprintf(out, "Country:              %s\n", c.Country)
	fmt.Fprintf(out, "Registration number:  %s\n", c.RegistrationNumber)
	fmt.Fprintf(out, "Fiscal code:          %s\n", c.FiscalCode)
	fmt.Fprintf(out, "VAT number:           %s\n", orDash(c.VATNumber))
	fmt.Fprintf(out, "VAT payer:            %s\n", yesNo(c.VATPayer))
	fmt.Fprintf(out, "Email:                %s\n", orDash(c.Email))
	fmt.Fprintf(out, "Phone:                %s\n", orDash(c.Phone))
	fmt.Fprintf(out, "Website:              %s\n", orDash(c.Website))
	fmt.Fprintf(out, "Logo:                 %s\n", orDash(c.LogoPath))
	if c.DefaultBankAccount != nil {
		fmt.Fprintf(out, "Default bank account: %d\n", *c.DefaultBankAccount)
	} else {
		fmt.Fprintf(out, "Default bank account: -\n")
	}
}

func bankAccountParamsFromFlags(cmd *cobra.Command) bankaccounts.CreateParams {
	bankName, _ := cmd.Flags().GetString("bank-name")
	accountNumber, _ := cmd.Flags().GetString("account-number")
	currency, _ := cmd.Flags().GetString("currency")
	isDefault, _ := cmd.Flags().GetBool("default")
	return bankaccounts.CreateParams{
		BankName:      bankName,
		AccountNumber: accountNumber,
		SwiftCode:     optStringPtr(cmd, "swift"),
		IBAN:          optStringPtr(cmd, "iban"),
		Currency:      currency,
		IsDefault:     isDefault,
	}
}

func addBankAccountFlags(cmd *cobra.Command) {
	cmd.Flags().String("bank-name", "", "bank name")
	cmd.Flags().String("account-number", "", "account number")
	cmd.Flags().String("swift", "", "SWIFT code")
	cmd.Flags().String("iban", "", "IBAN")
	cmd.Flags().String("currency", "", "currency code (default RON)")
	cmd.Flags().Bool("default", false, "mark as the default account")
	_ = cmd.MarkFlagRequired("bank-name")
	_ = cmd.MarkFlagRequired("account-number")
}

func printBankAccounts(cmd *cobra.Command, accounts []bankaccounts.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No bank accounts")
		return
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBANK\tACCOUNT NUMBER\tIBAN\tCURRENCY\tDEFAULT")
	for _, a := range accounts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.BankName, a.AccountNumber, orDash(a.IBAN), a.Currency, yesNo(a.IsDefault))
	}
	w.Flush()
}
