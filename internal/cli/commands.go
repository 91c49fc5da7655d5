package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"unlockmart/internal/database"
	"unlockmart/internal/model"
	"unlockmart/internal/service"
)

const providerManual = "manual"

var creditReference string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := database.InitSchema(db, dbDriver); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
		cmd.Println("schema up to date")
		return nil
	},
}

var roleCmd = &cobra.Command{
	Use:   "role [account-id] [role]",
	Short: "Change an account's role",
	Long:  `Changes an account's role. Promoting to operator assigns an operator code.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		admin := service.NewAdminService(db, service.NewOperatorRegistry(db))
		account, err := admin.ChangeRole(cmd.Context(), args[0], model.Role(args[1]))
		if err != nil {
			return err
		}
		if account.OperatorCode != "" {
			cmd.Printf("%s is now %s (operator code %s)\n", account.Email, account.Role, account.OperatorCode)
			return nil
		}
		cmd.Printf("%s is now %s\n", account.Email, account.Role)
		return nil
	},
}

var activeCmd = &cobra.Command{
	Use:   "active [account-id] [true|false]",
	Short: "Enable or disable an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		active, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid flag value %q", args[1])
		}
		admin := service.NewAdminService(db, service.NewOperatorRegistry(db))
		if err := admin.SetActive(cmd.Context(), args[0], active); err != nil {
			return err
		}
		cmd.Printf("account %s active=%t\n", args[0], active)
		return nil
	},
}

var creditCmd = &cobra.Command{
	Use:   "credit [account-id] [amount]",
	Short: "Credit an account without a payment provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		funding := service.NewFundingService(db, service.NewLedger(db), nil)
		_, balance, err := funding.Record(cmd.Context(), args[0], amount, providerManual, creditReference)
		if err != nil {
			return err
		}
		cmd.Printf("new balance %s\n", balance.StringFixed(2))
		return nil
	},
}

var orderStatusCmd = &cobra.Command{
	Use:   "order-status [order-id] [status]",
	Short: "Move an order to another status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		orders := service.NewOrderService(db, service.NewOperatorRegistry(db))
		order, err := orders.Transition(cmd.Context(), args[0], model.OrderStatus(args[1]))
		if err != nil {
			return err
		}
		cmd.Printf("%s is now %s\n", order.OrderCode, order.Status)
		return nil
	},
}

func init() {
	creditCmd.Flags().StringVar(&creditReference, "reference", "", "external reference stored with the credit")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(activeCmd)
	rootCmd.AddCommand(creditCmd)
	rootCmd.AddCommand(orderStatusCmd)
}
