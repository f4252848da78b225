package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"budgetly/internal/cli"
)

var (
	flagTxDate    string
	flagTxTitle   string
	flagTxMessage string
)

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Record and list expenses",
	RunE:  listTransactions("expense"),
}

var incomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Record and list incomes",
	RunE:  listTransactions("income"),
}

func init() {
	for _, kind := range []string{"expense", "income"} {
		addCmd := &cobra.Command{
			Use:     "add CATEGORY AMOUNT",
			Short:   "Record a new " + kind,
			Args:    cobra.ExactArgs(2),
			Example: fmt.Sprintf("  budgetly %s add Groceries 42.50 --title market", kind),
			RunE:    addTransaction(kind),
		}
		addCmd.Flags().StringVar(&flagTxDate, "date", "", "Date (YYYY-MM-DD, defaults to today)")
		addCmd.Flags().StringVar(&flagTxTitle, "title", "", "Short title")
		addCmd.Flags().StringVar(&flagTxMessage, "message", "", "Free-form note")

		rmCmd := &cobra.Command{
			Use:   "rm ID",
			Short: "Delete a recorded " + kind,
			Args:  cobra.ExactArgs(1),
			RunE:  deleteTransaction(kind),
		}

		listCmd := &cobra.Command{
			Use:   "list",
			Short: "List recorded " + kind + "s, newest first",
			RunE:  listTransactions(kind),
		}

		parent := expenseCmd
		if kind == "income" {
			parent = incomeCmd
		}
		parent.AddCommand(addCmd, rmCmd, listCmd)
	}

	rootCmd.AddCommand(expenseCmd, incomeCmd)
}

func addTransaction(kind string) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		req := cli.NewTransaction{
			Date:     flagTxDate,
			Category: args[0],
			Amount:   args[1],
			Title:    flagTxTitle,
			Message:  flagTxMessage,
		}

		var saved cli.Transaction
		if kind == "income" {
			saved, err = client.AddIncome(ctx, req)
		} else {
			saved, err = client.AddExpense(ctx, req)
		}
		if err != nil {
			return friendlyError(err)
		}

		fmt.Printf("Recorded %s #%d: %s %s\n", kind, saved.ID, saved.Category, cli.FormatAmount(saved.Amount))
		return nil
	}
}

func listTransactions(kind string) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		var items []cli.Transaction
		if kind == "income" {
			items, err = client.ListIncomes(ctx)
		} else {
			items, err = client.ListExpenses(ctx)
		}
		if err != nil {
			return friendlyError(err)
		}

		fmt.Println()
		fmt.Print(cli.RenderTransactions(items))
		fmt.Println()
		return nil
	}
}

func deleteTransaction(kind string) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		var del func(context.Context, int64) error
		if kind == "income" {
			del = client.DeleteIncome
		} else {
			del = client.DeleteExpense
		}
		if err := del(ctx, id); err != nil {
			return friendlyError(err)
		}

		fmt.Printf("Deleted %s #%d\n", kind, id)
		return nil
	}
}
