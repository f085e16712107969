package command

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"schoollibrary/cmd/libctl/command/client"
)

const requestTimeout = 15 * time.Second

func newClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	c.SetToken(token)
	return c
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List the catalog with copies on the shelf",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		books, err := newClient().ListBooks(ctx)
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		if len(books) == 0 {
			fmt.Println("📚 The catalog is empty")
			return nil
		}

		fmt.Printf("📚 Catalog (%d titles)\n", len(books))
		fmt.Println("─────────────────────────────────────────────────────────")
		for i, b := range books {
			fmt.Printf("%d. %s (ID: %s)\n", i+1, b.Title, b.ID)
			fmt.Printf("   Author: %s | Category: %s | ISBN: %s\n", b.Author, b.Category, b.ISBN)
			fmt.Printf("   Available: %d/%d\n", b.Available, b.Quantity)
		}
		return nil
	},
}

var borrowCmd = &cobra.Command{
	Use:   "borrow [user_id] [book_id]",
	Short: "Lend a copy of a book to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days < 0 {
			return fmt.Errorf("--days must not be negative")
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		due := time.Now().UTC().AddDate(0, 0, days)
		txn, err := newClient().Borrow(ctx, args[0], args[1], due)
		if err != nil {
			return fmt.Errorf("borrow failed: %w", err)
		}

		fmt.Printf("✓ Loan %s recorded, due %s\n", txn.ID, txn.DueDate.Format("Jan 2, 2006"))
		return nil
	},
}

var returnCmd = &cobra.Command{
	Use:   "return [transaction_id]",
	Short: "Mark a loan as returned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		txn, err := newClient().Return(ctx, args[0])
		if err != nil {
			return fmt.Errorf("return failed: %w", err)
		}

		fmt.Printf("✓ Loan %s is %s\n", txn.ID, txn.Status)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		s, err := newClient().Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		fmt.Printf("Books:     %d titles, %d copies available\n", s.TotalBooks, s.AvailableBooks)
		fmt.Printf("Users:     %d\n", s.TotalUsers)
		fmt.Printf("Borrowed:  %d\n", s.BorrowedBooks)
		fmt.Printf("Overdue:   %d\n", s.OverdueBooks)
		return nil
	},
}

func init() {
	borrowCmd.Flags().Int("days", 14, "loan length in days")
}
