package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	postgresRepo "github.com/iho/storeledger/internal/adapter/repository/postgres"
	"github.com/iho/storeledger/internal/infrastructure/auth"
	"github.com/iho/storeledger/internal/infrastructure/config"
	"github.com/iho/storeledger/internal/infrastructure/logger"
	"github.com/iho/storeledger/internal/infrastructure/postgres"
	"github.com/iho/storeledger/internal/usecase"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

// bcryptGenerate is swapped in tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "storeledger-cli",
		Short:         "StoreLedger CLI tool",
		Long:          `A command line interface for the StoreLedger admin API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the StoreLedger API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("STORELEDGER_TOKEN"), "Session token (defaults to $STORELEDGER_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		loginCmd(),
		statsCmd(),
		transactionsCmd(),
		rateCmd(),
		hashPasswordCmd(),
		migrateCmd(),
		createAdminCmd(),
	)

	return rootCmd
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and print a session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.LoginResponse
			req := dto.LoginRequest{Email: args[0], Password: args[1]}
			if err := newAPIClient().do(cmd.Context(), http.MethodPost, "/api/v1/auth/login", nil, req, &resp); err != nil {
				return err
			}
			fmt.Println(resp.Token)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	var filter, start, end, currency, rate string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show revenue, cost and profit statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIfNotEmpty(q, "date_filter", filter)
			setIfNotEmpty(q, "start_date", start)
			setIfNotEmpty(q, "end_date", end)
			setIfNotEmpty(q, "currency", currency)
			setIfNotEmpty(q, "exchange_rate", rate)

			var stats dto.StatsResponse
			if err := newAPIClient().do(cmd.Context(), http.MethodGet, "/api/v1/transactions/stats", q, nil, &stats); err != nil {
				return err
			}
			printStats(os.Stdout, &stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Date filter: today, week, month, custom or all")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD) for the custom filter")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD) for the custom filter")
	cmd.Flags().StringVar(&currency, "currency", "", "Reporting currency")
	cmd.Flags().StringVar(&rate, "rate", "", "Exchange rate override")

	return cmd
}

func transactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "List recent transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var txs []dto.TransactionResponse
			if err := newAPIClient().do(cmd.Context(), http.MethodGet, "/api/v1/transactions", nil, nil, &txs); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tDATE\tPRODUCT\tCLIENT\tAMOUNT\tSTATUS")
			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f %s\t%s\n",
					tx.TransactionCode,
					tx.TransactionDate.Format("2006-01-02 15:04"),
					truncate(tx.ProductName, 24),
					truncate(tx.ClientTelegram, 20),
					tx.Amount, tx.Currency,
					tx.Status,
				)
			}
			return w.Flush()
		},
	}
}

func rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate",
		Short: "Show the current exchange rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			var rate dto.ExchangeRateResponse
			if err := newAPIClient().do(cmd.Context(), http.MethodGet, "/api/v1/exchange-rate", nil, nil, &rate); err != nil {
				return err
			}
			printJSON(rate)
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), cost)
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	run := func(apply func(*postgres.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithDotEnv()
			if err != nil {
				return err
			}

			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})
			mg, err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log)
			if err != nil {
				return err
			}
			defer mg.Close()

			return apply(mg)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: run((*postgres.Migrator).Up)},
		&cobra.Command{Use: "down", Short: "Roll back all migrations", RunE: run((*postgres.Migrator).Down)},
	)

	return cmd
}

func createAdminCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account directly in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithDotEnv()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, 2, 0)
			if err != nil {
				return err
			}
			defer pool.Close()

			users := usecase.NewUserUseCase(
				postgresRepo.NewUserRepository(pool),
				auth.NewBcryptHasher(cfg.BcryptCost),
				nil,
				postgresRepo.NewULIDGenerator(),
				nil,
			)

			user, err := users.CreateUser(ctx, usecase.CreateUserInput{
				Email:    email,
				Password: password,
				FullName: name,
				IsAdmin:  true,
			})
			if err != nil {
				return err
			}

			fmt.Printf("created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	cmd.Flags().StringVar(&name, "name", "Administrator", "Full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends a JSON request and decodes a successful response into out.
func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printStats(w io.Writer, s *dto.StatsResponse) {
	fmt.Fprintf(w, "Window:       %s .. %s (%s)\n", s.Window.StartDate, s.Window.EndDate, s.Window.Filter)
	fmt.Fprintf(w, "Currency:     %s (rate %.2f)\n", s.Currency, s.ExchangeRate)
	fmt.Fprintf(w, "Revenue:      %.2f\n", s.TotalRevenue)
	fmt.Fprintf(w, "Costs:        %.2f (transactions %.2f, expenses %.2f)\n", s.TotalCosts, s.TransactionCosts, s.ExpenseCosts)
	fmt.Fprintf(w, "Profit:       %.2f\n", s.TotalProfit)
	fmt.Fprintf(w, "Transactions: %d completed, %d pending, %d failed\n", s.CompletedCount, s.PendingCount, s.FailedCount)

	if len(s.ProductAnalytics) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nPRODUCT\tSALES\tREVENUE\tPROFIT")
	for _, p := range s.ProductAnalytics {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\n", truncate(p.Name, 32), p.SalesCount, p.TotalRevenue, p.TotalProfit)
	}
	_ = tw.Flush()
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
