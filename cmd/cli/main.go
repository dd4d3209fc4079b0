package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/payledger/internal/adapter/http/dto"
	"github.com/iho/payledger/internal/infrastructure/config"
	"github.com/iho/payledger/internal/infrastructure/logger"
	"github.com/iho/payledger/internal/infrastructure/postgres"
)

var (
	baseURL     string
	timeout     time.Duration
	databaseURL string
)

// errInconsistent makes the process exit non-zero after the report was printed.
var errInconsistent = errors.New("ledger is inconsistent")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "payledger-cli",
		Short:         "PayLedger CLI tool",
		Long:          `A command line interface for operating the PayLedger API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the PayLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(ledgerCmd(), partyCmd(), sequenceCmd(), migrateCmd())
	return rootCmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency(cmd.Context(), newClient(), cmd.OutOrStdout())
		},
	})

	return cmd
}

func partyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "party",
		Short: "Customer and supplier read models",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "balances <customer|supplier> <party-id>",
		Short: "Show outstanding debt and available credit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.BalancesResponse
			if err := newClient().get(cmd.Context(), partyPath(args[0], args[1], "balances"), &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	})

	var limit, offset int
	ledger := &cobra.Command{
		Use:   "ledger <customer|supplier> <party-id>",
		Short: "List the party's ledger documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", fmt.Sprint(limit))
			q.Set("offset", fmt.Sprint(offset))

			var page dto.LedgerPageResponse
			if err := newClient().get(cmd.Context(), partyPath(args[0], args[1], "ledger")+"?"+q.Encode(), &page); err != nil {
				return err
			}
			return printLedger(cmd.OutOrStdout(), &page)
		},
	}
	ledger.Flags().IntVar(&limit, "limit", 50, "Page size")
	ledger.Flags().IntVar(&offset, "offset", 0, "Page offset")
	cmd.AddCommand(ledger)

	var from, to string
	statement := &cobra.Command{
		Use:   "statement <customer|supplier> <party-id>",
		Short: "Show the running-balance statement for a period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("from", from)
			q.Set("to", to)

			var st dto.StatementResponse
			if err := newClient().get(cmd.Context(), partyPath(args[0], args[1], "statement")+"?"+q.Encode(), &st); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
	statement.Flags().StringVar(&from, "from", "", "Period start (YYYY-MM-DD)")
	statement.Flags().StringVar(&to, "to", "", "Period end (YYYY-MM-DD)")
	_ = statement.MarkFlagRequired("from")
	_ = statement.MarkFlagRequired("to")
	cmd.AddCommand(statement)

	return cmd
}

func sequenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Numbering sequences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "next <scope>",
		Short: "Issue the next number of a scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.SequenceNumberResponse
			if err := newClient().do(cmd.Context(), http.MethodPost, "/api/v1/sequences/"+url.PathEscape(args[0])+"/next", &out); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", out.Scope, out.Number)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "peek <scope>",
		Short: "Show the next number without issuing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out dto.SequenceResponse
			if err := newClient().get(cmd.Context(), "/api/v1/sequences/"+url.PathEscape(args[0]), &out); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: next %d\n", out.Scope, out.NextNumber)
			return err
		},
	})

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL != "" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			databaseURL = cfg.DatabaseURL
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, cliLogger(cmd.ErrOrStderr()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, cliLogger(cmd.ErrOrStderr()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := postgres.MigrationVersion(databaseURL)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %v\n", version, dirty)
			return err
		},
	})

	return cmd
}

func cliLogger(w io.Writer) zerolog.Logger {
	return logger.New(logger.Config{Level: "info", Format: "console", Output: w})
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newClient() *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, out)
}

// do sends a bodiless request and decodes a 2xx JSON response into out.
func (c *apiClient) do(ctx context.Context, method, path string, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func apiError(status int, body []byte) error {
	var e dto.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		if e.Message != "" {
			return fmt.Errorf("api error (status %d): %s: %s", status, e.Error, e.Message)
		}
		return fmt.Errorf("api error (status %d): %s", status, e.Error)
	}
	return fmt.Errorf("api error (status %d): %s", status, truncate(string(body), 200))
}

func checkConsistency(ctx context.Context, c *apiClient, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/ledger/consistency", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// 409 carries the full report of a failed check.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		return apiError(resp.StatusCode, body)
	}

	var report dto.ConsistencyResponse
	if err := json.Unmarshal(body, &report); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if report.Consistent {
		fmt.Fprintf(w, "Consistency check PASSED (%d documents)\n", report.DocumentsChecked)
		return nil
	}

	fmt.Fprintf(w, "Consistency check FAILED (%d documents, %d issues)\n", report.DocumentsChecked, len(report.Issues))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tKIND\tAMOUNT\tPENDING\tALLOCATED\tPROBLEM")
	for _, is := range report.Issues {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			is.DocumentID, is.Kind, is.AmountBase, is.PendingBase, is.AllocatedBase, is.Problem)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return errInconsistent
}

func printLedger(w io.Writer, page *dto.LedgerPageResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tKIND\tREF\tAMOUNT\tPENDING\tSTATUS")
	for _, d := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.DocumentDate.Format(dto.DateLayout), d.Kind, truncate(d.ExternalRefNumber, 20),
			d.AmountBase.StringFixed(2), d.PendingBase.StringFixed(2), d.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "showing %d of %d (offset %d)\n", len(page.Items), page.Total, page.Offset)
	return err
}

// partyPath accepts the singular or plural party type.
func partyPath(partyType, partyID, resource string) string {
	pt := strings.ToLower(partyType)
	if !strings.HasSuffix(pt, "s") {
		pt += "s"
	}
	return fmt.Sprintf("/api/v1/%s/%s/%s", url.PathEscape(pt), url.PathEscape(partyID), resource)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
