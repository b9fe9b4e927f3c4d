// Package google reads legacy ledger rows from a Google Sheet and writes the
// cashflow history back to one.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

type Options struct {
	SpreadsheetID string
	LedgerSheet   string
	CashflowSheet string
	// CredentialsFile is a service account key. GOOGLE_SERVICE_ACCOUNT_JSON
	// takes precedence when set.
	CredentialsFile string
	// OAuthClientFile and OAuthTokenFile authenticate as a user instead,
	// with a token saved by fintrack-oauth-init.
	OAuthClientFile string
	OAuthTokenFile  string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
	cashflowSheet string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if opts.LedgerSheet == "" {
		opts.LedgerSheet = "Transactions"
	}
	if opts.CashflowSheet == "" {
		opts.CashflowSheet = "Cashflow"
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		ledgerSheet:   opts.LedgerSheet,
		cashflowSheet: opts.CashflowSheet,
	}, nil
}

// newSheetsService authenticates with inline service account JSON, then an
// OAuth user token, then a service account key file.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	useOAuth := opts.OAuthClientFile != "" && opts.OAuthTokenFile != ""

	var auth goption.ClientOption
	switch {
	case inline != "":
		auth = goption.WithCredentialsJSON([]byte(inline))
	case useOAuth:
		ts, err := oauthTokenSource(ctx, opts.OAuthClientFile, opts.OAuthTokenFile)
		if err != nil {
			return nil, err
		}
		auth = goption.WithTokenSource(ts)
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		auth = goption.WithCredentialsJSON(b)
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx, auth, goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "oauth", useOAuth && inline == "")
	return svc, nil
}

// OAuthConfig reads an OAuth client file for the Sheets scope.
func OAuthConfig(clientFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(clientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	cfg, err := goauth.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

func oauthTokenSource(ctx context.Context, clientFile, tokenFile string) (oauth2.TokenSource, error) {
	cfg, err := OAuthConfig(clientFile)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}
	return cfg.TokenSource(ctx, &tok), nil
}

// ReadLedger returns every data row of the ledger sheet as a raw record.
// The first row names the columns.
func (c *Client) ReadLedger(ctx context.Context) ([]core.RawRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:Z", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	recs, skipped := rowsToRecords(resp.Values)
	slog.InfoContext(ctx, "Ledger sheet read",
		"sheet", c.ledgerSheet,
		"rows", len(resp.Values),
		"records", len(recs),
		"skipped", skipped)
	return recs, nil
}

// ExportCashflow replaces the cashflow sheet with the given history.
func (c *Client) ExportCashflow(ctx context.Context, points []analytics.CashflowPoint) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:E", c.cashflowSheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	vr := &gsheet.ValueRange{Values: cashflowRows(points)}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", c.cashflowSheet), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", c.cashflowSheet, err)
	}
	return nil
}
