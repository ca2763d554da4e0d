// Package sheets fetches tabular data from the Google Sheet that acts as the
// system of record for client rows and access credentials.
//
// Two modes are supported: the authenticated Sheets API (service account) and
// the unauthenticated CSV export endpoint of a public sheet. Both return rows
// in the fixed, schema-defined column order with the header row discarded.
package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/otaviobp/agendasync/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// fetchTimeout bounds every round-trip to the spreadsheet.
const fetchTimeout = 30 * time.Second

// ErrSemDados is returned when the requested range holds no rows at all.
var ErrSemDados = errors.New("nenhum dado encontrado na planilha")

// Config selects the spreadsheet, the ranges and the credential sources.
type Config struct {
	SpreadsheetID string
	ClienteRange  string
	UsuarioRange  string

	// CredentialsJSON is an inline service-account key. When empty, the
	// adapter falls back to SecretFile then LocalFile; the first existing
	// source wins.
	CredentialsJSON string
	SecretFile      string
	LocalFile       string

	// PublicCSV fetches through the CSV export endpoint instead of the API.
	PublicCSV bool
}

// Client reads ranges from the configured spreadsheet.
type Client struct {
	cfg     Config
	log     *zap.Logger
	http    *http.Client
	csvBase string
}

// New creates a Client. log must not be nil.
func New(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:     cfg,
		log:     log,
		http:    &http.Client{Timeout: fetchTimeout},
		csvBase: "https://docs.google.com",
	}
}

// FetchClientes returns the client rows of the sheet, header discarded.
// Rows whose nome column is empty after trimming are filtered out.
func (c *Client) FetchClientes(ctx context.Context) ([]models.SheetCliente, error) {
	rows, err := c.fetchRange(ctx, c.cfg.ClienteRange)
	if err != nil {
		return nil, err
	}

	clientes := make([]models.SheetCliente, 0, len(rows))
	for _, row := range rows {
		cliente := models.SheetCliente{
			SA:          col(row, 0),
			Nome:        col(row, 1),
			Telefone:    col(row, 2),
			Endereco:    col(row, 3),
			TipoServico: col(row, 4),
			MicroTerr:   col(row, 5),
			Plano:       col(row, 6),
			Verificador: col(row, 7),
			Cidade:      col(row, 8),
		}
		if cliente.Nome == "" {
			continue
		}
		clientes = append(clientes, cliente)
	}
	return clientes, nil
}

// FetchCredenciais returns the access rows of the sheet (nome, email, senha).
// Rows missing any of the three fields are filtered out.
func (c *Client) FetchCredenciais(ctx context.Context) ([]models.Credencial, error) {
	rows, err := c.fetchRange(ctx, c.cfg.UsuarioRange)
	if err != nil {
		return nil, err
	}

	credenciais := make([]models.Credencial, 0, len(rows))
	for _, row := range rows {
		cred := models.Credencial{
			Nome:  col(row, 0),
			Email: col(row, 1),
			Senha: col(row, 2),
			Role:  models.RoleOperador,
		}
		if cred.Nome == "" || cred.Email == "" || cred.Senha == "" {
			continue
		}
		credenciais = append(credenciais, cred)
	}
	return credenciais, nil
}

// FindCredencialPorEmail fetches the access sheet and returns the credential
// whose email matches, case-insensitively. Returns (nil, nil) when no row
// matches.
func (c *Client) FindCredencialPorEmail(ctx context.Context, email string) (*models.Credencial, error) {
	credenciais, err := c.FetchCredenciais(ctx)
	if err != nil {
		return nil, err
	}
	for i := range credenciais {
		if strings.EqualFold(credenciais[i].Email, email) {
			return &credenciais[i], nil
		}
	}
	return nil, nil
}

// fetchRange returns the rows of rng without the header row. The error is
// always the whole story: no partial data is ever returned.
func (c *Client) fetchRange(ctx context.Context, rng string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	var (
		rows [][]string
		err  error
	)
	if c.cfg.PublicCSV {
		rows, err = c.fetchCSV(ctx, rng)
	} else {
		rows, err = c.fetchAPI(ctx, rng)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrSemDados
	}

	// First row is the header; data starts at row 2.
	return rows[1:], nil
}

func (c *Client) fetchAPI(ctx context.Context, rng string) ([][]string, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, fmt.Errorf("criar cliente sheets: %w", err)
	}

	resp, err := svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("buscar intervalo %q: %w", rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = strings.TrimSpace(fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// service builds the Sheets API client, resolving the service-account key
// from the first available source: inline blob, secret file, local file.
// With none present the API client falls back to application default
// credentials.
func (c *Client) service(ctx context.Context) (*sheetsapi.Service, error) {
	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope)}
	switch {
	case c.cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(c.cfg.CredentialsJSON)))
	case fileExists(c.cfg.SecretFile):
		opts = append(opts, option.WithCredentialsFile(c.cfg.SecretFile))
	case fileExists(c.cfg.LocalFile):
		opts = append(opts, option.WithCredentialsFile(c.cfg.LocalFile))
	default:
		c.log.Debug("nenhuma credencial de service account encontrada, usando application default")
	}
	return sheetsapi.NewService(ctx, opts...)
}

// fetchCSV reads the public CSV export of the sheet named in rng.
func (c *Client) fetchCSV(ctx context.Context, rng string) ([][]string, error) {
	aba := rng
	if i := strings.Index(rng, "!"); i >= 0 {
		aba = rng[:i]
	}

	csvURL := fmt.Sprintf(
		"%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		c.csvBase, c.cfg.SpreadsheetID, url.QueryEscape(aba),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, fmt.Errorf("montar requisição csv: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("baixar csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("baixar csv: status %s", resp.Status)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("interpretar csv: %w", err)
	}

	for _, row := range records {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return records, nil
}

// col returns the trimmed cell at index i, or "" when the row is short.
func col(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
