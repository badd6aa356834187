/*
Package csvfile persists the billing and worklog tables as flat CSV files,
one file per table, with the legacy Portuguese headers.

PURPOSE:
  This is the primary backend and the interchange format: files written
  here are readable by the spreadsheet tooling the tables originated in.

FILES (under the configured data directory):
  contas.csv       Outstanding payables
  historico.csv    Historical (paid) payables, Status always "Paga"
  recorrentes.csv  Recurring templates
  servicos.csv     Service ledger

TOLERANCE CONTRACT:
  - An absent file bootstraps to an empty table.
  - A missing expected column is backfilled with its default
    (Data de Pagamento -> empty, Origem -> "Manual", Ativa -> true).
  - The table decides a row's status: contas.csv rows always load as
    "Pendente" (a stray "Paga" is logged and ignored, its payment date
    discarded), historico.csv rows always as "Paga".
  - Malformed dates and amounts are coerced to zero values and logged at
    warn; the original malformed text is discarded. A corrupt file
    degrades, it does not block startup.
  - Unknown frequency labels coerce to "Anual" with a warn log. The core
    enum never sees the raw string.

WRITE SEMANTICS:
  Every save rewrites the whole table: header row plus all rows, via a
  temp file renamed over the target so a crash mid-write cannot leave a
  half-table behind.

SEE ALSO:
  - billing/store.go: Interface definitions and the bootstrap contract
  - store/sqlite: Same interfaces over SQLite
*/
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/contafacil/bill-engine/billing"
	"github.com/contafacil/bill-engine/worklog"
)

const (
	outstandingFile = "contas.csv"
	historicalFile  = "historico.csv"
	templatesFile   = "recorrentes.csv"
	worklogFile     = "servicos.csv"
)

var payableHeader = []string{"Descrição", "Valor", "Data de Vencimento", "Status", "Data de Pagamento", "Origem"}
var templateHeader = []string{"Descrição", "Valor", "Próximo Vencimento", "Frequência", "Dia Vencimento", "Última Geração", "Ativa"}
var worklogHeader = []string{"Funcionario", "Equipamento", "Dia", "Valor diaria", "Pedidos de compra", "Situação"}

// Store implements billing.Store and worklog.EventStore over CSV files in
// a single directory.
type Store struct {
	dir string
	mu  sync.Mutex
	log zerolog.Logger
}

// New creates the data directory if needed and returns a store over it.
func New(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, log: log.With().Str("component", "csvstore").Logger()}, nil
}

// =============================================================================
// PAYABLE TABLES
// =============================================================================

func (s *Store) LoadOutstanding(ctx context.Context) ([]billing.PayableEntry, error) {
	return s.loadPayables(outstandingFile, billing.StatusPending)
}

func (s *Store) SaveOutstanding(ctx context.Context, entries []billing.PayableEntry) error {
	return s.savePayables(outstandingFile, entries, false)
}

func (s *Store) LoadHistorical(ctx context.Context) ([]billing.PayableEntry, error) {
	return s.loadPayables(historicalFile, billing.StatusPaid)
}

func (s *Store) SaveHistorical(ctx context.Context, entries []billing.PayableEntry) error {
	return s.savePayables(historicalFile, entries, true)
}

// loadPayables reads one payable table. tableStatus is the status every
// row of the file carries by virtue of which file it is, not a per-row
// default.
func (s *Store) loadPayables(file string, tableStatus billing.Status) ([]billing.PayableEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, idx, err := s.readTable(file)
	if err != nil {
		return nil, err
	}

	var entries []billing.PayableEntry
	for _, row := range rows {
		origin := billing.Origin(cell(row, idx, "Origem", string(billing.OriginManual)))
		if origin != billing.OriginRecurring {
			origin = billing.OriginManual
		}
		e := billing.PayableEntry{
			ID:          billing.NewEntryID(),
			Description: cell(row, idx, "Descrição", ""),
			Amount:      s.lenientDecimal(file, cell(row, idx, "Valor", "")),
			DueDate:     s.lenientDate(file, cell(row, idx, "Data de Vencimento", "")),
			Status:      tableStatus,
			Origin:      origin,
		}
		// The table a row lives in decides its status. A stray "Paga" in
		// contas.csv must not produce a paid entry inside the outstanding
		// partition, so the Status and Data de Pagamento cells only count
		// for historical rows.
		if tableStatus == billing.StatusPaid {
			e.PaymentDate = s.lenientDate(file, cell(row, idx, "Data de Pagamento", ""))
		} else if raw := cell(row, idx, "Status", ""); raw != "" && billing.Status(raw) != billing.StatusPending {
			s.log.Warn().Str("file", file).Str("value", raw).Msg("ignoring status on outstanding row")
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) savePayables(file string, entries []billing.PayableEntry, historical bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := string(e.Status)
		if historical {
			status = string(billing.StatusPaid)
		}
		rows = append(rows, []string{
			e.Description,
			e.Amount.String(),
			e.DueDate.String(),
			status,
			e.PaymentDate.String(),
			string(e.Origin),
		})
	}
	return s.writeTable(file, payableHeader, rows)
}

// =============================================================================
// TEMPLATE TABLE
// =============================================================================

func (s *Store) LoadTemplates(ctx context.Context) ([]*billing.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, idx, err := s.readTable(templatesFile)
	if err != nil {
		return nil, err
	}

	var templates []*billing.RecurringTemplate
	for _, row := range rows {
		freq, err := billing.ParseFrequency(cell(row, idx, "Frequência", string(billing.FrequencyMonthly)))
		if err != nil {
			// Legacy files may carry labels this engine does not know;
			// coerce rather than refuse to start.
			s.log.Warn().Str("file", templatesFile).Err(err).Msg("coercing unknown frequency to Anual")
			freq = billing.FrequencyAnnual
		}
		dueDay := s.lenientInt(templatesFile, cell(row, idx, "Dia Vencimento", "1"))
		if dueDay < 1 || dueDay > 31 {
			dueDay = 1
		}
		templates = append(templates, &billing.RecurringTemplate{
			ID:            billing.NewTemplateID(),
			Description:   cell(row, idx, "Descrição", ""),
			Amount:        s.lenientDecimal(templatesFile, cell(row, idx, "Valor", "")),
			Frequency:     freq,
			DueDay:        dueDay,
			NextDue:       s.lenientDate(templatesFile, cell(row, idx, "Próximo Vencimento", "")),
			LastGenerated: s.lenientDate(templatesFile, cell(row, idx, "Última Geração", "")),
			Active:        parseBool(cell(row, idx, "Ativa", "True")),
		})
	}
	return templates, nil
}

func (s *Store) SaveTemplates(ctx context.Context, templates []*billing.RecurringTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]string, 0, len(templates))
	for _, t := range templates {
		rows = append(rows, []string{
			t.Description,
			t.Amount.String(),
			t.NextDue.String(),
			string(t.Frequency),
			strconv.Itoa(t.DueDay),
			t.LastGenerated.String(),
			formatBool(t.Active),
		})
	}
	return s.writeTable(templatesFile, templateHeader, rows)
}

// =============================================================================
// SERVICE-LEDGER TABLE
// =============================================================================

// A row is a purchase order when "Pedidos de compra" is populated and a
// service otherwise. Purchase orders store the order value in the
// "Valor diaria" column; both row shapes keep it positive, the sign lives
// in the row shape.
func (s *Store) LoadEvents(ctx context.Context) ([]worklog.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, idx, err := s.readTable(worklogFile)
	if err != nil {
		return nil, err
	}

	var events []worklog.Event
	for _, row := range rows {
		value := s.lenientDecimal(worklogFile, cell(row, idx, "Valor diaria", ""))
		reference := cell(row, idx, "Pedidos de compra", "")
		e := worklog.Event{
			ID:   worklog.NewEventID(),
			Date: s.lenientDate(worklogFile, cell(row, idx, "Dia", "")),
			// Situação is recomputed on load; the stored value is display-only.
		}
		if reference != "" {
			e.Kind = worklog.KindPurchaseOrder
			e.Reference = reference
			e.Amount = value
		} else {
			e.Kind = worklog.KindService
			e.Worker = cell(row, idx, "Funcionario", "")
			e.Equipment = cell(row, idx, "Equipamento", "")
			e.Amount = value.Neg()
		}
		events = append(events, e)
	}
	return events, nil
}

func (s *Store) SaveEvents(ctx context.Context, events []worklog.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Worker,
			e.Equipment,
			e.Date.String(),
			e.Amount.Abs().String(),
			e.Reference,
			e.RunningBalance.String(),
		})
	}
	return s.writeTable(worklogFile, worklogHeader, rows)
}

// =============================================================================
// TABLE I/O
// =============================================================================

// readTable returns the data rows and a header-name -> column index map.
// An absent file is an empty table.
func (s *Store) readTable(file string) ([][]string, map[string]int, error) {
	path := filepath.Join(s.dir, file)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, map[string]int{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", file, err)
	}
	if len(records) == 0 {
		return nil, map[string]int{}, nil
	}

	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[strings.TrimSpace(name)] = i
	}
	return records[1:], idx, nil
}

// writeTable rewrites the whole table atomically (temp file + rename).
func (s *Store) writeTable(file string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, file)
	tmp, err := os.CreateTemp(s.dir, file+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", file, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", file, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// cell reads a named column from a row, falling back to the default when
// the column is missing from the file or the row is short.
func cell(row []string, idx map[string]int, name, fallback string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return fallback
	}
	return strings.TrimSpace(row[i])
}

// =============================================================================
// LENIENT PARSING
// =============================================================================

func (s *Store) lenientDate(file, raw string) billing.Date {
	d, err := billing.ParseDate(raw)
	if err != nil {
		s.log.Warn().Str("file", file).Str("value", raw).Msg("coercing unparseable date to empty")
		return billing.Date{}
	}
	return d
}

func (s *Store) lenientDecimal(file, raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		s.log.Warn().Str("file", file).Str("value", raw).Msg("coercing unparseable amount to zero")
		return decimal.Zero
	}
	return d
}

func (s *Store) lenientInt(file, raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		s.log.Warn().Str("file", file).Str("value", raw).Msg("coercing unparseable integer to zero")
		return 0
	}
	return n
}

// parseBool accepts both Go-style and spreadsheet-style booleans.
func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "sim", "yes":
		return true
	}
	return false
}

// formatBool keeps the spreadsheet-style capitalization legacy files use.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
