// Package report builds CSV exports from query snapshots. It reads only
// what the query operations return; no core logic depends on it.
package report

import (
	"bytes"
	"encoding/csv"

	"github.com/contafacil/bill-engine/billing"
	"github.com/contafacil/bill-engine/worklog"
)

// PayablesCSV renders payable entries with the table's display headers.
// Synthetic rows are included; they are part of what is owed.
func PayablesCSV(entries []billing.PayableEntry) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Descrição", "Valor", "Data de Vencimento", "Status", "Data de Pagamento", "Origem"})
	for _, e := range entries {
		w.Write([]string{
			e.Description,
			e.Amount.StringFixed(2),
			e.DueDate.String(),
			string(e.Status),
			e.PaymentDate.String(),
			string(e.Origin),
		})
	}
	w.Flush()
	return buf.Bytes()
}

// WorklogCSV renders service-ledger events with the legacy headers.
func WorklogCSV(events []worklog.Event) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Funcionario", "Equipamento", "Dia", "Valor diaria", "Pedidos de compra", "Situação"})
	for _, e := range events {
		w.Write([]string{
			e.Worker,
			e.Equipment,
			e.Date.String(),
			e.Amount.Abs().StringFixed(2),
			e.Reference,
			e.RunningBalance.StringFixed(2),
		})
	}
	w.Flush()
	return buf.Bytes()
}
