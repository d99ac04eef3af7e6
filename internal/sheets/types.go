package sheets

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/service"
)

// Sheet titles.
const (
	SummarySheet = "Summary"
	RecordsSheet = "Records"
)

// ClassRow represents a single row of the class breakdown on the Summary tab.
type ClassRow struct {
	AbuseType   model.AbuseType
	TotalAmount decimal.Decimal
	MeanAmount  decimal.Decimal
	Count       int
	Share       decimal.Decimal
}

// classRows aggregates records per archetype in model.Archetypes order. Archetypes
// with no records are omitted.
func classRows(records []model.TransactionRecord) []ClassRow {
	totals := make(map[model.AbuseType]decimal.Decimal, len(model.Archetypes))
	counts := make(map[model.AbuseType]int, len(model.Archetypes))
	for i := range records {
		r := &records[i]
		totals[r.AbuseType] = totals[r.AbuseType].Add(decimal.NewFromFloat(r.OrderAmount))
		counts[r.AbuseType]++
	}

	rows := make([]ClassRow, 0, len(counts))
	for _, abuse := range model.Archetypes {
		n := counts[abuse]
		if n == 0 {
			continue
		}
		total := totals[abuse]
		rows = append(rows, ClassRow{
			AbuseType:   abuse,
			Count:       n,
			Share:       decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(int64(len(records)))).Round(4),
			TotalAmount: total.Round(2),
			MeanAmount:  total.Div(decimal.NewFromInt(int64(n))).Round(2),
		})
	}
	return rows
}

// summaryValues lays out the Summary tab.
func summaryValues(run service.RunSummary, records []model.TransactionRecord) [][]any {
	abuse := 0
	for i := range records {
		if records[i].IsAbuse {
			abuse++
		}
	}
	rate := decimal.Zero
	if len(records) > 0 {
		rate = decimal.NewFromInt(int64(abuse)).Div(decimal.NewFromInt(int64(len(records)))).Round(4)
	}

	values := [][]any{
		{"Abuse Dataset", run.ID},
		{},
		{"Summary"},
		{"Created", run.CreatedAt.UTC().Format(model.DateTimeLayout)},
		{"Window", fmt.Sprintf("%s - %s", run.Start.UTC().Format(model.DateTimeLayout), run.End.UTC().Format(model.DateTimeLayout))},
		{"Seed", run.Seed},
		{"Records", len(records)},
		{"Abuse Rate", rate.StringFixed(4)},
		{},
		{"Class Breakdown"},
		{"Abuse Type", "Count", "Share", "Total Amount", "Mean Amount"},
	}
	for _, row := range classRows(records) {
		values = append(values, []any{
			string(row.AbuseType),
			row.Count,
			row.Share.StringFixed(4),
			row.TotalAmount.StringFixed(2),
			row.MeanAmount.StringFixed(2),
		})
	}
	if run.Config != "" {
		values = append(values, []any{}, []any{"Configuration", run.Config})
	}
	return values
}

// recordValues lays out the Records tab: a header row followed by one row per record.
func recordValues(records []model.TransactionRecord) [][]any {
	values := make([][]any, 0, len(records)+1)
	values = append(values, toRow(model.Columns))
	for i := range records {
		values = append(values, toRow(records[i].Values()))
	}
	return values
}

func toRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}
