package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cohortpulse/cohortpulse/internal/analysis"
	"github.com/cohortpulse/cohortpulse/internal/config"
	"github.com/cohortpulse/cohortpulse/internal/output"
	"github.com/cohortpulse/cohortpulse/internal/record"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Retention analysis over an orders CSV",
	Long: `Run the full retention pipeline over an orders CSV: cohort assignment by
first-purchase month, retention and revenue matrices, derived KPIs, and
ranked insights.

The file must carry order_date, customer_id, and order_amount columns.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagNoColor {
		output.SetNoColor(true)
	}

	rows, err := loadRows(args[0])
	if err != nil {
		return err
	}
	if missing := record.OrderColumns(rows); len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	orders, rowErrs, err := record.NormalizeOrders(rows, flagStrict || cfg.Strict)
	if err != nil {
		return err
	}

	resp := analysis.Run(orders)
	resp.SkippedRows = len(rowErrs)

	if flagJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printSummary(resp)
	printInsights(resp)
	printRetentionTables(resp)
	printSegments(resp)

	if resp.SkippedRows > 0 {
		fmt.Println(output.StyleMuted.Render(
			fmt.Sprintf("\n %d row(s) skipped during normalization", resp.SkippedRows)))
	}
	return nil
}

func printSummary(resp *analysis.Response) {
	fmt.Println(output.Section("Summary"))
	line := func(label, value string) {
		fmt.Printf(" %s%s\n", output.StyleLabel.Render(label), output.StyleBold.Render(value))
	}
	line("Total orders", strconv.Itoa(resp.Summary.TotalOrders))
	line("Unique customers", strconv.Itoa(resp.Summary.UniqueCustomers))
	line("Total revenue", output.FormatCurrency(resp.Summary.TotalRevenue))
	line("Date range", resp.Summary.DateRange)
	line("Cohorts", strconv.Itoa(resp.Summary.NumCohorts))

	fmt.Println(output.Section("Metrics"))
	line("AOV", fmt.Sprintf("$%.2f", resp.Metrics.AOV))
	line("LTV (projected)", fmt.Sprintf("$%.2f", resp.Metrics.LTV))
	line("Repeat rate", output.FormatPercent(resp.Metrics.RepeatRate))
	line("Orders per customer", fmt.Sprintf("%.1f", resp.Metrics.AvgOrdersPerCustomer))
	line("Repeat customers", strconv.Itoa(resp.Metrics.RepeatCustomers))
	line("One-time customers", strconv.Itoa(resp.Metrics.OneTimeCustomers))
}

func printInsights(resp *analysis.Response) {
	if len(resp.Insights) == 0 {
		return
	}
	fmt.Println(output.Section("Insights"))
	for _, ins := range resp.Insights {
		fmt.Printf(" %s %s\n   %s\n",
			output.InsightBadge(ins.Type),
			output.StyleBold.Render(ins.Title),
			output.StyleMuted.Render(ins.Text))
	}
}

func printRetentionTables(resp *analysis.Response) {
	offsets := tableOffsets(resp.RetentionTable)
	if len(offsets) == 0 {
		return
	}

	fmt.Println(output.Section("Retention (%)"))
	printCohortTable(resp.RetentionTable, offsets, output.HeatPercent)

	fmt.Println(output.Section("Revenue"))
	printCohortTable(resp.RevenueTable, offsets, output.FormatCurrency)
}

func printSegments(resp *analysis.Response) {
	if len(resp.FrequencySegments) > 0 {
		fmt.Println(output.Section("Customers by purchase frequency"))
		t := output.NewTable("Segment", "Customers", "% of base", "Revenue", "Avg revenue", "Avg orders")
		t.AlignRight(1, 2, 3, 4, 5)
		for _, s := range resp.FrequencySegments {
			t.AddRow(s.Segment,
				strconv.Itoa(s.Customers),
				output.FormatPercent(s.CustomerPct),
				output.FormatCurrency(s.TotalRevenue),
				output.FormatCurrency(s.AvgRevenue),
				fmt.Sprintf("%.1f", s.AvgOrders))
		}
		t.Print()
	}

	if len(resp.RevenueSegments) > 0 {
		fmt.Println(output.Section("Customers by revenue tier"))
		t := output.NewTable("Segment", "Customers", "Revenue", "% of revenue", "Avg revenue", "Range")
		t.AlignRight(1, 2, 3, 4, 5)
		for _, s := range resp.RevenueSegments {
			t.AddRow(s.Segment,
				strconv.Itoa(s.Customers),
				output.FormatCurrency(s.TotalRevenue),
				output.FormatPercent(s.RevenuePct),
				output.FormatCurrency(s.AvgRevenue),
				fmt.Sprintf("%s-%s", output.FormatCurrency(s.MinRevenue), output.FormatCurrency(s.MaxRevenue)))
		}
		t.Print()
	}
}

// printCohortTable renders one cohort table: a leading cohort-month column,
// one column per observed offset. Absent cells render blank.
func printCohortTable(table analysis.Table, offsets []int, format func(float64) string) {
	headers := make([]string, 0, len(offsets)+1)
	headers = append(headers, "Cohort")
	for _, off := range offsets {
		headers = append(headers, "M"+strconv.Itoa(off))
	}
	t := output.NewTable(headers...)

	numeric := make([]int, len(offsets))
	for i := range offsets {
		numeric[i] = i + 1
	}
	t.AlignRight(numeric...)

	cohorts := make([]string, 0, len(table))
	for c := range table {
		cohorts = append(cohorts, c)
	}
	sort.Strings(cohorts)

	for _, c := range cohorts {
		row := make([]string, 0, len(offsets)+1)
		row = append(row, c)
		for _, off := range offsets {
			if v, ok := table[c][strconv.Itoa(off)]; ok {
				row = append(row, format(v))
			} else {
				row = append(row, "")
			}
		}
		t.AddRow(row...)
	}
	t.Print()
}

// tableOffsets collects the union of offset keys across cohorts, ascending.
func tableOffsets(table analysis.Table) []int {
	set := make(map[int]struct{})
	for _, row := range table {
		for k := range row {
			if n, err := strconv.Atoi(k); err == nil {
				set[n] = struct{}{}
			}
		}
	}
	offsets := make([]int, 0, len(set))
	for n := range set {
		offsets = append(offsets, n)
	}
	sort.Ints(offsets)
	return offsets
}
