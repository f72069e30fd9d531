package app

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cohortpulse/cohortpulse/internal/analysis"
	"github.com/cohortpulse/cohortpulse/internal/cohort"
	"github.com/cohortpulse/cohortpulse/internal/config"
	"github.com/cohortpulse/cohortpulse/internal/output"
	"github.com/cohortpulse/cohortpulse/internal/record"
)

var (
	matrixPayer       string
	matrixServiceType string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix <file.csv>",
	Short: "Payment waterfall matrix over a claims CSV",
	Long: `Build the date-of-service waterfall matrix from a claims CSV: one row per
service month with its deduplicated gross charge, one column per calendar
payment month, plus a totals row.

The file must carry claim_id, service_date, date_paid, billed_amount,
amount_paid, payer, and service_type columns.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatrix,
}

func init() {
	matrixCmd.Flags().StringVar(&matrixPayer, "payer", "", "Filter to a single payer")
	matrixCmd.Flags().StringVar(&matrixServiceType, "service-type", "", "Filter to a single service type")
	rootCmd.AddCommand(matrixCmd)
}

func runMatrix(cmd *cobra.Command, args []string) error {
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
	if missing := record.ClaimColumns(rows); len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	claims, rowErrs, err := record.NormalizeClaims(rows, flagStrict || cfg.Strict)
	if err != nil {
		return err
	}

	filter := cohort.Filter{Payer: matrixPayer, ServiceType: matrixServiceType}
	matrix := analysis.BuildMatrix(claims, filter)

	if flagJSON {
		data, err := json.MarshalIndent(matrix, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printMatrix(matrix, filter)
	printFilterValues(claims)

	if len(rowErrs) > 0 {
		fmt.Println(output.StyleMuted.Render(
			fmt.Sprintf("\n %d row(s) skipped during normalization", len(rowErrs))))
	}
	return nil
}

func printMatrix(m *analysis.MatrixData, filter cohort.Filter) {
	title := "Payment Waterfall"
	if !filter.IsZero() {
		var parts []string
		if filter.Payer != "" {
			parts = append(parts, "payer="+filter.Payer)
		}
		if filter.ServiceType != "" {
			parts = append(parts, "service_type="+filter.ServiceType)
		}
		title += " (" + strings.Join(parts, ", ") + ")"
	}
	fmt.Println(output.Section(title))

	if len(m.Matrix) == 0 {
		fmt.Println(output.StyleMuted.Render(" no rows match"))
		return
	}

	headers := make([]string, 0, len(m.PaymentMonths)+2)
	headers = append(headers, "DOS Month", "Gross Charge")
	headers = append(headers, m.PaymentMonths...)
	t := output.NewTable(headers...)

	numeric := make([]int, 0, len(m.PaymentMonths)+1)
	for i := 1; i < len(headers); i++ {
		numeric = append(numeric, i)
	}
	t.AlignRight(numeric...)

	addRow := func(label string, gross float64, payments map[string]float64) {
		row := make([]string, 0, len(headers))
		row = append(row, label, output.FormatCurrency(gross))
		for _, pm := range m.PaymentMonths {
			if v, ok := payments[pm]; ok {
				row = append(row, output.FormatCurrency(v))
			} else {
				row = append(row, "")
			}
		}
		t.AddRow(row...)
	}

	for _, row := range m.Matrix {
		addRow(row.DOSMonth, row.GrossCharge, row.Payments)
	}
	addRow("TOTAL", m.Totals.GrossCharge, m.Totals.Payments)

	t.Print()
}

func printFilterValues(claims []record.ClaimPayment) {
	payers, serviceTypes := cohort.FilterValues(claims)
	if len(payers) == 0 && len(serviceTypes) == 0 {
		return
	}
	fmt.Println(output.Section("Filters"))
	if len(payers) > 0 {
		fmt.Printf(" %s%s\n", output.StyleLabel.Render("Payers"), strings.Join(payers, ", "))
	}
	if len(serviceTypes) > 0 {
		fmt.Printf(" %s%s\n", output.StyleLabel.Render("Service types"), strings.Join(serviceTypes, ", "))
	}
}
