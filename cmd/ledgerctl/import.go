package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/importer"
	"github.com/spf13/cobra"
)

func newPreviewCmd(a *app) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show the first rows of a file and a suggested column mapping",
		Example: `  ledgerctl preview sales-2024.xlsx
  ledgerctl preview export.csv --rows 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if rows <= 0 || rows > a.cfg.Import.PreviewRows {
				rows = a.cfg.Import.PreviewRows
			}
			table := importer.Parse(f, importer.ParseOptions{
				Filename: filepath.Base(args[0]),
				MaxRows:  rows,
				MaxBytes: a.cfg.Import.MaxFileSize,
			})
			if table.Error != "" {
				return fmt.Errorf("%s: %s", args[0], table.Error)
			}

			return printJSON(cmd.OutOrStdout(), service.PreviewResult{
				Table:            *table,
				SuggestedMapping: importer.SuggestMapping(table.Headers),
			})
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 10, "Number of sample rows")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		tenantRef       string
		mapSpec         string
		reportDuplicates bool
		dryRun          bool
		importDate      string
		errorsCSV       string
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import every row of a billing export into a tenant's ledger",
		Long: `Import reads the whole file, maps columns with --map and reconciles each
row into invoices, payments and ledger entries. Rows whose invoice already
exists are skipped unless --report-duplicates is set, in which case they are
reported as errors.

Mapping fields: invoiceNo, customerName, paymentType, paymentDate, netSales,
vat, sales, discount, cost. Columns are 0-based. Use "preview" to see the
suggested mapping.`,
		Example: `  ledgerctl import sales.csv --tenant acme --map invoiceNo=0,customerName=1,paymentDate=3,netSales=4,vat=5
  ledgerctl import sales.xlsx --tenant acme --map invoiceNo=0,customerName=1,netSales=2 --dry-run --errors-csv errors.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := importer.ParseMappingSpec(mapSpec)
			if err != nil {
				return err
			}

			opts := service.ApplyOptions{SkipDuplicates: !reportDuplicates, DryRun: dryRun}
			if importDate != "" {
				if opts.ImportDate, err = time.Parse("2006-01-02", importDate); err != nil {
					return fmt.Errorf("--import-date must be YYYY-MM-DD: %w", err)
				}
			}

			ctx, _, err := a.tenantContext(cmd.Context(), tenantRef)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := a.imports.ApplyFile(ctx, f, filepath.Base(args[0]), mapping, opts)
			if err != nil {
				return err
			}

			if errorsCSV != "" {
				if err := writeErrorsCSV(errorsCSV, report); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&tenantRef, "tenant", "", "Tenant ID or slug (required)")
	cmd.Flags().StringVar(&mapSpec, "map", "", "Column mapping, e.g. invoiceNo=0,customerName=1 (required)")
	cmd.Flags().BoolVar(&reportDuplicates, "report-duplicates", false, "Report existing invoices as errors instead of skipping them")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the import and roll everything back")
	cmd.Flags().StringVar(&importDate, "import-date", "", "Date for unpaid invoices, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&errorsCSV, "errors-csv", "", "Also write every row error to this CSV file")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}

func writeErrorsCSV(path string, report *importer.ImportReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteErrorsCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
