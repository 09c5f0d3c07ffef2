package cmd

import (
	"fmt"
	"math"
	"time"

	"FinBoard/internal/convert"
	"FinBoard/internal/export"
	"FinBoard/internal/model"

	"github.com/spf13/cobra"
)

var (
	exportSymbol    string
	exportStart     string
	exportEnd       string
	exportFxSymbol  string
	exportCurrency  string
	exportDirection string
	exportFormat    string
	exportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a price/FX/statistics report as xlsx or pdf",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		start, end, err := parseExportRange()
		if err != nil {
			return err
		}

		inst, err := s.GetInstrument(exportSymbol)
		if err != nil {
			return err
		}
		points, err := s.ReadPrices(inst.ID, start, end)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			return fmt.Errorf("no data stored for %s in the requested range", exportSymbol)
		}

		var conv []convert.Converted
		convertedCurrency := ""
		if exportFxSymbol != "" {
			dir, err := convert.ParseDirection(exportDirection)
			if err != nil {
				return err
			}
			fxInst, err := s.GetInstrument(exportFxSymbol)
			if err != nil {
				return err
			}
			fxPoints, err := s.ReadPrices(fxInst.ID, start, end)
			if err != nil {
				return err
			}
			conv, err = convert.Convert(model.CloseSeries(points), model.CloseSeries(fxPoints), dir)
			if err != nil {
				return err
			}
			convertedCurrency = exportCurrency
			// Refresh the converted-price cache while the join is in hand.
			if err := s.RefreshConvertedPrices(inst.ID, convert.Materialize(conv, exportCurrency)); err != nil {
				return err
			}
		} else {
			// No FX pair given: reuse the cached conversion from a prior
			// export if one exists. Rates are not cached, only values.
			cached, err := s.ReadConvertedPrices(inst.ID)
			if err != nil {
				return err
			}
			for _, cp := range cached {
				conv = append(conv, convert.Converted{
					Date: cp.Date, Original: math.NaN(), Rate: math.NaN(), Value: cp.Price,
				})
			}
			if len(cached) > 0 {
				convertedCurrency = cached[0].Currency
			}
		}

		report := export.Build(inst, points, conv, convertedCurrency)

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("%s_report.%s", inst.Symbol, exportFormat)
		}

		switch exportFormat {
		case "xlsx":
			err = export.WriteExcel(report, out)
		case "pdf":
			err = export.WritePDF(report, out)
		default:
			return fmt.Errorf("format must be xlsx or pdf, got %q", exportFormat)
		}
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

func parseExportRange() (start, end time.Time, err error) {
	if exportStart != "" {
		if start, err = time.Parse(model.DateFormat, exportStart); err != nil {
			return start, end, fmt.Errorf("--start: %w", err)
		}
	}
	if exportEnd != "" {
		if end, err = time.Parse(model.DateFormat, exportEnd); err != nil {
			return start, end, fmt.Errorf("--end: %w", err)
		}
	}
	return start, end, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportSymbol, "symbol", "", "instrument symbol to export (required)")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "range start, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "range end, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportFxSymbol, "fx", "", "FX pair symbol for currency conversion (e.g. USD_TWD)")
	exportCmd.Flags().StringVar(&exportCurrency, "currency", "", "converted currency code shown in the report")
	exportCmd.Flags().StringVar(&exportDirection, "direction", "multiply", "conversion direction: multiply or divide")
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "output format: xlsx or pdf")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <symbol>_report.<format>)")
	exportCmd.MarkFlagRequired("symbol")
	rootCmd.AddCommand(exportCmd)
}
