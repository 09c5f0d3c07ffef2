package cmd

import (
	"fmt"

	"FinBoard/internal/model"

	"github.com/spf13/cobra"
)

var instrumentsClass string

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List registered instruments",
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

		class := model.Classification(instrumentsClass)
		if class != "" && !class.Valid() {
			return fmt.Errorf("unknown classification %q", instrumentsClass)
		}

		instruments, err := s.ListInstruments(class)
		if err != nil {
			return err
		}
		if len(instruments) == 0 {
			fmt.Println("no instruments registered")
			return nil
		}

		fmt.Printf("%-6s %-12s %-14s %-8s %-8s %s\n", "ID", "SYMBOL", "CLASS", "REGION", "CCY", "NAME")
		for _, inst := range instruments {
			ccy := inst.Currency
			if ccy == "" {
				ccy = "-"
			}
			fmt.Printf("%-6d %-12s %-14s %-8s %-8s %s\n",
				inst.ID, inst.Symbol, inst.Classification, inst.Region, ccy, inst.Name)
		}
		return nil
	},
}

func init() {
	instrumentsCmd.Flags().StringVar(&instrumentsClass, "classification", "",
		"filter by classification (equity, index, etf, currency_pair, commodity, bond)")
	rootCmd.AddCommand(instrumentsCmd)
}
