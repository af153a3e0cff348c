package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/BAHUBALISID/smj/internal/app"
	"github.com/BAHUBALISID/smj/internal/dto"
	"github.com/BAHUBALISID/smj/internal/infra"
	"github.com/BAHUBALISID/smj/internal/purity"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Inspect and maintain metal rates",
}

var ratesSetCmd = &cobra.Command{
	Use:     "set",
	Short:   "Replace the rate of a grade and recompute its dependents",
	Example: `  smjctl rates set --metal GOLD --purity 24K --rate 7200 --actor 6f1c...`,
	RunE:    runRatesSet,
}

var ratesResolveCmd = &cobra.Command{
	Use:     "resolve",
	Short:   "Print the effective per-gram rate of a grade",
	Example: `  smjctl rates resolve --metal GOLD --purity 22K`,
	RunE:    runRatesResolve,
}

var ratesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the family base rates that do not exist yet",
	Long: `Seeds GOLD 24K and SILVER 999 with the given rates and derives their
dependent grades. Bases that already have an active rate are left untouched,
so running the command twice is safe.`,
	Example: `  smjctl rates seed --gold 7200 --silver 92`,
	RunE:    runRatesSeed,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.AddCommand(ratesSetCmd, ratesResolveCmd, ratesSeedCmd)

	ratesSetCmd.Flags().String("metal", "", "metal type, e.g. GOLD")
	ratesSetCmd.Flags().String("purity", "", "grade, e.g. 24K")
	ratesSetCmd.Flags().String("rate", "", "rate per gram")
	ratesSetCmd.Flags().String("actor", "", "operator user id recorded as creator")
	_ = ratesSetCmd.MarkFlagRequired("metal")
	_ = ratesSetCmd.MarkFlagRequired("purity")
	_ = ratesSetCmd.MarkFlagRequired("rate")

	ratesResolveCmd.Flags().String("metal", "", "metal type, e.g. GOLD")
	ratesResolveCmd.Flags().String("purity", "", "grade, e.g. 22K")
	_ = ratesResolveCmd.MarkFlagRequired("metal")
	_ = ratesResolveCmd.MarkFlagRequired("purity")

	ratesSeedCmd.Flags().String("gold", "", "GOLD 24K rate per gram")
	ratesSeedCmd.Flags().String("silver", "", "SILVER 999 rate per gram")
	ratesSeedCmd.Flags().String("actor", "", "operator user id recorded as creator")
}

func services() (*app.Services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DefaultDatabaseConfig())
	if err != nil {
		return nil, err
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return app.NewServices(cfg, db, rdb)
}

func actorFlag(cmd *cobra.Command) (service.Actor, error) {
	raw, _ := cmd.Flags().GetString("actor")
	if raw == "" {
		return service.Actor{Role: "operator"}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return service.Actor{}, fmt.Errorf("--actor: %w", err)
	}
	return service.Actor{ID: id, Role: "operator"}, nil
}

func runRatesSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	metal, _ := cmd.Flags().GetString("metal")
	grade, _ := cmd.Flags().GetString("purity")
	rawRate, _ := cmd.Flags().GetString("rate")
	rate, err := decimal.NewFromString(rawRate)
	if err != nil {
		return fmt.Errorf("--rate: %w", err)
	}
	actor, err := actorFlag(cmd)
	if err != nil {
		return err
	}

	svcs, err := services()
	if err != nil {
		return err
	}
	resp, err := svcs.Rates.SetRate(ctx, actor, dto.SetRateRequest{MetalType: metal, Purity: grade, Rate: rate})
	if err != nil {
		return err
	}
	printRates(cmd, append([]dto.RateResponse{resp.Rate}, resp.Dependents...))
	return nil
}

func runRatesResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	metal, _ := cmd.Flags().GetString("metal")
	grade, _ := cmd.Flags().GetString("purity")

	svcs, err := services()
	if err != nil {
		return err
	}
	resp, err := svcs.Rates.ResolveRate(ctx, metal, grade)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", resp.MetalType, resp.Purity, resp.RatePerGram.StringFixed(2))
	return nil
}

func runRatesSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	actor, err := actorFlag(cmd)
	if err != nil {
		return err
	}
	seeds := map[purity.Metal]string{}
	if v, _ := cmd.Flags().GetString("gold"); v != "" {
		seeds[purity.Gold] = v
	}
	if v, _ := cmd.Flags().GetString("silver"); v != "" {
		seeds[purity.Silver] = v
	}
	if len(seeds) == 0 {
		return errors.New("nothing to seed: pass --gold and/or --silver")
	}

	svcs, err := services()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, fam := range purity.Families() {
		raw, ok := seeds[fam.Metal]
		if !ok {
			continue
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("--%s: %w", strings.ToLower(string(fam.Metal)), err)
		}

		_, err = svcs.Repos.Rates.FindActive(ctx, nil, string(fam.Metal), fam.Base.Token())
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s already set, skipped\n", fam.Base)
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		resp, err := svcs.Rates.SetRate(ctx, actor, dto.SetRateRequest{
			MetalType: string(fam.Metal),
			Purity:    fam.Base.Token(),
			Rate:      rate,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s seeded with %d dependents\n", fam.Base, len(resp.Dependents))
	}
	return nil
}

func printRates(cmd *cobra.Command, rates []dto.RateResponse) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "METAL\tPURITY\tRATE\tDERIVED")
	for _, r := range rates {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", r.MetalType, r.Purity, r.RatePerGram.StringFixed(2), r.IsDerived)
	}
	_ = w.Flush()
}
