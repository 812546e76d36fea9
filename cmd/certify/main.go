package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/playfair-labs/rmg-engine/cert"
	"github.com/playfair-labs/rmg-engine/games"
	"github.com/playfair-labs/rmg-engine/sim"
)

func main() {
	game := flag.String("game", "all", "game type to certify, or \"all\"")
	rounds := flag.Int("rounds", 1_000_000, "Monte Carlo rounds per game")
	rtp := flag.Float64("rtp", 0, "target RTP (0 = model default)")
	vol := flag.String("vol", "", "volatility tier (low/medium/high)")
	seed := flag.Uint64("seed", 0, "Monte Carlo seed (0 = random)")
	mc := flag.Bool("mc", false, "back the report with a Monte Carlo run")
	flag.Parse()

	if err := run(*game, *rounds, *rtp, *vol, *seed, *mc); err != nil {
		fmt.Fprintf(os.Stderr, "certify failed: %v\n", err)
		os.Exit(1)
	}
}

func run(game string, rounds int, rtp float64, vol string, seed uint64, mc bool) error {
	table := games.NewTable()
	params := games.Params{TargetRTP: rtp, Volatility: vol}

	if seed == 0 {
		var err error
		if seed, err = sim.RandomSeed(); err != nil {
			return err
		}
	}

	if game == "all" {
		return certifyAll(table, params, rounds, seed, mc)
	}
	return certifyOne(table, games.Type(game), params, rounds, seed, mc)
}

func certifyOne(table *games.Table, gt games.Type, params games.Params, rounds int, seed uint64, mc bool) error {
	report, err := buildReport(table, gt, params, rounds, seed, mc)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if !report.Certified {
		return fmt.Errorf("%s did not clear the certification gates", gt)
	}
	return nil
}

func certifyAll(table *games.Table, params games.Params, rounds int, seed uint64, mc bool) error {
	failed := 0
	for i, gt := range table.Types() {
		report, err := buildReport(table, gt, params, rounds, seed+uint64(i), mc)
		if err != nil {
			return err
		}
		status := "CERTIFIED"
		if !report.Certified {
			status = "FAILED"
			failed++
		}
		fmt.Printf("%-8s model=%s edge=%.5f rtp=%.5f %s\n",
			gt, report.ModelHash, report.TheoreticalHouseEdge, report.RTPProof.PaytableRTP, status)
		if mc && report.MonteCarlo != nil {
			fmt.Printf("         monte-carlo: %s\n", report.MonteCarlo.Detail)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d game(s) did not clear the certification gates", failed)
	}
	return nil
}

func buildReport(table *games.Table, gt games.Type, params games.Params, rounds int, seed uint64, mc bool) (*cert.Report, error) {
	m, err := table.Get(gt)
	if err != nil {
		return nil, err
	}
	cfg, err := m.BuildConfig(params)
	if err != nil {
		return nil, err
	}
	if mc {
		return cert.BuildReportWithSim(m, cfg, rounds, seed)
	}
	return cert.BuildReport(m, cfg)
}
