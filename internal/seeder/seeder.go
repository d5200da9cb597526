// Package seeder generates realistic demo signal traffic for exercising a
// running engine.
package seeder

import (
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/hawkline-systems/hawkline/internal/signal"
)

// kinds and their relative weights in the generated stream. Funding and
// deploy kinds are weighted so the default correlation rules fire during a
// seed run.
var kindWeights = []struct {
	kind   string
	weight int
}{
	{"cex_funding", 25},
	{"rapid_deploy", 25},
	{"dormant_reactivation", 15},
	{"detection", 20},
	{"liquidity_shift", 15},
}

// Generate produces count signals with producedAt jittered backwards over
// timeSpread from now. A zero timeSpread stamps everything at now.
func Generate(count int, timeSpread time.Duration) []signal.Signal {
	now := time.Now()
	signals := make([]signal.Signal, 0, count)
	for i := 0; i < count; i++ {
		s := generateOne()
		if timeSpread > 0 {
			// Evenly spaced with ±40% jitter, placed backwards from now.
			base := float64(timeSpread) / float64(count)
			offset := time.Duration(float64(i)*base + (rand.Float64()*2-1)*base*0.4)
			if offset < 0 {
				offset = 0
			}
			if offset > timeSpread {
				offset = timeSpread
			}
			s.ProducedAt = now.Add(-(timeSpread - offset))
		} else {
			s.ProducedAt = now
		}
		signals = append(signals, s)
	}
	return signals
}

func generateOne() signal.Signal {
	kind := pickKind()
	confidence := 0.5 + rand.Float64()*0.5
	s := signal.New(kind, gofakeit.AppName(), confidence)
	s.Metadata = map[string]any{
		signal.MetaAgent: gofakeit.Username(),
		"chain":          gofakeit.RandomString([]string{"ethereum", "base", "arbitrum", "solana"}),
		"address":        gofakeit.HexUint256(),
	}

	switch kind {
	case "dormant_reactivation":
		s.Metadata["dormancy_hours"] = float64(gofakeit.Number(1, 400))
	case "rapid_deploy":
		s.Metadata["deploys_per_hour"] = float64(gofakeit.Number(1, 30))
	case "cex_funding":
		s.Metadata["exchange"] = gofakeit.RandomString([]string{"binance", "coinbase", "kraken", "okx"})
		s.Metadata["amount_eth"] = gofakeit.Float64Range(0.1, 50)
	}
	return s
}

func pickKind() string {
	total := 0
	for _, kw := range kindWeights {
		total += kw.weight
	}
	n := rand.Intn(total)
	for _, kw := range kindWeights {
		if n < kw.weight {
			return kw.kind
		}
		n -= kw.weight
	}
	return kindWeights[0].kind
}
