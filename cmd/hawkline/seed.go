package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/hawkline-systems/hawkline/internal/seeder"
)

var (
	seedCount  int
	seedSpread time.Duration
	seedTarget string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Send generated demo signals to a running server",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runSeed()
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 100, "number of signals to generate")
	seedCmd.Flags().DurationVar(&seedSpread, "spread", 10*time.Minute, "spread of generated timestamps backwards from now")
	seedCmd.Flags().StringVar(&seedTarget, "target", "http://localhost:8090", "base URL of the hawkline server")
}

func runSeed() error {
	signals := seeder.Generate(seedCount, seedSpread)
	client := &http.Client{Timeout: 10 * time.Second}

	sent, composites, alerts := 0, 0, 0
	for _, s := range signals {
		body, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal signal: %w", err)
		}
		resp, err := client.Post(seedTarget+"/api/v1/signals", "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to send signal: %w", err)
		}
		var result struct {
			Composites []json.RawMessage `json:"composites"`
			Alerts     []json.RawMessage `json:"alerts"`
		}
		if resp.StatusCode == http.StatusCreated {
			sent++
			if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
				composites += len(result.Composites)
				alerts += len(result.Alerts)
			}
		}
		resp.Body.Close()
	}

	fmt.Printf("sent %d/%d signals, %d composites emitted, %d alerts triggered\n",
		sent, len(signals), composites, alerts)
	return nil
}
