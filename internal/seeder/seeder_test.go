package seeder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	signals := Generate(200, 10*time.Minute)
	require.Len(t, signals, 200)

	now := time.Now()
	kinds := map[string]int{}
	for _, s := range signals {
		require.NoError(t, s.Validate())
		assert.NotEmpty(t, s.Fingerprint)
		assert.False(t, s.ProducedAt.After(now.Add(time.Second)))
		assert.False(t, s.ProducedAt.Before(now.Add(-11*time.Minute)))
		kinds[s.Kind]++
	}

	// All weighted kinds should appear in a 200-signal run.
	for _, kw := range kindWeights {
		assert.Positive(t, kinds[kw.kind], kw.kind)
	}
}

func TestGenerateZeroSpread(t *testing.T) {
	signals := Generate(5, 0)
	require.Len(t, signals, 5)
	for _, s := range signals {
		assert.WithinDuration(t, time.Now(), s.ProducedAt, time.Second)
	}
}

func TestGenerateKindMetadata(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := generateOne()
		switch s.Kind {
		case "dormant_reactivation":
			_, ok := s.MetadataNumber("dormancy_hours")
			assert.True(t, ok)
		case "rapid_deploy":
			_, ok := s.MetadataNumber("deploys_per_hour")
			assert.True(t, ok)
		case "cex_funding":
			assert.Contains(t, s.Metadata, "exchange")
		}
	}
}
