package testutil

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/dataset"
)

// ShippingSchema is a reduced schema of the shipping dataset used by tests.
func ShippingSchema() *config.Schema {
	return &config.Schema{
		TargetColumn:       "Cost",
		NumericalColumns:   []string{"Weight", "Height"},
		CategoricalColumns: []string{"Transport"},
		DropColumns:        []string{"Customer Id"},
	}
}

// ShippingFrame returns n deterministic rows following the ShippingSchema,
// with Cost a linear function of the features plus small noise.
func ShippingFrame(n int, seed uint64) *dataset.Frame {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	transports := []string{"Airways", "Roadways", "Waterways"}
	offsets := map[string]float64{"Airways": 120, "Roadways": 40, "Waterways": 10}

	f := dataset.New("Customer Id", "Weight", "Height", "Transport", "Cost")
	for i := 0; i < n; i++ {
		weight := 10 + rng.Float64()*90
		height := 1 + rng.Float64()*20
		transport := transports[rng.IntN(len(transports))]
		cost := 4.5*weight + 2*height + offsets[transport] + rng.NormFloat64()
		f.Rows = append(f.Rows, []string{
			fmt.Sprintf("fffe%04d", i),
			strconv.FormatFloat(weight, 'f', 4, 64),
			strconv.FormatFloat(height, 'f', 4, 64),
			transport,
			strconv.FormatFloat(cost, 'f', 4, 64),
		})
	}
	return f
}

// TestConfig returns a Config writing artifacts under dir.
func TestConfig(dir string) *config.Config {
	return &config.Config{
		Mongo:   config.MongoConfig{Database: "shipping", Collection: "shipping_data"},
		Storage: config.StorageConfig{Bucket: "models", ModelKey: "model/shipping_price_model.json"},
		Pipeline: config.PipelineConfig{
			ArtifactsDir:  dir,
			ModelFileName: "shipping_price_model.json",
			TestSize:      dataset.DefaultTestSize,
			Seed:          42,
			Alpha:         1e-3,
		},
		Kubernetes: config.KubernetesConfig{DefaultNS: "model-serving", InferenceService: "shipping-price"},
	}
}
