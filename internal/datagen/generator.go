// Package datagen synthesizes sales transaction batches so the pipeline can
// run without an external data source. Output is deterministic per seed.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"sales-analytics-pipeline/internal/model"
)

type product struct {
	Category string
	Price    float64
}

var catalog = []product{
	{"Electronics", 1299.99},
	{"Electronics", 899.99},
	{"Audio", 199.99},
	{"Electronics", 549.99},
	{"Wearables", 299.99},
	{"Accessories", 149.99},
	{"Accessories", 79.99},
	{"Electronics", 399.99},
}

var paymentMethods = []string{"Credit Card", "PayPal", "Bank Transfer", "Cash"}

var salesReps = []string{
	"Alice Johnson", "Bob Smith", "Carol Diaz",
	"Dave Lee", "Erin Patel", "Frank Moore",
}

const defaultSeed = 42

// Generator produces synthetic transactions from a seeded source.
type Generator struct {
	spec model.GenerateSpec
	rng  *rand.Rand
}

// New builds a generator, filling unset spec fields with the stock batch
// shape (1000 transactions, 200 customers, trailing 30 days).
func New(spec model.GenerateSpec) *Generator {
	if spec.Count <= 0 {
		spec.Count = 1000
	}
	if spec.Customers <= 0 {
		spec.Customers = 200
	}
	if spec.Days <= 0 {
		spec.Days = 30
	}
	if spec.Seed == 0 {
		spec.Seed = defaultSeed
	}
	return &Generator{spec: spec, rng: rand.New(rand.NewSource(spec.Seed))}
}

// Generate produces the batch with dates spread over the trailing window
// ending at now. With a DirtyRate set, that fraction of records is corrupted
// (missing fields, duplicate ids, out-of-range values) to exercise the
// validator.
func (g *Generator) Generate(now time.Time) []model.Transaction {
	records := make([]model.Transaction, 0, g.spec.Count)
	start := now.AddDate(0, 0, -g.spec.Days)

	for i := 0; i < g.spec.Count; i++ {
		p := catalog[g.rng.Intn(len(catalog))]
		amount := round2(p.Price * (0.8 + g.rng.Float64()*0.3))
		date := start.Add(time.Duration(g.rng.Int63n(int64(g.spec.Days)*24*60)) * time.Minute)

		rec := model.Transaction{
			TransactionID:     fmt.Sprintf("TXN%d", 1000+i),
			CustomerID:        fmt.Sprintf("CUST_%05d", 1+g.rng.Intn(g.spec.Customers)),
			ProductCategory:   p.Category,
			TransactionAmount: &amount,
			TransactionDate:   date.Format(model.DateTimeLayout),
			PaymentMethod:     paymentMethods[g.rng.Intn(len(paymentMethods))],
			SalesRep:          salesReps[g.rng.Intn(len(salesReps))],
		}

		if g.spec.DirtyRate > 0 && g.rng.Float64() < g.spec.DirtyRate {
			g.corrupt(&rec, records)
		}

		records = append(records, rec)
	}

	fmt.Printf("📊 Generated %d sales transactions (seed %d)\n", len(records), g.spec.Seed)
	return records
}

func (g *Generator) corrupt(rec *model.Transaction, prior []model.Transaction) {
	switch g.rng.Intn(6) {
	case 0:
		rec.TransactionAmount = nil
	case 1:
		rec.CustomerID = ""
	case 2:
		if len(prior) > 0 {
			rec.TransactionID = prior[g.rng.Intn(len(prior))].TransactionID
		}
	case 3:
		bad := round2(10000 + 1 + g.rng.Float64()*5000)
		rec.TransactionAmount = &bad
	case 4:
		rec.CustomerID = fmt.Sprintf("CUST_%04d", 1+g.rng.Intn(9999))
	case 5:
		rec.TransactionDate = "13/45/2026"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
