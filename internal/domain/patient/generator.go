package patient

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/brianvoe/gofakeit/v7"
)

// temperature jitter applied around the ambient reading, degrees Celsius
const tempJitter = 1.5

// Generator synthesizes admission drafts from a seeded random source. It is
// side-effect free and never touches the store.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	faker  *gofakeit.Faker
	levels []int // triage levels in ascending order, for deterministic draws
}

// NewGenerator builds a Generator. The seed fully determines the output
// sequence, which is what the distribution tests rely on.
func NewGenerator(cfg Config, seed uint64) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generator config: %w", err)
	}

	levels := make([]int, 0, len(cfg.TriageWeights))
	for level := range cfg.TriageWeights {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	return &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(int64(seed))),
		faker:  gofakeit.New(seed),
		levels: levels,
	}, nil
}

// Generate draws one admission candidate. The ambient temperature may be nil
// when the Temperature Source was unavailable; the draft then carries no
// arrival temperature instead of a fabricated one.
func (g *Generator) Generate(ambient *float64) Draft {
	level := g.drawTriage()
	r := g.cfg.WaitRanges[level]

	var temp *float64
	if ambient != nil {
		jittered := round1(*ambient + (g.rng.Float64()*2-1)*tempJitter)
		temp = &jittered
	}

	return Draft{
		Code:        fmt.Sprintf("%s%d", g.cfg.CodePrefix, 100000+g.rng.Intn(900000)),
		Name:        g.faker.Name(),
		TriageLevel: level,
		WaitTime:    r.Min + g.rng.Intn(r.Max-r.Min+1),
		Department:  g.cfg.Departments[g.rng.Intn(len(g.cfg.Departments))],
		ArrivalTemp: temp,
	}
}

// drawTriage samples the categorical triage distribution by walking the
// cumulative weights in level order.
func (g *Generator) drawTriage() int {
	var total float64
	for _, level := range g.levels {
		total += g.cfg.TriageWeights[level]
	}

	x := g.rng.Float64() * total
	var cum float64
	for _, level := range g.levels {
		cum += g.cfg.TriageWeights[level]
		if x < cum {
			return level
		}
	}
	return g.levels[len(g.levels)-1]
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
