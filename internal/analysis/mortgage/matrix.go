package mortgage

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/mortgagecli/pkg/models"
)

// Range returns start, start+step, ... up to end inclusive, with half a step
// of tolerance for floating-point drift. A non-positive step yields nothing.
func Range(start, end, step float64) []float64 {
	if step <= 0 {
		return nil
	}
	var out []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v > end+step/2 {
			break
		}
		out = append(out, v)
	}
	return out
}

// MaxCells bounds the size of a sensitivity grid.
const MaxCells = 10000

// Grid describes the two axes of a sensitivity matrix.
type Grid struct {
	PriceMin, PriceMax, PriceStep float64
	DownMin, DownMax, DownStep    float64
}

// Axes expands the grid into price and down payment values.
func (g Grid) Axes() (prices, downPayments []float64, err error) {
	if g.PriceStep <= 0 || g.DownStep <= 0 {
		return nil, nil, fmt.Errorf("steps must be positive (price %v, down payment %v)", g.PriceStep, g.DownStep)
	}
	if g.PriceMax < g.PriceMin {
		return nil, nil, fmt.Errorf("price max %v is below price min %v", g.PriceMax, g.PriceMin)
	}
	if g.DownMax < g.DownMin {
		return nil, nil, fmt.Errorf("down payment max %v is below min %v", g.DownMax, g.DownMin)
	}

	// Size the grid before building it so oversized requests allocate nothing.
	if n := axisLen(g.PriceMin, g.PriceMax, g.PriceStep) * axisLen(g.DownMin, g.DownMax, g.DownStep); n > MaxCells {
		return nil, nil, fmt.Errorf("grid of %.0f cells exceeds the limit of %d", n, MaxCells)
	}
	return Range(g.PriceMin, g.PriceMax, g.PriceStep), Range(g.DownMin, g.DownMax, g.DownStep), nil
}

// axisLen is the number of values Range yields, as a float so huge spans cannot overflow.
func axisLen(start, end, step float64) float64 {
	return math.Floor((end-start)/step+0.5) + 1
}

// BuildMatrix analyzes every (down payment, price) combination using rent as
// the expected rent. Rows follow downPayments, columns follow prices.
//
// Cells are independent and computed on up to workers goroutines
// (GOMAXPROCS when workers <= 0); the grid layout does not depend on scheduling.
func BuildMatrix(ctx context.Context, p *models.Profile, prices, downPayments []float64, rent float64, workers int) (*models.Matrix, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	cells := make([][]models.MatrixCell, len(downPayments))
	for i := range cells {
		cells[i] = make([]models.MatrixCell, len(prices))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for row, down := range downPayments {
		for col, price := range prices {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res := Analyze(models.PropertyInput{
					Price:              price,
					ExpectedRent:       rent,
					DownPaymentPercent: models.Float64(down),
				}, p)
				// Each goroutine owns exactly one slot.
				cells[row][col] = models.MatrixCell{
					Price:              price,
					DownPaymentPercent: down,
					BreakEvenRent:      res.BreakEvenRent,
					Verdict:            res.Verdict,
					WithinBudget:       res.WithinBudget,
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.Matrix{
		Prices:       prices,
		DownPayments: downPayments,
		TargetRent:   rent,
		Cells:        cells,
	}, nil
}

// Comparison is the analysis of one property under one profile.
type Comparison struct {
	Profile *models.Profile       `json:"-"`
	Result  models.AnalysisResult `json:"result"`
}

// Compare analyzes the same property under several profiles concurrently.
// Results keep the order of profiles.
func Compare(ctx context.Context, profiles []*models.Profile, price, rent float64) ([]Comparison, error) {
	out := make([]Comparison, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Comparison{
				Profile: p,
				Result:  Analyze(models.PropertyInput{Price: price, ExpectedRent: rent}, p),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
