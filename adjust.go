package pagepdf

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"
)

// AdjustMode selects how shifts of earlier blocks affect later ones.
type AdjustMode int

const (
	// AdjustCascade plans each block from its effective top, which includes
	// the shifts of every block starting above it.
	AdjustCascade AdjustMode = iota
	// AdjustOnePass plans every block from its original offset.
	AdjustOnePass
)

func (m AdjustMode) String() string {
	if m == AdjustOnePass {
		return "one-pass"
	}
	return "cascade"
}

// Adjuster defaults.
const (
	DefaultShiftBuffer     = 5.0
	DefaultMaxAdjustPasses = 3
)

// boundaryEpsilon absorbs float noise when a block lands exactly on a boundary.
const boundaryEpsilon = 1e-6

// Block is an atomic block measured inside the detached clone, in CSS px
// relative to the clone's top edge.
type Block struct {
	Index     int
	Top       float64
	Height    float64
	MarginTop float64
}

// Shift is the adjustment planned for one block.
type Shift struct {
	Index        int
	Top          float64 // effective top the shift was computed from
	Height       float64
	FromPage     int
	Amount       float64 // px added to the top margin
	NewMarginTop float64
}

// AdjustOptions tunes PlanShifts.
type AdjustOptions struct {
	Mode   AdjustMode
	Buffer float64 // gap kept below the boundary, clamped so the block still fits
}

// pageSpan returns the first and last logical page touched by
// [top, top+height).
func pageSpan(top, height, pageHeight float64) (start, end int) {
	start = int(math.Floor((top + boundaryEpsilon) / pageHeight))
	end = int(math.Floor((top + height - 1) / pageHeight))
	if end < start {
		end = start
	}
	return start, end
}

// Straddles reports whether a block of at most one page crosses a boundary.
func (b Block) Straddles(pageHeight float64) bool {
	if b.Height > pageHeight {
		return false
	}
	start, end := pageSpan(b.Top, b.Height, pageHeight)
	return end > start
}

// PlanShifts computes the margin adjustments that move every straddling
// block to the start of the next logical page. Offsets are read once, before
// any shift is applied, and blocks are visited in ascending top order.
// Blocks taller than one page are never shifted.
func PlanShifts(blocks []Block, pageHeight float64, opts AdjustOptions) []Shift {
	if pageHeight <= 0 || len(blocks) == 0 {
		return nil
	}

	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	var (
		shifts     []Shift
		cumulative float64 // shifts of blocks with a strictly smaller top
		groupMax   float64 // largest shift among blocks sharing the current top
	)
	for i, b := range sorted {
		if i > 0 && b.Top > sorted[i-1].Top {
			cumulative += groupMax
			groupMax = 0
		}
		if b.Height > pageHeight {
			continue
		}

		top := b.Top
		if opts.Mode == AdjustCascade {
			top += cumulative
		}
		start, end := pageSpan(top, b.Height, pageHeight)
		if end == start {
			continue
		}

		boundary := float64(start+1) * pageHeight
		amount := boundary - top + math.Min(opts.Buffer, pageHeight-b.Height)
		shifts = append(shifts, Shift{
			Index:        b.Index,
			Top:          top,
			Height:       b.Height,
			FromPage:     start,
			Amount:       amount,
			NewMarginTop: b.MarginTop + amount,
		})
		groupMax = math.Max(groupMax, amount)
	}
	return shifts
}

// AdjustBlocks returns copies of blocks with planned shifts applied, as they
// would lay out in a single flow where each shift pushes everything below.
// The result keeps the input order.
func AdjustBlocks(blocks []Block, pageHeight float64, opts AdjustOptions) []Block {
	byIndex := make(map[int]Shift)
	for _, s := range PlanShifts(blocks, pageHeight, opts) {
		byIndex[s.Index] = s
	}

	order := make([]int, len(blocks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return blocks[order[a]].Top < blocks[order[b]].Top })

	out := make([]Block, len(blocks))
	var cumulative, groupMax float64
	for n, i := range order {
		b := blocks[i]
		if n > 0 && b.Top > blocks[order[n-1]].Top {
			cumulative += groupMax
			groupMax = 0
		}
		b.Top += cumulative
		if s, ok := byIndex[b.Index]; ok {
			b.Top += s.Amount
			b.MarginTop = s.NewMarginTop
			groupMax = math.Max(groupMax, s.Amount)
		}
		out[i] = b
	}
	return out
}

// adjustContainer runs the adjuster against the detached clone. In cascade
// mode the clone is re-measured after each pass because real layout (margin
// collapsing, floats) can differ from the planned flow.
func adjustContainer(ctx context.Context, s captureSurface, containerID, blockSelector string, pageHeight float64, opts AdjustOptions, maxPasses int, logger *zap.Logger) ([]Shift, error) {
	if maxPasses < 1 {
		maxPasses = 1
	}

	var applied []Shift
	for pass := 1; pass <= maxPasses; pass++ {
		blocks, err := s.MeasureBlocks(ctx, containerID, blockSelector)
		if err != nil {
			return applied, err
		}
		shifts := PlanShifts(blocks, pageHeight, opts)
		if len(shifts) == 0 {
			return applied, nil
		}
		if err := s.ApplyMargins(ctx, containerID, blockSelector, shifts); err != nil {
			return applied, err
		}
		applied = append(applied, shifts...)
		logger.Debug("adjusted blocks",
			zap.Int("pass", pass),
			zap.Int("shifted", len(shifts)),
			zap.Int("blocks", len(blocks)),
		)
		if opts.Mode == AdjustOnePass {
			return applied, nil
		}
	}

	blocks, err := s.MeasureBlocks(ctx, containerID, blockSelector)
	if err != nil {
		return applied, err
	}
	remaining := 0
	for _, b := range blocks {
		if b.Straddles(pageHeight) {
			remaining++
		}
	}
	if remaining > 0 {
		logger.Warn("blocks still straddle page boundaries",
			zap.Int("count", remaining),
			zap.Int("passes", maxPasses),
		)
	}
	return applied, nil
}
