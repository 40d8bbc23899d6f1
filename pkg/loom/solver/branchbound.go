package solver

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// BranchAndBound is the only Solver backend in this module: no MIP/ILP
// library exists anywhere in the retrieved dependency pack, so the exact
// ordering strategy is backed by a purpose-built depth-first
// branch-and-bound search instead of a delegated general solver.
//
// The model follows a fixed convention: columns are named "line<i>_slot<j>"
// and represent the binary decision "line i occupies slot j"; rows other
// than the reserved objective row constrain each line to exactly one slot
// and each slot to exactly one line. Update infers n from these names.
//
// Pruning uses a cheap linear relaxation of row 0's coefficients (the
// minimum-remaining-cost bound, the same shape as a degree-1 TSP
// relaxation): admissible but not tight. The reported objective, however,
// is always the caller-supplied CostFunc evaluated on the actual leaf
// assignment when one is set, so optimality is with respect to that exact
// (possibly non-linear) objective, not the linear surrogate.
type BranchAndBound struct {
	colNames []string
	colIndex map[string]int
	objCoeff []float64

	rowNames []string
	rows     []map[int]float64

	// CostFunc, if set, computes the true objective for a completed
	// assignment (assignment[line] = slot) and overrides the linear
	// row-0 surrogate as the value reported by ObjVal. If nil, the linear
	// surrogate itself is used.
	CostFunc func(assignment []int) float64

	// Deadline, if non-zero, bounds search time independent of ctx.
	Deadline time.Time

	n      int
	colOf  [][]int // colOf[line][slot] -> column index
	lineOf []int   // column -> line (-1 if not an assignment column)
	slotOf []int   // column -> slot (-1 if not an assignment column)

	bestAssignment []int
	bestCost       float64
	found          bool
	steps          int
}

// NewBranchAndBound returns an empty model with the reserved objective row
// (index 0) already created.
func NewBranchAndBound() *BranchAndBound {
	return &BranchAndBound{
		colIndex: make(map[string]int),
		rows:     []map[int]float64{{}},
		rowNames: []string{"objective"},
	}
}

func (b *BranchAndBound) AddCol(name string) int {
	id := len(b.colNames)
	b.colNames = append(b.colNames, name)
	b.objCoeff = append(b.objCoeff, 0)
	b.colIndex[name] = id
	return id
}

func (b *BranchAndBound) AddRow(name string, lower, upper float64) int {
	id := len(b.rows)
	b.rows = append(b.rows, map[int]float64{})
	b.rowNames = append(b.rowNames, name)
	return id
}

func (b *BranchAndBound) AddColToRow(row, col int, coeff float64) {
	if row < 0 || row >= len(b.rows) || col < 0 || col >= len(b.colNames) {
		return
	}
	b.rows[row][col] = coeff
	if row == ObjectiveRow {
		b.objCoeff[col] = coeff
	}
}

func (b *BranchAndBound) VarByName(name string) (int, bool) {
	id, ok := b.colIndex[name]
	return id, ok
}

// Update parses every column name as "line<i>_slot<j>" and validates that
// every (i, j) pair in [0, n) x [0, n) is present exactly once, where n is
// inferred as the largest index seen plus one.
func (b *BranchAndBound) Update() error {
	b.lineOf = make([]int, len(b.colNames))
	b.slotOf = make([]int, len(b.colNames))
	n := 0
	for i, name := range b.colNames {
		var li, sj int
		if _, err := fmt.Sscanf(name, "line%d_slot%d", &li, &sj); err != nil {
			return fmt.Errorf("solver: column %q is not of the form line<i>_slot<j>: %w", name, err)
		}
		b.lineOf[i] = li
		b.slotOf[i] = sj
		if li+1 > n {
			n = li + 1
		}
		if sj+1 > n {
			n = sj + 1
		}
	}
	if n*n != len(b.colNames) {
		return fmt.Errorf("solver: expected %d*%d=%d assignment columns, got %d", n, n, n*n, len(b.colNames))
	}

	colOf := make([][]int, n)
	for i := range colOf {
		colOf[i] = make([]int, n)
		for j := range colOf[i] {
			colOf[i][j] = -1
		}
	}
	for col, li := range b.lineOf {
		sj := b.slotOf[col]
		if colOf[li][sj] != -1 {
			return fmt.Errorf("solver: duplicate column for line %d slot %d", li, sj)
		}
		colOf[li][sj] = col
	}
	for i := range colOf {
		for j := range colOf[i] {
			if colOf[i][j] == -1 {
				return fmt.Errorf("solver: missing column for line %d slot %d", i, j)
			}
		}
	}

	b.n = n
	b.colOf = colOf
	return nil
}

// Solve runs the branch-and-bound search until it completes, ctx is done,
// or Deadline passes, whichever comes first. A partial incumbent from an
// interrupted search is still available via VarVal/ObjVal.
func (b *BranchAndBound) Solve(ctx context.Context) error {
	if b.n == 0 {
		return fmt.Errorf("solver: Update was not called or model has zero lines")
	}

	minCoeffForLine := make([]float64, b.n)
	for li := 0; li < b.n; li++ {
		best := b.objCoeff[b.colOf[li][0]]
		for sj := 1; sj < b.n; sj++ {
			if c := b.objCoeff[b.colOf[li][sj]]; c < best {
				best = c
			}
		}
		minCoeffForLine[li] = best
	}
	suffixMin := make([]float64, b.n+1)
	for li := b.n - 1; li >= 0; li-- {
		suffixMin[li] = suffixMin[li+1] + minCoeffForLine[li]
	}

	used := make([]bool, b.n)
	assignment := make([]int, b.n)

	var deadline time.Time
	useDeadline := false
	if !b.Deadline.IsZero() {
		deadline, useDeadline = b.Deadline, true
	}
	if d, ok := ctx.Deadline(); ok && (!useDeadline || d.Before(deadline)) {
		deadline, useDeadline = d, true
	}

	var abort bool
	b.dfs(0, used, assignment, 0, suffixMin, deadline, useDeadline, ctx, &abort)

	if !b.found {
		return fmt.Errorf("solver: no feasible assignment found")
	}
	return nil
}

func (b *BranchAndBound) dfs(li int, used []bool, assignment []int, linearCost float64, suffixMin []float64, deadline time.Time, useDeadline bool, ctx context.Context, abort *bool) {
	if *abort {
		return
	}
	b.steps++
	if b.steps&4095 == 0 {
		if useDeadline && time.Now().After(deadline) {
			*abort = true
			return
		}
		select {
		case <-ctx.Done():
			*abort = true
			return
		default:
		}
	}

	if li == b.n {
		cost := linearCost
		if b.CostFunc != nil {
			cost = b.CostFunc(assignment)
		}
		if !b.found || cost < b.bestCost {
			b.found = true
			b.bestCost = cost
			b.bestAssignment = append([]int{}, assignment...)
		}
		return
	}

	if b.found && b.CostFunc == nil && linearCost+suffixMin[li] >= b.bestCost {
		return
	}

	type candidate struct {
		slot  int
		coeff float64
	}
	cands := make([]candidate, 0, b.n)
	for sj := 0; sj < b.n; sj++ {
		if !used[sj] {
			cands = append(cands, candidate{sj, b.objCoeff[b.colOf[li][sj]]})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].coeff < cands[j].coeff })

	for _, c := range cands {
		used[c.slot] = true
		assignment[li] = c.slot
		b.dfs(li+1, used, assignment, linearCost+c.coeff, suffixMin, deadline, useDeadline, ctx, abort)
		used[c.slot] = false
		if *abort {
			return
		}
	}
}

func (b *BranchAndBound) VarVal(col int) float64 {
	if !b.found || col < 0 || col >= len(b.lineOf) {
		return 0
	}
	li, sj := b.lineOf[col], b.slotOf[col]
	if b.bestAssignment[li] == sj {
		return 1
	}
	return 0
}

func (b *BranchAndBound) ObjVal() float64 {
	return b.bestCost
}

// Assignment returns the best solution found as a line-index-to-slot-index
// slice, or nil if Solve has not yet found a feasible assignment.
func (b *BranchAndBound) Assignment() []int {
	if !b.found {
		return nil
	}
	return append([]int{}, b.bestAssignment...)
}
