// Package solver defines the pluggable combinatorial-optimization backend
// used by the exact line-ordering strategy (§6). The interface is modelled
// after a classical simplex/MIP tableau API (columns are decision
// variables, rows are linear constraints, row 0 is reserved for a linear
// objective surrogate used only to drive branch-and-bound pruning) so a
// future backend could, in principle, delegate to a real MIP library
// without changing callers.
package solver

import "context"

// Solver is the abstraction the exact ordering strategy programs against.
// Columns are added with AddCol, rows (including the reserved objective
// row, index 0) with AddRow, and non-zero matrix entries with
// AddColToRow. Update finalizes the model; Solve runs the search.
type Solver interface {
	// AddCol registers a new decision variable and returns its column
	// index. name is used only for VarByName lookups and diagnostics.
	AddCol(name string) int

	// AddRow registers a new linear constraint row bounded in
	// [lower, upper] and returns its row index. Row 0 always exists and
	// is reserved for the objective surrogate; callers should not call
	// AddRow for it.
	AddRow(name string, lower, upper float64) int

	// AddColToRow sets the coefficient of col in row's linear expression.
	AddColToRow(row, col int, coeff float64)

	// Update finalizes the model after all columns/rows/coefficients have
	// been added. It returns an error if the model is structurally
	// inconsistent (e.g. a column absent from every partition row).
	Update() error

	// Solve runs the search, respecting ctx cancellation/deadline. It
	// returns an error if no feasible solution was found before ctx was
	// done; a best-effort incumbent found before then is still available
	// via VarVal/ObjVal in that case.
	Solve(ctx context.Context) error

	// VarVal returns the solved value of the column (0 or 1 for the
	// binary assignment columns this package's model always produces).
	VarVal(col int) float64

	// ObjVal returns the objective value of the best solution found.
	ObjVal() float64

	// VarByName returns the column index registered under name, or false
	// if no such column exists.
	VarByName(name string) (int, bool)
}

// ObjectiveRow is the reserved row index for the linear objective
// surrogate every Solver implementation in this package assumes.
const ObjectiveRow = 0
