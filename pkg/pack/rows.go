package pack

import "math"

// Rows assigns each position the smallest row r such that no earlier
// position placed in r lies closer than threshold pixels. Positions are
// processed in input order. The result is indexed like xs; an empty input
// yields an empty (non-nil) result.
func Rows(xs []float64, threshold float64) []int {
	rows := make([]int, len(xs))
	// placed[r] holds the positions already assigned to row r.
	var placed [][]float64
	for i, x := range xs {
		r := 0
		for ; r < len(placed); r++ {
			if !crowded(placed[r], x, threshold) {
				break
			}
		}
		if r == len(placed) {
			placed = append(placed, nil)
		}
		placed[r] = append(placed[r], x)
		rows[i] = r
	}
	return rows
}

// RowCount returns the number of rows an assignment uses.
func RowCount(rows []int) int { return LaneCount(rows) }

func crowded(row []float64, x, threshold float64) bool {
	for _, p := range row {
		if math.Abs(p-x) < threshold {
			return true
		}
	}
	return false
}
