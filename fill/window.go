package fill

import "github.com/baseline-eto/petfill/format"

const (
	// radius is the neighbourhood half-width; the window holds rows y-2..y+2.
	radius     = 2
	windowRows = 2*radius + 1
	centerSlot = radius

	// maxWeight is the weight of the nearest neighbours; it drops by one per
	// step of Manhattan distance.
	maxWeight = windowRows
)

// window holds five raster rows centred on the row being written.
// Rows are rotated by swapping slice headers; pixel data is never copied.
type window struct {
	rows [windowRows][]byte
}

// rotate drops the oldest row and recycles its buffer as the newest slot.
func (w *window) rotate() {
	oldest := w.rows[0]
	copy(w.rows[:windowRows-1], w.rows[1:])
	w.rows[windowRows-1] = oldest
}

// center returns the row being written.
func (w *window) center() []byte {
	return w.rows[centerSlot]
}

// accumulate sums weights and weighted values of the valid neighbours of
// (x, y). Neighbours outside the raster contribute nothing, as do invalid
// ones, the centre included.
func (w *window) accumulate(x, y, width, height int) (totalWeight, totalValue int) {
	for dy := -radius; dy <= radius; dy++ {
		ny := y + dy
		if ny < 0 || ny >= height {
			continue
		}
		row := w.rows[centerSlot+dy]

		for dx := -radius; dx <= radius; dx++ {
			nx := x + dx
			if nx < 0 || nx >= width {
				continue
			}

			v := row[nx]
			if v == format.Invalid {
				continue
			}

			weight := maxWeight - (abs(dx) + abs(dy))
			totalWeight += weight
			totalValue += weight * int(v)
		}
	}

	return totalWeight, totalValue
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
