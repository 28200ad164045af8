package align

import "github.com/nihei9/ltsc/allow"

// CooccurTable is the letter->phone co-occurrence table built during pass
// 1 of alignment. Before Normalize is called it holds raw accumulated
// scores; afterwards each letter's row sums to 1 (or to 0 if the letter
// was never observed).
type CooccurTable struct {
	rows map[string]map[string]float64
}

// NewCooccurTable seeds a zeroed row for every (letter, phone) pair the
// allowables table permits, matching the reference trainer's
// initialization of its letter/phone count table before accumulation
// begins.
func NewCooccurTable(table *allow.Table) *CooccurTable {
	c := &CooccurTable{rows: make(map[string]map[string]float64)}
	for _, letter := range table.Letters() {
		row := c.row(letter)
		for _, phone := range table.Phones(letter) {
			row[phone] = 0
		}
	}
	return c
}

func (c *CooccurTable) row(letter string) map[string]float64 {
	r, ok := c.rows[letter]
	if !ok {
		r = make(map[string]float64)
		c.rows[letter] = r
	}
	return r
}

// add accumulates score for (letter, phone). Boundary-to-boundary pairs
// contribute nothing; pairs where exactly one side is the boundary symbol
// are skipped (spec §4.3 pass 1).
func (c *CooccurTable) add(phone, letter string, score float64) {
	phoneIsBoundary := phone == allow.Boundary
	letterIsBoundary := letter == allow.Boundary
	if phoneIsBoundary && letterIsBoundary {
		return
	}
	if phoneIsBoundary != letterIsBoundary {
		return
	}
	c.row(letter)[phone] += score
}

// Score returns the (possibly unnormalized) accumulated value for
// (letter, phone), or 0 if never observed.
func (c *CooccurTable) Score(letter, phone string) float64 {
	r, ok := c.rows[letter]
	if !ok {
		return 0
	}
	return r[phone]
}

// Normalize returns a new table whose rows sum to 1, or to 0 for a letter
// with no observations at all.
func (c *CooccurTable) Normalize() *CooccurTable {
	out := &CooccurTable{rows: make(map[string]map[string]float64, len(c.rows))}
	for letter, row := range c.rows {
		var total float64
		for _, v := range row {
			total += v
		}
		nrow := make(map[string]float64, len(row))
		for phone, v := range row {
			if total == 0 {
				nrow[phone] = 0
			} else {
				nrow[phone] = v / total
			}
		}
		out.rows[letter] = nrow
	}
	return out
}

// Letters returns every letter with at least one row entry.
func (c *CooccurTable) Letters() []string {
	ls := make([]string, 0, len(c.rows))
	for l := range c.rows {
		ls = append(ls, l)
	}
	return ls
}
