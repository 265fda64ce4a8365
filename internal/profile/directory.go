package profile

import (
	"sort"
	"strconv"
)

// Directory is a read-only index of processed employees.
type Directory struct {
	byID map[string]Employee
	ids  []string
}

func NewDirectory(employees []Employee) *Directory {
	d := &Directory{byID: make(map[string]Employee, len(employees))}
	for _, e := range employees {
		if _, seen := d.byID[e.ID]; !seen {
			d.ids = append(d.ids, e.ID)
		}
		d.byID[e.ID] = e
	}
	SortIDs(d.ids)
	return d
}

func (d *Directory) Get(id string) (Employee, bool) {
	e, ok := d.byID[id]
	return e, ok
}

// IDs returns every known id, numeric ids first in numeric order.
func (d *Directory) IDs() []string {
	return append([]string(nil), d.ids...)
}

func (d *Directory) Len() int {
	return len(d.ids)
}

// SortIDs orders numeric ids numerically and places them before any other ids,
// which are ordered lexically.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
