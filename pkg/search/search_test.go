package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type truck struct {
	unit  string
	plate string
	make  string
}

func truckFields(t truck) []string { return []string{t.unit, t.plate, t.make} }

func TestFilter(t *testing.T) {
	items := []truck{
		{unit: "T-100", plate: "ABC123", make: "Freightliner"},
		{unit: "T-200", plate: "XYZ987", make: "Volvo"},
		{unit: "T-300", plate: "ABD555", make: "Kenworth"},
	}

	assert.Equal(t, items, Filter("", items, truckFields))
	assert.Equal(t, []truck{items[1]}, Filter("volvo", items, truckFields))
	assert.Equal(t, []truck{items[0]}, Filter("frtlnr", items, truckFields))
	assert.Empty(t, Filter("peterbilt", items, truckFields))

	// every word must match
	assert.Equal(t, []truck{items[2]}, Filter("ken abd", items, truckFields))
}

func TestFilter_BestMatchFirst(t *testing.T) {
	items := []truck{
		{unit: "Volvo VNL 860"},
		{unit: "Volvo"},
	}
	got := Filter("volvo", items, truckFields)
	assert.Equal(t, "Volvo", got[0].unit)
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{2, 3}, Window(items, 1, 2))
	assert.Equal(t, []int{4, 5}, Window(items, 3, 10))
	assert.Equal(t, []int{}, Window(items, 9, 2))
	assert.Equal(t, items, Window(items, 0, 0))
}
