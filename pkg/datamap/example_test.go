package datamap_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapsvg/pkg/datamap"
	"github.com/matzehuels/mapsvg/pkg/render/interact"
	"github.com/matzehuels/mapsvg/pkg/render/layers"
)

func ExampleNew() {
	m, err := datamap.New(context.Background(), datamap.Options{
		Fills:  datamap.Fills{"defaultFill": "#ABDDA4", "low": "#FEE08B"},
		Data:   datamap.RegionData{"USA": {"fillKey": "low"}},
		Logger: log.New(io.Discard),
	})
	if err != nil {
		panic(err)
	}

	usa, _ := m.Fill("USA")
	fra, _ := m.Fill("FRA")
	fmt.Println("USA:", usa)
	fmt.Println("FRA:", fra)
	// Output:
	// USA: #FEE08B
	// FRA: #ABDDA4
}

func ExampleMap_Hover() {
	m, err := datamap.New(context.Background(), datamap.Options{Logger: log.New(io.Discard)})
	if err != nil {
		panic(err)
	}

	_ = m.Hover("BRA", interact.Point{X: 300, Y: 400})
	fill, _ := m.Fill("BRA")
	fmt.Println("Hovered:", fill)

	_ = m.Unhover("BRA")
	fill, _ = m.Fill("BRA")
	fmt.Println("Restored:", fill)
	// Output:
	// Hovered: #FC8D59
	// Restored: #ABDDA4
}

func ExampleMap_Bubbles() {
	m, err := datamap.New(context.Background(), datamap.Options{Logger: log.New(io.Discard)})
	if err != nil {
		panic(err)
	}

	bubbles := []layers.Bubble{
		{Centered: "BRA", Radius: 12, Name: "Brazil"},
		{Centered: "IND", Radius: 20, Name: "India"},
	}
	diff, _ := m.Bubbles(bubbles, nil)
	fmt.Println("Entered:", len(diff.Entered))

	diff, _ = m.Bubbles(bubbles[:1], nil)
	fmt.Println("Exited:", len(diff.Exited))
	// Output:
	// Entered: 2
	// Exited: 1
}
