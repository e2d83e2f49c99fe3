package sparsegrid_test

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/sparsegrid"
	"github.com/hupe1980/sparsegrid/design"
)

// Example demonstrates generating a small two-dimensional sparse grid.
func Example() {
	sg, err := sparsegrid.New(2, 2)
	if err != nil {
		log.Fatal(err)
	}

	res, err := sg.Generate(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.NumPoints)
	// Output: 5
}

// Example_partitions demonstrates walking the tensor-product partitions and
// their mapping into the deduplicated global point set.
func Example_partitions() {
	sg, err := sparsegrid.New(2, 2, sparsegrid.WithFamily(design.FamilyHyperbolicCross))
	if err != nil {
		log.Fatal(err)
	}

	res, err := sg.Generate(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	for _, p := range res.Partitions {
		fmt.Printf("index=%v rows=%d\n", p.Index, p.Len())
	}
	// Output:
	// index=[1 1] rows=1
	// index=[1 2] rows=3
	// index=[2 1] rows=3
}

// Example_snapshot demonstrates persisting a generated design and loading it
// back without regeneration.
func Example_snapshot() {
	sg, err := sparsegrid.New(2, 3)
	if err != nil {
		log.Fatal(err)
	}

	res, err := sg.Generate(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	var buf bytes.Buffer
	if err := res.SaveToWriter(&buf, nil); err != nil {
		log.Fatal(err)
	}

	loaded, err := sparsegrid.LoadFromReader(&buf)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(loaded.NumPoints == res.NumPoints)
	// Output: true
}
