// boxstats summarizes the annotations in a labeled image folder:
// per-class box counts and the mean and spread of box geometry.
// Useful for sanity-checking a dataset before training.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"box-marker/internal/annotation"
	"box-marker/internal/class"
)

type classStats struct {
	widths  []float64
	heights []float64
	areas   []float64
}

func main() {
	log.SetFlags(0)

	folder := flag.String("folder", ".", "labeled image folder to summarize")
	flag.Parse()

	reg, err := class.Load(filepath.Join(*folder, class.LabelsFileName))
	if err != nil {
		log.Fatalf("loading class list: %v", err)
	}

	items, err := os.ReadDir(*folder)
	if err != nil {
		log.Fatalf("reading folder: %v", err)
	}

	perClass := make(map[int]*classStats)
	files, skipped := 0, 0
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(*folder, item.Name()))
		if err != nil {
			log.Fatalf("reading %s: %v", item.Name(), err)
		}

		set, lineErrs := annotation.Parse(data, reg)
		skipped += len(lineErrs)
		files++

		for i := 0; i < set.Len(); i++ {
			b := set.At(i)
			cs := perClass[b.ClassID]
			if cs == nil {
				cs = &classStats{}
				perClass[b.ClassID] = cs
			}
			cs.widths = append(cs.widths, b.W)
			cs.heights = append(cs.heights, b.H)
			cs.areas = append(cs.areas, b.W*b.H)
		}
	}

	if files == 0 {
		log.Fatalf("no annotation files in %s", *folder)
	}

	ids := make([]int, 0, len(perClass))
	total := 0
	for id, cs := range perClass {
		ids = append(ids, id)
		total += len(cs.areas)
	}
	sort.Ints(ids)

	fmt.Printf("%d annotation files, %d boxes, %d classes", files, total, len(ids))
	if skipped > 0 {
		fmt.Printf(" (%d malformed lines skipped)", skipped)
	}
	fmt.Println()
	fmt.Println()

	fmt.Printf("%-4s %-20s %6s  %18s %18s %18s\n",
		"id", "class", "count", "width mean/sd", "height mean/sd", "area mean/sd")
	for _, id := range ids {
		cs := perClass[id]
		fmt.Printf("%-4d %-20s %6d  %8.4f/%8.4f %8.4f/%8.4f %8.5f/%8.5f\n",
			id, reg.Name(id), len(cs.areas),
			stat.Mean(cs.widths, nil), stat.StdDev(cs.widths, nil),
			stat.Mean(cs.heights, nil), stat.StdDev(cs.heights, nil),
			stat.Mean(cs.areas, nil), stat.StdDev(cs.areas, nil))
	}
}
