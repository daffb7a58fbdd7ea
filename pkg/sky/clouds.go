package sky

import (
	"github.com/zegevlier/infi-aoc-2024/pkg/grid"
)

// Cloud is one maximal group of face-connected active cells, in the order
// the flood fill reached them. The first cell is the seed.
type Cloud []grid.Point

// Size returns the number of cells in the cloud.
func (c Cloud) Size() int {
	return len(c)
}

// FindClouds partitions the active cells not already marked in visited into
// clouds. Coordinates are scanned in x-major order; every coordinate the scan
// or a flood touches is marked visited, active or not. An inactive cell
// reached from a cloud is therefore consumed and never seeds a cloud of its
// own.
func FindClouds(active, visited *grid.Grid[bool]) []Cloud {
	var clouds []Cloud
	flood(active, visited, func(c Cloud) {
		clouds = append(clouds, c)
	})
	return clouds
}

// CountClouds is FindClouds without keeping the member cells.
func CountClouds(active, visited *grid.Grid[bool]) int {
	n := 0
	flood(active, visited, func(Cloud) { n++ })
	return n
}

func flood(active, visited *grid.Grid[bool], emit func(Cloud)) {
	var work []grid.Point
	for seed := range grid.Points() {
		if visited.At(seed) {
			continue
		}
		visited.Set(seed, true)
		if !active.At(seed) {
			continue
		}

		cloud := Cloud{seed}
		work = append(work[:0], seed)
		for len(work) > 0 {
			p := work[len(work)-1]
			work = work[:len(work)-1]

			for _, d := range grid.Cardinals {
				n, ok := grid.Combine(p, d)
				if !ok || visited.At(n) {
					continue
				}
				visited.Set(n, true)
				if active.At(n) {
					cloud = append(cloud, n)
					work = append(work, n)
				}
			}
		}
		emit(cloud)
	}
}
