package bvh

import (
	"runtime"
	"sync"

	"github.com/achilleasa/lbvh/types"
)

// Number of bits used for quantizing each axis.
const mortonBits = 21

const mortonMaxCoord = 1<<mortonBits - 1

// A MortonCode interleaves the bits of three 21-bit quantized coordinates;
// bit 3k+a of the code is bit k of axis a.
type MortonCode uint64

// Calculate the morton code of a point relative to the supplied bounds. The
// point is normalized into the unit cube (clamped to [0, 1]) and quantized
// to 21 bits per axis. Axes where the bounds have no extent map to 0.
func EncodeMorton(p types.Vec3, bounds BoundingBox) MortonCode {
	if !bounds.IsSet() {
		return 0
	}

	side := bounds.Extent()
	var q [3]uint64
	for axis := 0; axis < 3; axis++ {
		if side[axis] <= 0 {
			continue
		}

		t := (p[axis] - bounds.Min[axis]) / side[axis]
		switch {
		case !(t > 0): // also catches NaN
			continue
		case t >= 1:
			q[axis] = mortonMaxCoord
		default:
			q[axis] = uint64(t * (1 << mortonBits))
			if q[axis] > mortonMaxCoord {
				q[axis] = mortonMaxCoord
			}
		}
	}

	return MortonCode(part1By2(q[0]) | part1By2(q[1])<<1 | part1By2(q[2])<<2)
}

// Spread the low 21 bits of x so that two zero bits follow each input bit.
func part1By2(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | x<<32) & 0x1f00000000ffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}

// Calculate morton codes for a list of centers. Lists larger than threshold
// are split into chunks that are encoded in parallel; each worker writes to
// its own slice range. A threshold <= 0 disables parallel encoding.
func assignMortonCodes(centers []types.Vec3, bounds BoundingBox, threshold, workers int) []MortonCode {
	codes := make([]MortonCode, len(centers))
	if threshold <= 0 || len(centers) < threshold {
		for i, c := range centers {
			codes[i] = EncodeMorton(c, bounds)
		}
		return codes
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunk := (len(centers) + workers - 1) / workers

	var wg sync.WaitGroup
	for from := 0; from < len(centers); from += chunk {
		to := from + chunk
		if to > len(centers) {
			to = len(centers)
		}

		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			for i := from; i < to; i++ {
				codes[i] = EncodeMorton(centers[i], bounds)
			}
		}(from, to)
	}
	wg.Wait()

	return codes
}
