package world

import (
	"math"
	"sync"

	"github.com/Versifine/freemove/internal/mathx"
)

const (
	ChunkSize       = 16
	CellsPerChunk   = ChunkSize * ChunkSize * ChunkSize
	DefaultCellSize = 100.0

	cellTolerance = 1e-6
)

type CellPos struct {
	X int
	Y int
	Z int
}

type ChunkPos struct {
	X int32
	Y int32
	Z int32
}

type Chunk struct {
	Solid []bool
	count int
}

// Terrain is a chunked grid of solid cells, each cellSize units on a side.
type Terrain struct {
	mu       sync.RWMutex
	cellSize float64
	chunks   map[ChunkPos]*Chunk
}

func NewTerrain(cellSize float64) *Terrain {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Terrain{
		cellSize: cellSize,
		chunks:   make(map[ChunkPos]*Chunk),
	}
}

func (t *Terrain) CellSize() float64 {
	return t.cellSize
}

func (t *Terrain) SetSolid(x, y, z int, solid bool) {
	pos, index := chunkIndex(x, y, z)

	t.mu.Lock()
	defer t.mu.Unlock()

	chunk, ok := t.chunks[pos]
	if !ok {
		if !solid {
			return
		}
		chunk = &Chunk{Solid: make([]bool, CellsPerChunk)}
		t.chunks[pos] = chunk
	}
	if chunk.Solid[index] == solid {
		return
	}
	chunk.Solid[index] = solid
	if solid {
		chunk.count++
		return
	}
	chunk.count--
	if chunk.count == 0 {
		delete(t.chunks, pos)
	}
}

// FillBox sets every cell in the inclusive range [min, max].
func (t *Terrain) FillBox(min, max CellPos, solid bool) {
	if min.X > max.X {
		min.X, max.X = max.X, min.X
	}
	if min.Y > max.Y {
		min.Y, max.Y = max.Y, min.Y
	}
	if min.Z > max.Z {
		min.Z, max.Z = max.Z, min.Z
	}
	for z := min.Z; z <= max.Z; z++ {
		for y := min.Y; y <= max.Y; y++ {
			for x := min.X; x <= max.X; x++ {
				t.SetSolid(x, y, z, solid)
			}
		}
	}
}

func (t *Terrain) IsSolid(x, y, z int) bool {
	pos, index := chunkIndex(x, y, z)

	t.mu.RLock()
	defer t.mu.RUnlock()

	chunk, ok := t.chunks[pos]
	if !ok {
		return false
	}
	return chunk.Solid[index]
}

func (t *Terrain) LoadedChunkCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.chunks)
}

// CellAt returns the cell containing the world point p.
func (t *Terrain) CellAt(p mathx.Vec3) CellPos {
	return CellPos{
		X: int(math.Floor(p.X() / t.cellSize)),
		Y: int(math.Floor(p.Y() / t.cellSize)),
		Z: int(math.Floor(p.Z() / t.cellSize)),
	}
}

// CellBounds returns the world-space box of cell c.
func (t *Terrain) CellBounds(c CellPos) AABB {
	lo := mathx.Vec3{float64(c.X), float64(c.Y), float64(c.Z)}.Mul(t.cellSize)
	return AABB{Min: lo, Max: lo.Add(mathx.Vec3{t.cellSize, t.cellSize, t.cellSize})}
}

// SolidCellsIn calls fn with the bounds of every solid cell overlapping box.
func (t *Terrain) SolidCellsIn(box AABB, fn func(AABB)) {
	lo := t.CellAt(box.Min.Add(mathx.Vec3{cellTolerance, cellTolerance, cellTolerance}))
	hi := t.CellAt(box.Max.Sub(mathx.Vec3{cellTolerance, cellTolerance, cellTolerance}))
	for z := lo.Z; z <= hi.Z; z++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for x := lo.X; x <= hi.X; x++ {
				if t.IsSolid(x, y, z) {
					fn(t.CellBounds(CellPos{X: x, Y: y, Z: z}))
				}
			}
		}
	}
}

// Trace walks the cells crossed by start->end with a 3D DDA and returns the
// entry point into the first solid cell. A segment that starts inside a solid
// cell hits at its start.
func (t *Terrain) Trace(start, end mathx.Vec3) (mathx.Vec3, mathx.Vec3, bool) {
	delta := end.Sub(start)
	length := delta.Len()
	if length <= 0 {
		return mathx.Vec3{}, mathx.Vec3{}, false
	}

	origin := start.Mul(1 / t.cellSize)
	dir := delta.Mul(1 / t.cellSize)

	x := int(math.Floor(origin.X()))
	y := int(math.Floor(origin.Y()))
	z := int(math.Floor(origin.Z()))

	if t.IsSolid(x, y, z) {
		back, _ := mathx.SafeNormalize(delta.Mul(-1))
		return start, back, true
	}

	stepX, tMaxX, tDeltaX := ddaAxis(origin.X(), dir.X(), x)
	stepY, tMaxY, tDeltaY := ddaAxis(origin.Y(), dir.Y(), y)
	stepZ, tMaxZ, tDeltaZ := ddaAxis(origin.Z(), dir.Z(), z)

	for {
		var entry float64
		var normal mathx.Vec3
		switch {
		case tMaxX <= tMaxY && tMaxX <= tMaxZ:
			x += stepX
			entry = tMaxX
			tMaxX += tDeltaX
			normal = mathx.Vec3{float64(-stepX), 0, 0}
		case tMaxY <= tMaxX && tMaxY <= tMaxZ:
			y += stepY
			entry = tMaxY
			tMaxY += tDeltaY
			normal = mathx.Vec3{0, float64(-stepY), 0}
		default:
			z += stepZ
			entry = tMaxZ
			tMaxZ += tDeltaZ
			normal = mathx.Vec3{0, 0, float64(-stepZ)}
		}
		if entry > 1 || math.IsInf(entry, 1) {
			return mathx.Vec3{}, mathx.Vec3{}, false
		}
		if t.IsSolid(x, y, z) {
			return start.Add(delta.Mul(entry)), normal, true
		}
	}
}

// ddaAxis returns the step direction, the segment parameter of the first
// boundary crossing, and the parameter distance between crossings.
func ddaAxis(origin, dir float64, cell int) (step int, tMax float64, tDelta float64) {
	if mathx.NearlyZero(dir) {
		return 0, math.Inf(1), math.Inf(1)
	}
	if dir > 0 {
		step = 1
		tMax = (float64(cell+1) - origin) / dir
		tDelta = 1.0 / dir
		return
	}
	step = -1
	inv := -dir
	tMax = (origin - float64(cell)) / inv
	tDelta = 1.0 / inv
	return
}

func chunkIndex(x, y, z int) (ChunkPos, int) {
	pos := ChunkPos{
		X: int32(floorDivChunk(x)),
		Y: int32(floorDivChunk(y)),
		Z: int32(floorDivChunk(z)),
	}
	lx := floorModChunk(x)
	ly := floorModChunk(y)
	lz := floorModChunk(z)
	return pos, lz*ChunkSize*ChunkSize + ly*ChunkSize + lx
}

func floorDivChunk(v int) int {
	q := v / ChunkSize
	if v < 0 && v%ChunkSize != 0 {
		q--
	}
	return q
}

func floorModChunk(v int) int {
	m := v % ChunkSize
	if m < 0 {
		m += ChunkSize
	}
	return m
}
