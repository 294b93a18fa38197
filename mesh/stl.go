package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/echoflaresat/grabtool/vectors"
)

// ErrInvalidSTL is returned when a file is neither binary nor ASCII STL.
var ErrInvalidSTL = errors.New("mesh: invalid STL")

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// LoadSTL reads a binary or ASCII STL file. Corners that share an exact
// position are merged into one vertex so the surface stays connected when
// it is deformed.
func LoadSTL(path string) (*Mesh, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	m, err := ReadSTL(reader, int64(reader.Len()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadSTL parses STL data of the given size from r.
func ReadSTL(r io.ReaderAt, size int64) (*Mesh, error) {
	if size < stlHeaderSize+4 {
		return readASCIISTL(io.NewSectionReader(r, 0, size))
	}

	countRaw := make([]byte, 4)
	if _, err := r.ReadAt(countRaw, stlHeaderSize); err != nil {
		return nil, err
	}
	count := int64(binary.LittleEndian.Uint32(countRaw))
	if size == stlHeaderSize+4+count*stlTriangleSize {
		return readBinarySTL(r, int(count))
	}
	return readASCIISTL(io.NewSectionReader(r, 0, size))
}

func readBinarySTL(r io.ReaderAt, count int) (*Mesh, error) {
	b := newVertexBuilder(count * 3)
	buf := make([]byte, stlTriangleSize)
	for i := 0; i < count; i++ {
		off := int64(stlHeaderSize + 4 + i*stlTriangleSize)
		if _, err := r.ReadAt(buf, off); err != nil {
			return nil, fmt.Errorf("triangle %d: %w", i, err)
		}
		// The stored facet normal (bytes 0..12) is recomputed from the vertices.
		for c := 0; c < 3; c++ {
			base := 12 + c*12
			b.add(vectors.Vec3{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[base:]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[base+4:]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[base+8:]))),
			})
		}
	}
	return New(b.vertices, b.triangles)
}

func readASCIISTL(r io.Reader) (*Mesh, error) {
	b := newVertexBuilder(0)
	sc := bufio.NewScanner(r)
	line := 0
	sawSolid := false
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "solid":
			sawSolid = true
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrInvalidSTL, line)
			}
			var xyz [3]float64
			for i := range xyz {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, line, err)
				}
				xyz[i] = v
			}
			b.add(vectors.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawSolid {
		return nil, fmt.Errorf("%w: missing solid header", ErrInvalidSTL)
	}
	if len(b.triangles)%3 != 0 {
		return nil, fmt.Errorf("%w: %d corners do not form whole triangles", ErrInvalidSTL, len(b.triangles))
	}
	return New(b.vertices, b.triangles)
}

// WriteSTL writes m as binary STL with per-facet normals.
func WriteSTL(w io.Writer, m *Mesh, name string) error {
	bw := bufio.NewWriter(w)

	header := make([]byte, stlHeaderSize)
	copy(header, name)
	if _, err := bw.Write(header); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return err
	}

	var rec bytes.Buffer
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()

		rec.Reset()
		for _, v := range [...]vectors.Vec3{n, a, b, c} {
			for _, f := range [...]float64{v.X, v.Y, v.Z} {
				_ = binary.Write(&rec, binary.LittleEndian, float32(f))
			}
		}
		_ = binary.Write(&rec, binary.LittleEndian, uint16(0))
		if _, err := bw.Write(rec.Bytes()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// vertexBuilder merges corners with identical positions.
type vertexBuilder struct {
	index     map[vectors.Vec3]int
	vertices  []vectors.Vec3
	triangles []int
}

func newVertexBuilder(corners int) *vertexBuilder {
	return &vertexBuilder{
		index:     make(map[vectors.Vec3]int, corners/2),
		triangles: make([]int, 0, corners),
	}
}

func (b *vertexBuilder) add(v vectors.Vec3) {
	idx, ok := b.index[v]
	if !ok {
		idx = len(b.vertices)
		b.index[v] = idx
		b.vertices = append(b.vertices, v)
	}
	b.triangles = append(b.triangles, idx)
}
