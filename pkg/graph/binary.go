package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "CHROUTER"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// WriteBinary serializes a (prepared) LevelGraph to a binary file.
// Uses unsafe.Slice for fast zero-copy I/O of the column arrays.
func WriteBinary(path string, g *LevelGraph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	numNodes := g.NumNodes()
	numEdges := g.NumEdges()

	// Write header.
	hdr := fileHeader{
		Version:  version,
		NumNodes: numNodes,
		NumEdges: numEdges,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	// Decompose the edge records into column arrays for zero-copy writes.
	from := make([]uint32, numEdges)
	to := make([]uint32, numEdges)
	weight := make([]float64, numEdges)
	length := make([]float64, numEdges)
	skipped := make([]uint32, numEdges)
	flags := make([]byte, numEdges)
	for i := uint32(0); i < numEdges; i++ {
		e := g.Edge(i)
		from[i] = e.From
		to[i] = e.To
		weight[i] = e.Weight
		length[i] = e.LengthMeters
		skipped[i] = e.Skipped
		flags[i] = byte(e.Flags)
	}

	level := make([]uint32, numNodes)
	for i := uint32(0); i < numNodes; i++ {
		level[i] = uint32(g.GetLevel(i))
	}

	// Node data.
	if err := writeFloat64Slice(w, g.lat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(w, g.lon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}
	if err := writeUint32Slice(w, level); err != nil {
		return fmt.Errorf("write Level: %w", err)
	}

	// Edge data.
	if err := writeUint32Slice(w, from); err != nil {
		return fmt.Errorf("write From: %w", err)
	}
	if err := writeUint32Slice(w, to); err != nil {
		return fmt.Errorf("write To: %w", err)
	}
	if err := writeFloat64Slice(w, weight); err != nil {
		return fmt.Errorf("write Weight: %w", err)
	}
	if err := writeFloat64Slice(w, length); err != nil {
		return fmt.Errorf("write Length: %w", err)
	}
	if err := writeUint32Slice(w, skipped); err != nil {
		return fmt.Errorf("write Skipped: %w", err)
	}
	if err := writeByteSlice(w, flags); err != nil {
		return fmt.Errorf("write Flags: %w", err)
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes a LevelGraph from a binary file.
func ReadBinary(path string) (*LevelGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	// Read and validate header.
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	numNodes := int(hdr.NumNodes)
	numEdges := int(hdr.NumEdges)

	lat, err := readFloat64Slice(r, numNodes)
	if err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	lon, err := readFloat64Slice(r, numNodes)
	if err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	level, err := readUint32Slice(r, numNodes)
	if err != nil {
		return nil, fmt.Errorf("read Level: %w", err)
	}

	from, err := readUint32Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read From: %w", err)
	}
	to, err := readUint32Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read To: %w", err)
	}
	weight, err := readFloat64Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read Weight: %w", err)
	}
	length, err := readFloat64Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read Length: %w", err)
	}
	skipped, err := readUint32Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read Skipped: %w", err)
	}
	flags, err := readByteSlice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read Flags: %w", err)
	}

	// Read and validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	// Reassemble the graph.
	g := NewLevelGraph(hdr.NumNodes)
	for i := 0; i < numNodes; i++ {
		g.SetCoord(uint32(i), lat[i], lon[i])
		g.SetLevel(uint32(i), int(level[i]))
	}
	for i := 0; i < numEdges; i++ {
		if from[i] >= hdr.NumNodes || to[i] >= hdr.NumNodes {
			return nil, fmt.Errorf("edge %d endpoint out of range", i)
		}
		id := g.AddEdge(from[i], to[i], weight[i], EdgeFlags(flags[i]))
		g.SetLength(id, length[i])
		if skipped[i] != InvalidEdge {
			if skipped[i] >= hdr.NumEdges {
				return nil, fmt.Errorf("edge %d skipped-edge %d out of range", i, skipped[i])
			}
			g.SetSkipped(id, skipped[i])
		}
	}

	return g, nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func writeByteSlice(w io.Writer, s []byte) error {
	if len(s) == 0 {
		return nil
	}
	_, err := w.Write(s)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readByteSlice(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]byte, n)
	if _, err := io.ReadFull(r, s); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
