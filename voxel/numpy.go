package voxel

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	numpyMagic      = "\x93NUMPY\x01\x00"
	numpyHeaderSize = 0x80

	occupancyEntry = "occupancy.npy"
	spacingEntry   = "spacing.npy"
)

// SaveNumpy saves the raw occupancy values of a volume as
// a .npz archive.
//
// The archive holds occupancy.npy, a uint8 array of shape
// (N, N, N) indexed as [z][y][x], and spacing.npy, a
// float64 scalar.
func SaveNumpy(path string, v *Volume) (err error) {
	w, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save numpy")
	}
	defer func() {
		if closeErr := w.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "save numpy")
		}
	}()
	return errors.Wrap(WriteNumpy(w, v), "save numpy")
}

// WriteNumpy writes the .npz encoding of a volume.
func WriteNumpy(w io.Writer, v *Volume) error {
	zipWriter := zip.NewWriter(w)
	entries := []struct {
		name string
		data []byte
	}{
		{occupancyEntry, EncodeNumpy(v)},
		{spacingEntry, encodeNumpyScalar(v.spacing)},
	}
	for _, e := range entries {
		fileWriter, err := zipWriter.Create(e.name)
		if err != nil {
			return err
		}
		if _, err := fileWriter.Write(e.data); err != nil {
			return err
		}
	}
	return zipWriter.Close()
}

// LoadNumpy reads a volume saved with SaveNumpy.
//
// The loaded volume uses a confidence equal to its
// largest stored value, so a subsequent Clear restores
// full confidence.
func LoadNumpy(path string) (*Volume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load numpy")
	}
	v, err := ReadNumpy(bytes.NewReader(data), int64(len(data)))
	return v, errors.Wrap(err, "load numpy")
}

// ReadNumpy decodes a .npz archive produced by
// WriteNumpy.
func ReadNumpy(r io.ReaderAt, size int64) (*Volume, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	entries := map[string][]byte{}
	for _, f := range zipReader.File {
		if f.Name != occupancyEntry && f.Name != spacingEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrap(err, "read "+f.Name)
		}
		entries[f.Name] = data
	}
	occ, ok := entries[occupancyEntry]
	if !ok {
		return nil, errors.New("missing " + occupancyEntry)
	}
	v, err := DecodeNumpy(occ)
	if err != nil {
		return nil, err
	}
	if sp, ok := entries[spacingEntry]; ok {
		spacing, err := decodeNumpyScalar(sp)
		if err != nil {
			return nil, err
		}
		v.spacing = spacing
	}
	return v, nil
}

// EncodeNumpy encodes the occupancy values of a volume
// as a .npy file.
func EncodeNumpy(v *Volume) []byte {
	shape := fmt.Sprintf("(%d, %d, %d)", v.size, v.size, v.size)
	return append(numpyHeader("|u1", shape), v.data...)
}

// DecodeNumpy decodes a .npy file created by EncodeNumpy
// into a volume with a spacing of 1.
func DecodeNumpy(data []byte) (*Volume, error) {
	descr, shape, body, err := parseNumpy(data)
	if err != nil {
		return nil, err
	}
	if descr != "|u1" {
		return nil, errors.New("decode numpy: unsupported dtype " + descr)
	}
	if len(shape) != 3 || shape[0] != shape[1] || shape[1] != shape[2] {
		return nil, errors.New("decode numpy: volume must be a cube")
	}
	size := shape[0]
	if len(body) != size*size*size {
		return nil, errors.New("decode numpy: unexpected data length")
	}
	var confidence uint8 = 1
	for _, val := range body {
		if val > confidence {
			confidence = val
		}
	}
	return &Volume{
		size:       size,
		spacing:    1,
		confidence: confidence,
		data:       append([]uint8{}, body...),
	}, nil
}

func encodeNumpyScalar(x float64) []byte {
	res := numpyHeader("<f8", "()")
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
	return append(res, buf[:]...)
}

func decodeNumpyScalar(data []byte) (float64, error) {
	descr, shape, body, err := parseNumpy(data)
	if err != nil {
		return 0, err
	}
	if descr != "<f8" || len(shape) != 0 || len(body) != 8 {
		return 0, errors.New("decode numpy: expected float64 scalar")
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(body)), nil
}

func numpyHeader(descr, shape string) []byte {
	header := numpyMagic + "\x76\x00{'descr': '" + descr + "', 'fortran_order': False, 'shape': "
	header += shape + ", }"
	for len(header) < numpyHeaderSize-1 {
		header += " "
	}
	header += "\n"
	return []byte(header)
}

func parseNumpy(data []byte) (descr string, shape []int, body []byte, err error) {
	if len(data) < 10 || string(data[:len(numpyMagic)]) != numpyMagic {
		return "", nil, nil, errors.New("decode numpy: bad magic")
	}
	headerLen := int(binary.LittleEndian.Uint16(data[8:10]))
	if len(data) < 10+headerLen {
		return "", nil, nil, errors.New("decode numpy: truncated header")
	}
	header := string(data[10 : 10+headerLen])
	body = data[10+headerLen:]

	descr, ok := headerField(header, "'descr':", "'", "'")
	if !ok {
		return "", nil, nil, errors.New("decode numpy: missing descr")
	}
	if strings.Contains(header, "'fortran_order': True") {
		return "", nil, nil, errors.New("decode numpy: fortran order is not supported")
	}
	shapeStr, ok := headerField(header, "'shape':", "(", ")")
	if !ok {
		return "", nil, nil, errors.New("decode numpy: missing shape")
	}
	for _, part := range strings.Split(shapeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return "", nil, nil, errors.Wrap(err, "decode numpy: shape")
		}
		shape = append(shape, n)
	}
	return descr, shape, body, nil
}

// headerField extracts the text between the left and
// right delimiters following key in a numpy header
// dictionary.
func headerField(header, key, left, right string) (string, bool) {
	idx := strings.Index(header, key)
	if idx < 0 {
		return "", false
	}
	rest := header[idx+len(key):]
	start := strings.Index(rest, left)
	if start < 0 {
		return "", false
	}
	rest = rest[start+len(left):]
	end := strings.Index(rest, right)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
