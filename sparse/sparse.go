// Package sparse encodes norm-bounded, mostly-zero integer vectors into
// three reversible binary layouts: coordinate list (COO), run-length/delta
// (RLE) and packed-bit. Indices are 16-bit big-endian throughout, which
// caps both the dimension and the non-zero count at 65535.
package sparse

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// MaxDimension is the largest vector length representable with 16-bit
// indices.
const MaxDimension = 65535

// MaxNonZeros is the largest encodable non-zero count.
const MaxNonZeros = 65535

// DefaultThreshold is the magnitude below which an entry counts as zero.
const DefaultThreshold = 1e-10

// ErrOverflow is returned when a dimension, non-zero count or value does
// not fit the declared layout.
var ErrOverflow = errors.New("sparse: encoding overflow")

// RangeError reports a decoded index or value outside the declared
// dimension or width, including truncated input buffers.
type RangeError struct {
	What  string
	Value int
	Bound int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("sparse: %s %d out of range [0, %d)", e.What, e.Value, e.Bound)
}

// Encoder converts between dense vectors of a fixed dimension and the three
// wire layouts. ValueBits selects the per-entry value encoding: 8 (signed
// byte), 16 (signed big-endian short) or 32 (big-endian float32).
type Encoder struct {
	dimension int
	valueBits int
	indexBits int

	// Threshold is the zero cut-off used when collecting non-zeros.
	Threshold float64
}

// NewEncoder returns an Encoder for vectors of the given dimension.
func NewEncoder(dimension, valueBits int) (*Encoder, error) {
	if dimension <= 0 || dimension > MaxDimension {
		return nil, fmt.Errorf("%w: dimension %d (max %d)", ErrOverflow, dimension, MaxDimension)
	}
	switch valueBits {
	case 8, 16, 32:
	default:
		return nil, fmt.Errorf("%w: value bits %d not in {8,16,32}", ErrOverflow, valueBits)
	}
	ib := bits.Len(uint(dimension - 1))
	if ib == 0 {
		ib = 1
	}
	return &Encoder{
		dimension: dimension,
		valueBits: valueBits,
		indexBits: ib,
		Threshold: DefaultThreshold,
	}, nil
}

// Dimension returns the dense vector length handled by the encoder.
func (e *Encoder) Dimension() int { return e.dimension }

// nonZeros collects (index, value) entries above the threshold.
func (e *Encoder) nonZeros(v []float64) ([]int, []float64, error) {
	if len(v) != e.dimension {
		return nil, nil, &RangeError{What: "vector length", Value: len(v), Bound: e.dimension + 1}
	}
	var idx []int
	var vals []float64
	for i, x := range v {
		if math.Abs(x) > e.Threshold {
			idx = append(idx, i)
			vals = append(vals, x)
		}
	}
	if len(idx) > MaxNonZeros {
		return nil, nil, fmt.Errorf("%w: %d non-zeros (max %d)", ErrOverflow, len(idx), MaxNonZeros)
	}
	return idx, vals, nil
}

func (e *Encoder) appendValue(data []byte, v float64) ([]byte, error) {
	switch e.valueBits {
	case 8:
		iv := int64(v)
		if iv < math.MinInt8 || iv > math.MaxInt8 {
			return nil, fmt.Errorf("%w: value %d exceeds 8 bits", ErrOverflow, iv)
		}
		return append(data, byte(int8(iv))), nil
	case 16:
		iv := int64(v)
		if iv < math.MinInt16 || iv > math.MaxInt16 {
			return nil, fmt.Errorf("%w: value %d exceeds 16 bits", ErrOverflow, iv)
		}
		return binary.BigEndian.AppendUint16(data, uint16(int16(iv))), nil
	default:
		return binary.BigEndian.AppendUint32(data, math.Float32bits(float32(v))), nil
	}
}

func (e *Encoder) valueSize() int { return e.valueBits / 8 }

func (e *Encoder) readValue(data []byte, pos int) (float64, int, error) {
	size := e.valueSize()
	if pos+size > len(data) {
		return 0, 0, &RangeError{What: "value offset", Value: pos + size, Bound: len(data) + 1}
	}
	switch e.valueBits {
	case 8:
		return float64(int8(data[pos])), pos + 1, nil
	case 16:
		return float64(int16(binary.BigEndian.Uint16(data[pos:]))), pos + 2, nil
	default:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(data[pos:]))), pos + 4, nil
	}
}

// EncodeCOO encodes v as a coordinate list:
// count:uint16-BE, then count (index:uint16-BE, value) records.
func (e *Encoder) EncodeCOO(v []float64) ([]byte, error) {
	idx, vals, err := e.nonZeros(v)
	if err != nil {
		return nil, err
	}
	data := binary.BigEndian.AppendUint16(nil, uint16(len(idx)))
	for i, ix := range idx {
		data = binary.BigEndian.AppendUint16(data, uint16(ix))
		if data, err = e.appendValue(data, vals[i]); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// DecodeCOO reverses EncodeCOO, zero-filling the dense vector and
// scattering the decoded entries.
func (e *Encoder) DecodeCOO(data []byte) ([]float64, error) {
	if len(data) < 2 {
		return nil, &RangeError{What: "header length", Value: len(data), Bound: 2}
	}
	count := int(binary.BigEndian.Uint16(data))
	out := make([]float64, e.dimension)
	pos := 2
	for i := 0; i < count; i++ {
		if pos+2 > len(data) {
			return nil, &RangeError{What: "index offset", Value: pos + 2, Bound: len(data) + 1}
		}
		ix := int(binary.BigEndian.Uint16(data[pos:]))
		pos += 2
		if ix >= e.dimension {
			return nil, &RangeError{What: "index", Value: ix, Bound: e.dimension}
		}
		v, next, err := e.readValue(data, pos)
		if err != nil {
			return nil, err
		}
		out[ix] = v
		pos = next
	}
	return out, nil
}

// EncodeRLE encodes v with run-length/delta indices:
// count:uint16-BE; when count > 0, first_index:uint16-BE followed by count
// (delta:uint8, value) records. The first record carries delta 0. A delta
// byte of 255 escapes to a true uint16-BE delta, so 254 is the largest
// single-byte gap.
func (e *Encoder) EncodeRLE(v []float64) ([]byte, error) {
	idx, vals, err := e.nonZeros(v)
	if err != nil {
		return nil, err
	}
	data := binary.BigEndian.AppendUint16(nil, uint16(len(idx)))
	if len(idx) == 0 {
		return data, nil
	}
	data = binary.BigEndian.AppendUint16(data, uint16(idx[0]))
	prev := idx[0]
	for i, ix := range idx {
		delta := ix - prev
		if delta > 254 {
			data = append(data, 255)
			data = binary.BigEndian.AppendUint16(data, uint16(delta))
		} else {
			data = append(data, byte(delta))
		}
		if data, err = e.appendValue(data, vals[i]); err != nil {
			return nil, err
		}
		prev = ix
	}
	return data, nil
}

// DecodeRLE reverses EncodeRLE.
func (e *Encoder) DecodeRLE(data []byte) ([]float64, error) {
	if len(data) < 2 {
		return nil, &RangeError{What: "header length", Value: len(data), Bound: 2}
	}
	count := int(binary.BigEndian.Uint16(data))
	out := make([]float64, e.dimension)
	if count == 0 {
		return out, nil
	}
	if len(data) < 4 {
		return nil, &RangeError{What: "first index offset", Value: len(data), Bound: 4}
	}
	current := int(binary.BigEndian.Uint16(data[2:]))
	pos := 4
	for i := 0; i < count; i++ {
		if pos >= len(data) {
			return nil, &RangeError{What: "delta offset", Value: pos, Bound: len(data)}
		}
		delta := int(data[pos])
		pos++
		if delta == 255 {
			if pos+2 > len(data) {
				return nil, &RangeError{What: "escaped delta offset", Value: pos + 2, Bound: len(data) + 1}
			}
			delta = int(binary.BigEndian.Uint16(data[pos:]))
			pos += 2
		}
		current += delta
		if current >= e.dimension {
			return nil, &RangeError{What: "index", Value: current, Bound: e.dimension}
		}
		v, next, err := e.readValue(data, pos)
		if err != nil {
			return nil, err
		}
		out[current] = v
		pos = next
	}
	return out, nil
}

// EncodePacked bit-packs the non-zero entries of v for a known allowed
// value set: count:uint16-BE, then MSB-first (index, symbol) pairs where
// the index takes ceil(log2(dimension)) bits and the symbol is the 1-based
// position of the value in allowed (0 is reserved for "no entry"), taking
// ceil(log2(len(allowed)+1)) bits.
func (e *Encoder) EncodePacked(v []float64, allowed []int64) ([]byte, error) {
	if len(allowed) == 0 {
		return nil, fmt.Errorf("%w: empty allowed value set", ErrOverflow)
	}
	idx, vals, err := e.nonZeros(v)
	if err != nil {
		return nil, err
	}
	symbolOf := make(map[int64]uint64, len(allowed))
	for i, a := range allowed {
		symbolOf[a] = uint64(i + 1)
	}
	bitsPerValue := bits.Len(uint(len(allowed)))

	data := binary.BigEndian.AppendUint16(nil, uint16(len(idx)))
	var acc uint64
	width := 0
	for i, ix := range idx {
		sym, ok := symbolOf[int64(vals[i])]
		if !ok || vals[i] != math.Trunc(vals[i]) {
			return nil, &RangeError{What: "symbol for value", Value: int(vals[i]), Bound: len(allowed)}
		}
		acc = acc<<e.indexBits | uint64(ix)
		width += e.indexBits
		acc = acc<<bitsPerValue | sym
		width += bitsPerValue
		for width >= 8 {
			width -= 8
			data = append(data, byte(acc>>width))
		}
	}
	if width > 0 {
		data = append(data, byte(acc<<(8-width)))
	}
	return data, nil
}

// DecodePacked reverses EncodePacked for the same allowed value set.
func (e *Encoder) DecodePacked(data []byte, allowed []int64) ([]float64, error) {
	if len(data) < 2 {
		return nil, &RangeError{What: "header length", Value: len(data), Bound: 2}
	}
	count := int(binary.BigEndian.Uint16(data))
	bitsPerValue := bits.Len(uint(len(allowed)))

	out := make([]float64, e.dimension)
	r := bitReader{data: data[2:]}
	for i := 0; i < count; i++ {
		ix, err := r.read(e.indexBits)
		if err != nil {
			return nil, err
		}
		sym, err := r.read(bitsPerValue)
		if err != nil {
			return nil, err
		}
		if int(ix) >= e.dimension {
			return nil, &RangeError{What: "index", Value: int(ix), Bound: e.dimension}
		}
		if sym == 0 || int(sym) > len(allowed) {
			return nil, &RangeError{What: "symbol", Value: int(sym), Bound: len(allowed) + 1}
		}
		out[ix] = float64(allowed[sym-1])
	}
	return out, nil
}

// bitReader consumes MSB-first bit fields from a byte stream.
type bitReader struct {
	data []byte
	pos  int // bit offset
}

func (r *bitReader) read(n int) (uint64, error) {
	var out uint64
	for i := 0; i < n; i++ {
		byteIdx := r.pos >> 3
		if byteIdx >= len(r.data) {
			return 0, &RangeError{What: "bit offset", Value: r.pos, Bound: len(r.data) * 8}
		}
		bit := (r.data[byteIdx] >> (7 - uint(r.pos&7))) & 1
		out = out<<1 | uint64(bit)
		r.pos++
	}
	return out, nil
}
