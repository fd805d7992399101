package OB

import (
	"encoding/binary"
	"hash/crc32"
	"io"
	"math"
	"sort"
)

// MarkovModelParameters configures training cutoffs/smoothing and the
// generation-time determinator window. All fields are persisted with the
// serialized model (see Serialize/Deserialize).
type MarkovModelParameters struct {
	Order                         uint64
	FrequencyCutoff               uint64
	NumBucketsCutoff              uint64
	FrequencyAdd                  uint64
	FrequencyDesaturate           float64
	DeterminatorSlidingWindowSize uint64
}

// DefaultMarkovModelParameters returns the parameter set the original
// obfuscation tool defaulted its command-line flags to.
func DefaultMarkovModelParameters() MarkovModelParameters {
	return MarkovModelParameters{
		Order:                         5,
		FrequencyCutoff:               5,
		NumBucketsCutoff:              0,
		FrequencyAdd:                  0,
		FrequencyDesaturate:           0,
		DeterminatorSlidingWindowSize: 8,
	}
}

// Histogram counts, for one N-gram context, how often each CodePoint
// followed it (Total, excluding end-of-string) and how often the string
// ended there (CountEnd).
type Histogram struct {
	Total    uint64
	CountEnd uint64
	Buckets  map[CodePoint]uint64
}

func newHistogram() *Histogram {
	return &Histogram{Buckets: make(map[CodePoint]uint64)}
}

func (h *Histogram) add(code CodePoint) {
	h.Total++
	h.Buckets[code]++
}

func (h *Histogram) addEnd() {
	h.CountEnd++
}

// sortedCodePoints returns the histogram's bucket keys in ascending order.
// Sampling and serialization both iterate in this order so that identical
// (histogram, random) pairs always produce identical results, matching
// the reference implementation's use of an order-preserving flat map.
func (h *Histogram) sortedCodePoints() []CodePoint {
	keys := make([]CodePoint, 0, len(h.Buckets))
	for k := range h.Buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// sample draws a CodePoint from the histogram given a 64-bit determinator
// and an end-bias multiplier applied to CountEnd. Returns CodePointEnd
// when the total range is empty or the draw falls in the end tail.
func (h *Histogram) sample(random uint64, endMultiplier float64) CodePoint {
	extra := uint64(float64(h.CountEnd) * endMultiplier)
	total := h.Total + extra
	if total == 0 {
		return CodePointEnd
	}
	r := random % total
	var sum uint64
	for _, code := range h.sortedCodePoints() {
		sum += h.Buckets[code]
		if sum > r {
			return code
		}
	}
	return CodePointEnd
}

func (h *Histogram) serialize(w io.Writer) error {
	if err := writeU64(w, h.Total); err != nil {
		return err
	}
	if err := writeU64(w, h.CountEnd); err != nil {
		return err
	}
	codes := h.sortedCodePoints()
	if err := writeU64(w, uint64(len(codes))); err != nil {
		return err
	}
	for _, code := range codes {
		if err := writeU32(w, uint32(code)); err != nil {
			return err
		}
		if err := writeU64(w, h.Buckets[code]); err != nil {
			return err
		}
	}
	return nil
}

func (h *Histogram) deserialize(r io.Reader) error {
	var err error
	if h.Total, err = readU64(r); err != nil {
		return err
	}
	if h.CountEnd, err = readU64(r); err != nil {
		return err
	}
	count, err := readU64(r)
	if err != nil {
		return err
	}
	h.Buckets = make(map[CodePoint]uint64, count)
	for i := uint64(0); i < count; i++ {
		code, err := readU32(r)
		if err != nil {
			return err
		}
		cnt, err := readU64(r)
		if err != nil {
			return err
		}
		h.Buckets[CodePoint(code)] = cnt
	}
	return nil
}

// Table is the mixed-order Markov model: a map from 32-bit context hash to
// Histogram. Hash collisions across distinct contexts are tolerated by
// design — sampling reads whichever histogram the colliding contexts
// share. This is deliberate and must never be "fixed" by keying on the
// raw context bytes instead, since that would change the persisted format
// and the statistical model it encodes.
type Table struct {
	Params  MarkovModelParameters
	buckets map[uint32]*Histogram
}

// NewTable creates an empty Markov table for the given parameters.
func NewTable(params MarkovModelParameters) *Table {
	return &Table{Params: params, buckets: make(map[uint32]*Histogram)}
}

func hashContext(codePoints []CodePoint) uint32 {
	buf := make([]byte, len(codePoints)*4)
	for i, cp := range codePoints {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(cp))
	}
	return crc32.ChecksumIEEE(buf)
}

func (t *Table) histogramFor(hash uint32) *Histogram {
	h, ok := t.buckets[hash]
	if !ok {
		h = newHistogram()
		t.buckets[hash] = h
	}
	return h
}

// Consume trains the table on one source string. The working code-point
// buffer starts with Order BEGIN sentinels; every context length from 0
// to Order-1 is updated at every position, including one virtual step
// past the end of the string that records CountEnd.
func (t *Table) Consume(data []byte) {
	order := int(t.Params.Order)
	buf := make([]CodePoint, order)
	for i := range buf {
		buf[i] = CodePointBegin
	}

	pos := 0
	for {
		inside := pos < len(data)
		var next CodePoint
		if inside {
			next, pos = ReadCodePoint(data, pos)
		}

		for c := 0; c < order; c++ {
			ctx := buf[len(buf)-c:]
			h := t.histogramFor(hashContext(ctx))
			if inside {
				h.add(next)
			} else {
				h.addEnd()
			}
		}

		if !inside {
			break
		}
		buf = append(buf, next)
		if len(buf) > order {
			buf = buf[len(buf)-order:]
		}
	}
}

// Finalize applies, in this exact order, the num-buckets cutoff, the
// frequency cutoff, Laplace-style frequency-add smoothing, and
// frequency-desaturation-toward-mean. The order is significant: smoothing
// runs after cutoffs, matching the reference implementation.
func (t *Table) Finalize() {
	for _, h := range t.buckets {
		if uint64(len(h.Buckets)) < t.Params.NumBucketsCutoff {
			h.Buckets = make(map[CodePoint]uint64)
			h.Total = 0
		}
	}

	for _, h := range t.buckets {
		if h.Total == 0 {
			continue
		}
		if h.Total+h.CountEnd < t.Params.FrequencyCutoff {
			h.Buckets = make(map[CodePoint]uint64)
			h.Total = 0
			continue
		}
		var erased uint64
		for code, cnt := range h.Buckets {
			if cnt < t.Params.FrequencyCutoff {
				erased += cnt
				delete(h.Buckets, code)
			}
		}
		h.Total -= erased
	}

	for _, h := range t.buckets {
		if h.Total == 0 {
			continue
		}
		for code := range h.Buckets {
			h.Buckets[code] += t.Params.FrequencyAdd
		}
		h.CountEnd += t.Params.FrequencyAdd
		h.Total += t.Params.FrequencyAdd * uint64(len(h.Buckets))
	}

	if t.Params.FrequencyDesaturate > 0 {
		for _, h := range t.buckets {
			if h.Total == 0 {
				continue
			}
			avg := float64(h.Total) / float64(len(h.Buckets))
			var newTotal uint64
			for code, cnt := range h.Buckets {
				nc := uint64(float64(cnt)*(1-t.Params.FrequencyDesaturate) + avg*t.Params.FrequencyDesaturate)
				h.Buckets[code] = nc
				newTotal += nc
			}
			h.Total = newTotal
		}
	}
}

func isASCIIAlnum(c CodePoint) bool {
	if c >= 128 {
		return false
	}
	b := byte(c)
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Generate writes obfuscated bytes into buf and returns the number of
// bytes written. seed is hashed into every per-step digest; determinator is the
// source string for this row, which locally steers generation so that
// similar sources produce similar-looking outputs.
func (t *Table) Generate(buf []byte, desiredSize int, seed uint64, determinator []byte) (int, error) {
	order := int(t.Params.Order)
	codePoints := make([]CodePoint, order)
	for i := range codePoints {
		codePoints[i] = CodePointBegin
	}

	pos := 0
	for pos < len(buf) {
		var hist *Histogram
		for c := order; ; c-- {
			ctx := codePoints[len(codePoints)-c:]
			if h, ok := t.buckets[hashContext(ctx)]; ok && h.Total+h.CountEnd != 0 {
				hist = h
				break
			}
			if c == 0 {
				break
			}
		}
		if hist == nil {
			return pos, Errorf(ErrLogical, "markov model: no context found (model was never trained)")
		}

		off := pos
		w := int(t.Params.DeterminatorSlidingWindowSize)
		if w > len(determinator) {
			w = len(determinator)
		}
		overflow := 0
		if off+w > len(determinator) {
			overflow = off + w - len(determinator)
		}
		windowStart := off - overflow
		determinatorValue := Hash(seed, determinator[windowStart:windowStart+w], uint64(overflow))

		extra := off - desiredSize
		var endMultiplier float64
		if extra > 0 {
			endMultiplier = math.Pow(1.25, float64(extra))
		}

		code := hist.sample(determinatorValue, endMultiplier)
		if code == CodePointEnd {
			break
		}
		if extra > 0 && code < 128 && !isASCIIAlnum(code) {
			break
		}

		newPos, ok := WriteCodePoint(code, buf, pos)
		if !ok {
			break
		}
		pos = newPos

		codePoints = append(codePoints, code)
		if len(codePoints) > order {
			codePoints = codePoints[len(codePoints)-order:]
		}
	}

	return pos, nil
}

// Serialize writes the parameters block followed by the table in
// context-hash-sorted order (deterministic across runs, unlike Go map
// iteration order).
func (t *Table) Serialize(w io.Writer) error {
	if err := writeU64(w, t.Params.Order); err != nil {
		return err
	}
	if err := writeU64(w, t.Params.FrequencyCutoff); err != nil {
		return err
	}
	if err := writeU64(w, t.Params.NumBucketsCutoff); err != nil {
		return err
	}
	if err := writeU64(w, t.Params.FrequencyAdd); err != nil {
		return err
	}
	if err := writeF64(w, t.Params.FrequencyDesaturate); err != nil {
		return err
	}
	if err := writeU64(w, t.Params.DeterminatorSlidingWindowSize); err != nil {
		return err
	}

	keys := make([]uint32, 0, len(t.buckets))
	for k := range t.buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if err := writeU64(w, uint64(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeU32(w, k); err != nil {
			return err
		}
		if err := t.buckets[k].serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a table written by Serialize, replacing this table's
// contents.
func (t *Table) Deserialize(r io.Reader) error {
	var err error
	if t.Params.Order, err = readU64(r); err != nil {
		return err
	}
	if t.Params.FrequencyCutoff, err = readU64(r); err != nil {
		return err
	}
	if t.Params.NumBucketsCutoff, err = readU64(r); err != nil {
		return err
	}
	if t.Params.FrequencyAdd, err = readU64(r); err != nil {
		return err
	}
	if t.Params.FrequencyDesaturate, err = readF64(r); err != nil {
		return err
	}
	if t.Params.DeterminatorSlidingWindowSize, err = readU64(r); err != nil {
		return err
	}

	size, err := readU64(r)
	if err != nil {
		return err
	}
	t.buckets = make(map[uint32]*Histogram, size)
	for i := uint64(0); i < size; i++ {
		key, err := readU32(r)
		if err != nil {
			return err
		}
		h := newHistogram()
		if err := h.deserialize(r); err != nil {
			return err
		}
		t.buckets[key] = h
	}
	return nil
}
