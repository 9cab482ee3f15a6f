package sparsevec

import (
	"fmt"
	"sort"

	"github.com/seismicdb/seismic/model"
)

// Item is a single (token, weight) pair. Weight is the quantized byte form;
// zero weights never appear (they carry no information and are dropped at
// construction).
type Item struct {
	Token  model.Token
	Weight byte
}

// Vector is an ordered, sparse representation of one document or query.
// Tokens are strictly ascending and unique within a Vector.
type Vector struct {
	Items []Item
}

// ErrUnsortedTokens is returned by New when the caller-supplied items are not
// strictly ascending by token, or contain a duplicate/zero-weight entry.
type ErrUnsortedTokens struct {
	Index int
}

func (e *ErrUnsortedTokens) Error() string {
	return fmt.Sprintf("sparsevec: items not strictly ascending at index %d", e.Index)
}

// New builds a Vector from already-sorted, already-validated items without
// copying — the caller must not mutate items afterwards. Use FromMap for the
// common ingestion path.
func New(items []Item) (*Vector, error) {
	for i := 1; i < len(items); i++ {
		if items[i].Token <= items[i-1].Token {
			return nil, &ErrUnsortedTokens{Index: i}
		}
	}
	for i, it := range items {
		if it.Weight == 0 {
			return nil, &ErrUnsortedTokens{Index: i}
		}
	}
	return &Vector{Items: items}, nil
}

// FromMap builds a Vector from an unordered token->float weight map, the
// shape ingestion hands the core (spec.md §6). Zero and negative weights, and
// weights that quantize to byte 0, are dropped silently (a zero weight carries
// no information; negative
// weights are out of scope per spec.md §1's Non-goals and are treated as 0).
func FromMap(weights map[model.Token]float32) (*Vector, error) {
	items := make([]Item, 0, len(weights))
	for tok, w := range weights {
		if w <= 0 {
			continue
		}
		b, err := Quantize(w)
		if err != nil {
			return nil, fmt.Errorf("sparsevec: token %d: %w", tok, err)
		}
		if b == 0 {
			continue
		}
		items = append(items, Item{Token: tok, Weight: b})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Token < items[j].Token })
	return &Vector{Items: items}, nil
}

// Len returns the number of non-zero coordinates.
func (v *Vector) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

// MaxToken returns the highest token present, or 0 if the vector is empty.
func (v *Vector) MaxToken() model.Token {
	if v.Len() == 0 {
		return 0
	}
	return v.Items[len(v.Items)-1].Token
}

// Dot computes the integer inner product of two sparse vectors via a
// merge-walk over their ascending token sequences. Complexity is
// O(len(a)+len(b)); used by clustering to score a document against a
// candidate center vector.
func Dot(a, b *Vector) int32 {
	if a == nil || b == nil {
		return 0
	}
	var sum int32
	i, j := 0, 0
	for i < len(a.Items) && j < len(b.Items) {
		ai, bj := a.Items[i], b.Items[j]
		switch {
		case ai.Token == bj.Token:
			sum += int32(ai.Weight) * int32(bj.Weight)
			i++
			j++
		case ai.Token < bj.Token:
			i++
		default:
			j++
		}
	}
	return sum
}

// ToDense materializes a dense byte vector indexed by token, up to and
// including maxToken. Callers (the scorer) allocate this once per query and
// reuse it across every posting the query touches via DotDense.
func (v *Vector) ToDense(maxToken model.Token) []byte {
	dense := make([]byte, int(maxToken)+1)
	for _, it := range v.Items {
		if int(it.Token) < len(dense) {
			dense[it.Token] = it.Weight
		}
	}
	return dense
}

// DotDense computes Sum(item.Weight * dense[item.Token]) treating both
// operands as unsigned bytes promoted to int32. This is the scorer's hot
// loop: O(len(v)) per call, no float conversion, branch-free arithmetic.
// Tokens in v beyond len(dense) contribute nothing (the dense array was
// sized to the query's own max token; a summary or document token above
// that bound cannot match any query coordinate).
func (v *Vector) DotDense(dense []byte) int32 {
	if v == nil {
		return 0
	}
	var sum int32
	for _, it := range v.Items {
		if int(it.Token) < len(dense) {
			sum += int32(it.Weight) * int32(dense[it.Token])
		}
	}
	return sum
}
