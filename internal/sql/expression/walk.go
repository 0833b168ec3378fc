package expression

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Walk visits r and its descendants in pre-order, children left to right.
// When visit returns false the children of that node are skipped. The walk
// uses an explicit stack, so tree depth is bounded only by memory.
func Walk(r Ref, visit func(Ref) bool) {
	if r.IsNil() {
		return
	}
	stack := []Ref{r}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(cur) {
			continue
		}
		n := cur.node()
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, Ref{arena: cur.arena, idx: n.children[i]})
		}
	}
}

// Depth returns the number of nodes on the longest root-to-leaf path; the
// null expression has depth 0. It counts levels the same way Decode does.
func (r Ref) Depth() int {
	if r.IsNil() {
		return 0
	}
	type frame struct {
		idx   int32
		depth int
	}
	deepest := 0
	stack := []frame{{r.idx, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > deepest {
			deepest = f.depth
		}
		for _, c := range r.arena.get(f.idx).children {
			stack = append(stack, frame{c, f.depth + 1})
		}
	}
	return deepest
}

// Equal reports whether r and o describe the same expression tree. Refs
// from different arenas are compared by structure, never by identity.
func (r Ref) Equal(o Ref) bool {
	if r.IsNil() || o.IsNil() {
		return r.IsNil() == o.IsNil()
	}

	type pair struct{ a, b Ref }
	stack := []pair{{r, o}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a.arena == p.b.arena && p.a.idx == p.b.idx {
			continue
		}
		na, nb := p.a.node(), p.b.node()
		if !na.localEqual(nb) {
			return false
		}
		for i := range na.children {
			stack = append(stack, pair{
				Ref{arena: p.a.arena, idx: na.children[i]},
				Ref{arena: p.b.arena, idx: nb.children[i]},
			})
		}
	}
	return true
}

// Hash returns a deterministic hash of the tree rooted at r. Equal trees
// hash equal regardless of which arena holds them.
func (r Ref) Hash() uint64 {
	d := xxhash.New()
	r.WriteHash(d)
	return d.Sum64()
}

// WriteHash feeds the canonical pre-order encoding of the tree into d. Each
// node contributes its own fields and its child count, which makes the
// encoding unambiguous without end markers.
func (r Ref) WriteHash(d *xxhash.Digest) {
	if r.IsNil() {
		_, _ = d.Write([]byte{0})
		return
	}
	buf := make([]byte, 0, 64)
	Walk(r, func(cur Ref) bool {
		n := cur.node()
		buf = buf[:0]
		buf = append(buf, 1)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n.typ))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(n.returnType))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(n.children)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n.tableOID))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n.columnOID))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(n.name)))
		buf = append(buf, n.name...)
		if n.typ == ValueConstant {
			buf = n.value.AppendHash(buf)
		}
		// paramIndex is positive; Parameter rejects anything below 1.
		buf = binary.LittleEndian.AppendUint64(buf, uint64(n.paramIndex))
		_, _ = d.Write(buf)
		return true
	})
}
