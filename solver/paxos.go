//
// paxos.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package solver

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
	"github.com/zeebo/blake3"
)

// Statistical security parameter for the |R| part of the code.
const paxosLambda = 40

// PaxosSolver implements the PaXoS probe-and-XOR of strings
// encoding. The code vector is D = L || R and a key x decodes to
// L[h1(x)] + L[h2(x)] + <r(x), R>.
type PaxosSolver struct {
}

// Kind implements Solver.Kind.
func (s *PaxosSolver) Kind() Kind {
	return Paxos
}

// Params implements Solver.Params.
func (s *PaxosSolver) Params(n int) Params {
	l := 2*n + n/100
	if l < 2 {
		l = 2
	}
	var logn int
	for 1<<logn < n {
		logn++
	}
	return Params{
		L: l,
		R: logn + paxosLambda,
	}
}

// NewAux implements Solver.NewAux.
func (s *PaxosSolver) NewAux(r io.Reader) (Aux, error) {
	return newAux(r)
}

// SendAux implements Solver.SendAux.
func (s *PaxosSolver) SendAux(io ot.IO, aux Aux) error {
	return sendAux(io, aux)
}

// ReceiveAux implements Solver.ReceiveAux.
func (s *PaxosSolver) ReceiveAux(io ot.IO) (Aux, error) {
	return receiveAux(io)
}

// paxosHash computes the key-dependent hash functions of x.
type paxosHash struct {
	aux    Aux
	params Params
	buf    [8 + field.Size]byte
}

func newPaxosHash(aux Aux, params Params) *paxosHash {
	return &paxosHash{
		aux:    aux,
		params: params,
	}
}

func (h *paxosHash) setup(k uint64, x field.Element) {
	binary.BigEndian.PutUint64(h.buf[:8], k)
	x.PutBytes(h.buf[8:])
}

// index computes h_i(x) in [0, |L|).
func (h *paxosHash) index(i int, x field.Element) int {
	h.setup(h.aux[i], x)
	sum := blake3.Sum256(h.buf[:])
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(h.params.L))
}

// r computes the |R|-bit vector r(x).
func (h *paxosHash) r(x field.Element) *bitset.BitSet {
	h.setup(h.aux[2], x)

	hasher := blake3.New()
	hasher.Write(h.buf[:])
	buf := make([]byte, (h.params.R+7)/8)
	hasher.Digest().Read(buf)

	bits := bitset.New(uint(h.params.R))
	for i := 0; i < h.params.R; i++ {
		if buf[i/8]&(1<<(i%8)) != 0 {
			bits.Set(uint(i))
		}
	}
	return bits
}

func innerProduct(bits *bitset.BitSet, r field.Vector) field.Element {
	var sum field.Element
	for i, ok := bits.NextSet(0); ok; i, ok = bits.NextSet(i + 1) {
		sum = sum.Add(r[i])
	}
	return sum
}

// Decode implements Solver.Decode.
func (s *PaxosSolver) Decode(p field.Vector, x field.Element, aux Aux,
	params Params) field.Element {

	h := newPaxosHash(aux, params)
	l1 := p[h.index(0, x)]
	l2 := p[h.index(1, x)]

	return l1.Add(l2).Add(innerProduct(h.r(x), p[params.L:]))
}

type paxosEdge struct {
	u, v int
	bits *bitset.BitSet
	y    field.Element
}

// peeled records an edge removed from the graph at its degree-1 node.
type peeled struct {
	edge int
	node int
}

// Encode implements Solver.Encode.
func (s *PaxosSolver) Encode(r io.Reader, points []Point, aux Aux,
	params Params) (field.Vector, error) {

	if params.L < 2 {
		return nil, fmt.Errorf("solver: invalid paxos params %v", params)
	}

	// Build the cuckoo graph over the L cells.
	h := newPaxosHash(aux, params)
	edges := make([]paxosEdge, len(points))
	adj := make([][]int, params.L)
	degree := make([]int, params.L)
	removed := make([]bool, len(points))

	var loops []int
	for i, pt := range points {
		e := paxosEdge{
			u:    h.index(0, pt.X),
			v:    h.index(1, pt.X),
			bits: h.r(pt.X),
			y:    pt.Y,
		}
		edges[i] = e
		if e.u == e.v {
			// L[u] + L[u] cancels: the edge only constrains R.
			loops = append(loops, i)
			removed[i] = true
			continue
		}
		adj[e.u] = append(adj[e.u], i)
		adj[e.v] = append(adj[e.v], i)
		degree[e.u]++
		degree[e.v]++
	}

	// Peel degree-1 nodes until only the 2-core remains.
	var queue []int
	for node, d := range degree {
		if d == 1 {
			queue = append(queue, node)
		}
	}
	var stack []peeled
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if degree[node] != 1 {
			continue
		}
		for _, ei := range adj[node] {
			if removed[ei] {
				continue
			}
			removed[ei] = true
			stack = append(stack, peeled{
				edge: ei,
				node: node,
			})
			other := edges[ei].u
			if other == node {
				other = edges[ei].v
			}
			degree[node]--
			degree[other]--
			if degree[other] == 1 {
				queue = append(queue, other)
			}
			break
		}
	}

	// Span the 2-core with a BFS forest. Each visited node carries
	// its value as an affine form over R.
	forms := make([]*bitset.BitSet, params.L)
	consts := make(field.Vector, params.L)
	tree := make([]bool, len(points))

	for root := 0; root < params.L; root++ {
		if degree[root] == 0 || forms[root] != nil {
			continue
		}
		c, err := field.Random(r)
		if err != nil {
			return nil, err
		}
		forms[root] = bitset.New(uint(params.R))
		consts[root] = c

		bfs := []int{root}
		for len(bfs) > 0 {
			node := bfs[0]
			bfs = bfs[1:]
			for _, ei := range adj[node] {
				if removed[ei] || tree[ei] {
					continue
				}
				e := &edges[ei]
				next := e.u
				if next == node {
					next = e.v
				}
				if forms[next] != nil {
					continue
				}
				tree[ei] = true
				forms[next] = forms[node].SymmetricDifference(e.bits)
				consts[next] = consts[node].Add(e.y)
				bfs = append(bfs, next)
			}
		}
	}

	// Self-loops and non-tree core edges constrain R.
	var rows []constraint
	for i := range edges {
		e := &edges[i]
		if e.u == e.v {
			rows = append(rows, constraint{
				Bits:  e.bits.Clone(),
				Value: e.y,
			})
			continue
		}
		if removed[i] || tree[i] {
			continue
		}
		rows = append(rows, constraint{
			Bits: forms[e.u].SymmetricDifference(forms[e.v]).
				SymmetricDifference(e.bits),
			Value: e.y.Add(consts[e.u]).Add(consts[e.v]),
		})
	}
	if len(rows) > params.R {
		return nil, ErrEncodingFailure
	}
	vecR, err := gaussSolve(r, rows, params.R)
	if err != nil {
		return nil, err
	}

	vecL, err := field.RandomVector(r, params.L)
	if err != nil {
		return nil, err
	}
	for node, form := range forms {
		if form != nil {
			vecL[node] = consts[node].Add(innerProduct(form, vecR))
		}
	}

	// Assign the peeled nodes in reverse peeling order.
	for i := len(stack) - 1; i >= 0; i-- {
		e := &edges[stack[i].edge]
		other := e.u
		if other == stack[i].node {
			other = e.v
		}
		vecL[stack[i].node] = e.y.Add(vecL[other]).
			Add(innerProduct(e.bits, vecR))
	}

	result := make(field.Vector, 0, params.CodeLength())
	result = append(result, vecL...)
	result = append(result, vecR...)

	return result, nil
}
