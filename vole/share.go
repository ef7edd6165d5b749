//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/markkurossi/mpsi/field"
)

// Share holds one party's VOLE correlation. The sender's share has U
// and E; the receiver's share has Delta and V.
type Share struct {
	Role  Role
	U     field.Vector
	E     field.Vector
	Delta field.Element
	V     field.Vector
}

// Len returns the number of correlations in the share.
func (s *Share) Len() int {
	if s.Role == SenderRole {
		return len(s.U)
	}
	return len(s.V)
}

// Slice returns the correlations [from:to) of the share.
func (s *Share) Slice(from, to int) *Share {
	result := &Share{
		Role:  s.Role,
		Delta: s.Delta,
	}
	if s.Role == SenderRole {
		result.U = s.U[from:to]
		result.E = s.E[from:to]
	} else {
		result.V = s.V[from:to]
	}
	return result
}

// Append returns a new share with the correlations of s followed by
// the correlations of o. The shares must have the same role and Δ.
func (s *Share) Append(o *Share) *Share {
	result := &Share{
		Role:  s.Role,
		Delta: s.Delta,
	}
	if s.Role == SenderRole {
		result.U = append(append(field.Vector{}, s.U...), o.U...)
		result.E = append(append(field.Vector{}, s.E...), o.E...)
	} else {
		result.V = append(append(field.Vector{}, s.V...), o.V...)
	}
	return result
}

// Verify checks that the sender and receiver shares satisfy the VOLE
// correlation V = U·Δ + E.
func Verify(sender, receiver *Share) error {
	if sender.Role != SenderRole || receiver.Role != ReceiverRole {
		return fmt.Errorf("vole: invalid share roles %v/%v",
			sender.Role, receiver.Role)
	}
	if sender.Len() != receiver.Len() || len(sender.E) != len(sender.U) {
		return fmt.Errorf("vole: share length mismatch: %d != %d",
			sender.Len(), receiver.Len())
	}
	for i := range sender.U {
		v := sender.U[i].Mul(receiver.Delta).Add(sender.E[i])
		if v != receiver.V[i] {
			return fmt.Errorf("vole: correlation %d mismatch", i)
		}
	}
	return nil
}

type shareData struct {
	Role  Role   `cbor:"1,keyasint"`
	U     []byte `cbor:"2,keyasint,omitempty"`
	E     []byte `cbor:"3,keyasint,omitempty"`
	Delta []byte `cbor:"4,keyasint,omitempty"`
	V     []byte `cbor:"5,keyasint,omitempty"`
}

// MarshalBinary encodes the share in CBOR.
func (s *Share) MarshalBinary() ([]byte, error) {
	data := shareData{
		Role: s.Role,
	}
	if s.Role == SenderRole {
		data.U = s.U.Bytes()
		data.E = s.E.Bytes()
	} else {
		data.Delta = s.Delta.Bytes()
		data.V = s.V.Bytes()
	}
	return cbor.Marshal(data)
}

// UnmarshalBinary decodes the CBOR encoded share.
func (s *Share) UnmarshalBinary(b []byte) error {
	var data shareData
	if err := cbor.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("vole: invalid share: %w", err)
	}
	var err error
	result := Share{
		Role: data.Role,
	}
	switch data.Role {
	case SenderRole:
		result.U, err = field.VectorFromBytes(data.U)
		if err != nil {
			return err
		}
		result.E, err = field.VectorFromBytes(data.E)
		if err != nil {
			return err
		}
		if len(result.U) != len(result.E) {
			return fmt.Errorf("vole: invalid share: len(U)=%d != len(E)=%d",
				len(result.U), len(result.E))
		}

	case ReceiverRole:
		if err := result.Delta.UnmarshalBinary(data.Delta); err != nil {
			return err
		}
		result.V, err = field.VectorFromBytes(data.V)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("vole: invalid share role %v", data.Role)
	}
	*s = result
	return nil
}
