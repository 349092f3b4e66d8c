package state

// This file contains the functions that check if a match position
// is repeated, used for the triple-repetition draw rule.

import (
	"encoding/binary"
	"hash/fnv"

	"k8s.io/klog/v2"
)

// HashNode represents a list of hashes of the previous positions in a line of the
// game, used to check for repeated positions.
type HashNode struct {
	Hash uint64
	Prev *HashNode
}

// boardHash calculates a hash of the position: the cells' contents plus the next
// player to move. The board has no translation symmetry (the center matters), so
// no normalization is needed.
func (b *Board) boardHash() uint64 {
	hasher := fnv.New64a()
	if err := binary.Write(hasher, binary.LittleEndian, b.NextPlayer); err != nil {
		klog.Fatalf("Failed to write to hasher: %v", err)
	}
	if err := binary.Write(hasher, binary.LittleEndian, b.cells); err != nil {
		klog.Fatalf("Failed to write to hasher: %v", err)
	}
	return hasher.Sum64()
}

// CompareBoards checks if two boards hold the same position: same cells and same
// player to move. MoveNumber and match history are not compared.
//
// This function assumes Board.Derived is set for both boards.
func CompareBoards(b1, b2 *Board) bool {
	if b1.Derived.Hash != b2.Derived.Hash {
		return false
	}
	if b1.NextPlayer != b2.NextPlayer {
		return false
	}
	return b1.cells == b2.cells
}

// CountRepeats returns the number of earlier positions of the same match equal to
// the current one.
//
// It requires b.Derived.Hash to be set, and compares along the PreviousBoards chain.
func (b *Board) CountRepeats() uint8 {
	h := b.Derived.Hash
	var repeats uint8
	for hn := b.PreviousBoards; hn != nil; hn = hn.Prev {
		if hn.Hash == h {
			repeats++
		}
	}
	return repeats
}
