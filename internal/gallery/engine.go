package gallery

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrIndexOutOfRange = errors.New("gallery: index out of range")
	ErrPageOutOfRange  = errors.New("gallery: page out of range")
	ErrInvalidPageSize = errors.New("gallery: page size must be positive")
)

// Move relocates the element at from so that it ends up at index to, which is
// the index of the card it was dropped on. All other elements keep their
// relative order. The input slice is not modified.
func Move(seq []Record, from, to int) ([]Record, error) {
	if err := checkIndex(len(seq), from); err != nil {
		return nil, err
	}
	if err := checkIndex(len(seq), to); err != nil {
		return nil, err
	}

	out := clone(seq)
	if from == to {
		return out, nil
	}
	return relocate(out, from, to), nil
}

// MoveToGap relocates the element at from into the insertion gap that sits
// before index gap of the original sequence (gap == len(seq) is the end).
// Because the element is removed first, a gap past the source is shifted down
// by one before inserting.
func MoveToGap(seq []Record, from, gap int) ([]Record, error) {
	if err := checkIndex(len(seq), from); err != nil {
		return nil, err
	}
	if gap < 0 || gap > len(seq) {
		return nil, fmt.Errorf("%w: gap %d of %d", ErrIndexOutOfRange, gap, len(seq))
	}

	out := clone(seq)
	if gap == from {
		return out, nil
	}
	if gap > from {
		gap--
	}
	return relocate(out, from, gap), nil
}

// MoveToPage moves the element at from to the first slot of targetPage
// (1-indexed). The element always lands at (targetPage-1)*pageSize.
func MoveToPage(seq []Record, from, targetPage, pageSize int) ([]Record, error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	if err := checkIndex(len(seq), from); err != nil {
		return nil, err
	}
	if targetPage < 1 || targetPage > PageCount(len(seq), pageSize) {
		return nil, fmt.Errorf("%w: page %d", ErrPageOutOfRange, targetPage)
	}

	target := PageStart(targetPage, pageSize)
	out := clone(seq)
	if target == from {
		return out, nil
	}
	return relocate(out, from, target), nil
}

func relocate(seq []Record, from, to int) []Record {
	item := seq[from]
	seq = slices.Delete(seq, from, from+1)
	return slices.Insert(seq, to, item)
}

func checkIndex(length, index int) error {
	if index < 0 || index >= length {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, length)
	}
	return nil
}
