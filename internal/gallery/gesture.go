package gallery

import (
	"errors"
	"fmt"
)

var (
	ErrNotDragging = errors.New("gallery: no drag in progress")
	ErrStaleDrag   = errors.New("gallery: dragged record moved before drop")
	ErrBadTarget   = errors.New("gallery: invalid drop target")
)

// GestureState is the phase of one reorder gesture.
type GestureState int

const (
	GestureIdle GestureState = iota
	GestureDragging
	GestureHovering
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GestureDragging:
		return "dragging"
	case GestureHovering:
		return "hovering"
	default:
		return fmt.Sprintf("GestureState(%d)", int(s))
	}
}

// TargetKind tells what a drag is over.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetCard
	TargetPage
)

// DropTarget is either a card (by global index) or a page control.
type DropTarget struct {
	Kind  TargetKind
	Index int
	Page  int
}

// OnCard targets the card at a global index.
func OnCard(index int) DropTarget {
	return DropTarget{Kind: TargetCard, Index: index}
}

// OnPage targets the control of a 1-indexed page.
func OnPage(page int) DropTarget {
	return DropTarget{Kind: TargetPage, Page: page}
}

// DragTransaction is captured when a drag starts and carried to the drop.
type DragTransaction struct {
	ImageID     uint
	SourceIndex int
}

// Gesture drives one drag at a time against a store:
// idle -> dragging -> hovering -> (drop | abandon) -> idle.
type Gesture struct {
	store *Store
	state GestureState
	tx    DragTransaction
	over  DropTarget
}

// NewGesture binds a gesture to store.
func NewGesture(store *Store) *Gesture {
	return &Gesture{store: store}
}

func (g *Gesture) State() GestureState {
	return g.state
}

// Transaction returns the active drag, if any.
func (g *Gesture) Transaction() (DragTransaction, bool) {
	return g.tx, g.state != GestureIdle
}

// Over returns the target currently hovered.
func (g *Gesture) Over() DropTarget {
	return g.over
}

// Begin starts dragging the record at a global index. A drag already in
// progress is abandoned.
func (g *Gesture) Begin(index int) (DragTransaction, error) {
	g.reset()

	g.store.mu.Lock()
	defer g.store.mu.Unlock()
	if err := checkIndex(len(g.store.items), index); err != nil {
		return DragTransaction{}, err
	}
	g.tx = DragTransaction{ImageID: g.store.items[index].ID, SourceIndex: index}
	g.state = GestureDragging
	return g.tx, nil
}

// Hover records the target under the pointer.
func (g *Gesture) Hover(target DropTarget) error {
	if g.state == GestureIdle {
		return ErrNotDragging
	}
	g.over = target
	if target.Kind == TargetNone {
		g.state = GestureDragging
		return nil
	}
	g.state = GestureHovering
	return nil
}

// Leave clears the hovered target.
func (g *Gesture) Leave() {
	if g.state == GestureHovering {
		g.state = GestureDragging
	}
	g.over = DropTarget{}
}

// Drop finishes the gesture on target. Dropping on nothing is the same as
// abandoning. In every case the gesture returns to idle.
func (g *Gesture) Drop(target DropTarget) error {
	if g.state == GestureIdle {
		return ErrNotDragging
	}
	tx := g.tx
	g.reset()
	if target.Kind == TargetNone {
		return nil
	}
	return g.store.Drop(tx, target)
}

// Abandon cancels the gesture without touching the sequence.
func (g *Gesture) Abandon() {
	g.reset()
}

func (g *Gesture) reset() {
	g.state = GestureIdle
	g.tx = DragTransaction{}
	g.over = DropTarget{}
}

// Drop applies a finished drag transaction. The record must still sit at the
// index captured when the drag began.
func (s *Store) Drop(tx DragTransaction, target DropTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkIndex(len(s.items), tx.SourceIndex); err != nil {
		return err
	}
	if s.items[tx.SourceIndex].ID != tx.ImageID {
		return fmt.Errorf("%w: image %d", ErrStaleDrag, tx.ImageID)
	}

	switch target.Kind {
	case TargetCard:
		next, err := Move(s.items, tx.SourceIndex, target.Index)
		if err != nil {
			return err
		}
		s.items = next
		return nil
	case TargetPage:
		next, err := MoveToPage(s.items, tx.SourceIndex, target.Page, s.pageSize)
		if err != nil {
			return err
		}
		s.items = next
		s.page = target.Page
		return nil
	default:
		return ErrBadTarget
	}
}
