package main

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store holds the authoritative document plus the undo history: a bounded
// sequence of full document snapshots and a cursor. Entries past the cursor
// are the redo future and are discarded when a new commit lands mid-history.
type Store struct {
	doc     Document
	history []Document
	cursor  int

	log      *zap.Logger
	onChange func()
}

// NewStore wraps an initial document. The initial state is the first
// history entry, so undo at the boundary is a no-op rather than a fall into
// an empty document.
func NewStore(doc Document, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		doc:     doc,
		history: []Document{doc.Clone()},
		cursor:  0,
		log:     log,
	}
}

// OnChange registers a callback fired after every committed mutation,
// including undo/redo. Used to kick the debounced save.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// Document returns the current committed snapshot.
func (s *Store) Document() *Document {
	return &s.doc
}

// commit pushes the current document onto the history as one entry. A commit
// from a non-tip cursor discards the redo future first; the oldest entry is
// evicted once the cap is reached.
func (s *Store) commit() {
	s.history = s.history[:s.cursor+1]
	s.history = append(s.history, s.doc.Clone())
	if len(s.history) > historyCap {
		s.history = s.history[1:]
	}
	s.cursor = len(s.history) - 1
	s.notify()
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// AddNode creates a node of the given kind at the canvas center with a
// default counter-seeded label. The counter is monotonic and never reused.
func (s *Store) AddNode(kind ShapeKind) Node {
	w, h := boundingBox(kind)
	id := fmt.Sprintf("node-%d", s.doc.NodeCounter)
	if s.doc.HasNode(id) {
		// The counter is the sole id source, so a collision means the
		// model is corrupt.
		panic("duplicate node id: " + id)
	}
	n := Node{
		ID:    id,
		X:     canvasWidth/2 - w/2,
		Y:     canvasHeight/2 - h/2,
		Label: fmt.Sprintf("Node %d", s.doc.NodeCounter),
		Type:  kind,
	}
	s.doc.Nodes = append(s.doc.Nodes, n)
	s.doc.NodeCounter++
	s.commit()
	return n
}

// MoveNode commits a new position for a node. Unchanged positions are a
// no-op so an aborted drag does not pollute the history.
func (s *Store) MoveNode(id string, x, y float64) {
	n := s.doc.FindNode(id)
	if n == nil {
		s.log.Warn("move for unknown node", zap.String("id", id))
		return
	}
	if n.X == x && n.Y == y {
		return
	}
	n.X = x
	n.Y = y
	s.commit()
}

// SetLabel commits a node's label. Callers batch an editing session and call
// this once when it ends; per-keystroke text lives outside the store.
func (s *Store) SetLabel(id, text string) {
	n := s.doc.FindNode(id)
	if n == nil {
		s.log.Warn("label for unknown node", zap.String("id", id))
		return
	}
	if n.Label == text {
		return
	}
	n.Label = text
	s.commit()
}

// AddEdge connects two node anchors. Self-loops and references to missing
// nodes are rejected as silent no-ops; both indicate a caller bug, never a
// reason to corrupt the model.
func (s *Store) AddEdge(sourceID string, sourceAnchor Anchor, targetID string, targetAnchor Anchor) {
	if sourceID == targetID {
		s.log.Warn("rejected self-loop edge", zap.String("id", sourceID))
		return
	}
	if !s.doc.HasNode(sourceID) || !s.doc.HasNode(targetID) {
		s.log.Warn("rejected edge to missing node",
			zap.String("source", sourceID), zap.String("target", targetID))
		return
	}
	s.doc.Edges = append(s.doc.Edges, Edge{
		ID:           uuid.NewString(),
		SourceID:     sourceID,
		TargetID:     targetID,
		SourceAnchor: sourceAnchor,
		TargetAnchor: targetAnchor,
	})
	s.commit()
}

// DeleteNode removes a node and every edge touching it, as one atomic
// history entry.
func (s *Store) DeleteNode(id string) {
	if !s.doc.HasNode(id) {
		return
	}
	nodes := s.doc.Nodes[:0]
	for _, n := range s.doc.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	s.doc.Nodes = nodes

	edges := s.doc.Edges[:0]
	for _, e := range s.doc.Edges {
		if e.SourceID != id && e.TargetID != id {
			edges = append(edges, e)
		}
	}
	s.doc.Edges = edges
	s.commit()
}

// ExtendNode implements the double-activate gesture: a new default node is
// placed a fixed gap beyond the source's extent along the anchor axis and
// connected to it, all as one history entry.
func (s *Store) ExtendNode(fromID string, anchor Anchor, kind ShapeKind) {
	src := s.doc.FindNode(fromID)
	if src == nil {
		s.log.Warn("extend from unknown node", zap.String("id", fromID))
		return
	}

	srcW, srcH := boundingBox(src.Type)
	w, h := boundingBox(kind)
	n := Node{
		ID:    fmt.Sprintf("node-%d", s.doc.NodeCounter),
		Label: fmt.Sprintf("Node %d", s.doc.NodeCounter),
		Type:  kind,
	}

	switch anchor {
	case AnchorTop:
		n.X = src.X + srcW/2 - w/2
		n.Y = src.Y - extendGap - h
	case AnchorBottom:
		n.X = src.X + srcW/2 - w/2
		n.Y = src.Y + srcH + extendGap
	case AnchorLeft:
		n.X = src.X - extendGap - w
		n.Y = src.Y + srcH/2 - h/2
	case AnchorRight:
		n.X = src.X + srcW + extendGap
		n.Y = src.Y + srcH/2 - h/2
	}

	targetAnchor := anchor.Opposite()
	s.doc.Nodes = append(s.doc.Nodes, n)
	s.doc.NodeCounter++
	s.doc.Edges = append(s.doc.Edges, Edge{
		ID:           uuid.NewString(),
		SourceID:     fromID,
		TargetID:     n.ID,
		SourceAnchor: anchor,
		TargetAnchor: targetAnchor,
	})
	s.commit()
}

// ClearChart empties the document and reseeds the counter, as one entry.
func (s *Store) ClearChart() {
	s.doc = NewDocument()
	s.commit()
}

// CanUndo reports whether an earlier snapshot exists.
func (s *Store) CanUndo() bool {
	return s.cursor > 0
}

// CanRedo reports whether a later snapshot exists.
func (s *Store) CanRedo() bool {
	return s.cursor < len(s.history)-1
}

// Undo steps the cursor back and restores that snapshot wholesale. No-op at
// the oldest retained entry. Undo does not itself push history.
func (s *Store) Undo() {
	if !s.CanUndo() {
		return
	}
	s.cursor--
	s.doc = s.history[s.cursor].Clone()
	s.notify()
}

// Redo steps the cursor forward and restores that snapshot.
func (s *Store) Redo() {
	if !s.CanRedo() {
		return
	}
	s.cursor++
	s.doc = s.history[s.cursor].Clone()
	s.notify()
}
