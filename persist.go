package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bep/debounce"
	"go.uber.org/zap"
)

// chartKey is the single blob the editor persists under.
const chartKey = "chart"

// BlobStore is the opaque key-value persistence the editor talks to. The
// editor never assumes anything about where the bytes go.
type BlobStore interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// fileBlobStore keeps one JSON file per key inside a directory.
type fileBlobStore struct {
	dir string
}

func newFileBlobStore(dir string) *fileBlobStore {
	return &fileBlobStore{dir: dir}
}

func (f *fileBlobStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *fileBlobStore) Load(key string) ([]byte, error) {
	return os.ReadFile(f.path(key))
}

func (f *fileBlobStore) Save(key string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(f.path(key), data, 0644)
}

// persistedDocument mirrors Document with every field optional so partial
// blobs default piecemeal instead of failing the whole load.
type persistedDocument struct {
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
	NodeCounter int    `json:"nodeCounter"`
}

// encodeDocument serializes the committed document for storage.
func encodeDocument(doc Document) ([]byte, error) {
	return json.Marshal(persistedDocument{
		Nodes:       doc.Nodes,
		Edges:       doc.Edges,
		NodeCounter: doc.NodeCounter,
	})
}

// decodeDocument parses a persisted blob. Malformed input yields an empty
// document; missing or invalid fields default individually. Edges that
// reference absent nodes or loop onto one node are dropped here so a bad
// blob cannot smuggle an invariant violation into the model.
func decodeDocument(data []byte) Document {
	var p persistedDocument
	if err := json.Unmarshal(data, &p); err != nil {
		return NewDocument()
	}

	doc := NewDocument()
	seen := map[string]bool{}
	for _, n := range p.Nodes {
		if n.ID == "" || seen[n.ID] {
			continue
		}
		if _, ok := shapeTable[n.Type]; !ok {
			continue
		}
		seen[n.ID] = true
		doc.Nodes = append(doc.Nodes, n)
	}
	for _, e := range p.Edges {
		if e.SourceID == e.TargetID || !seen[e.SourceID] || !seen[e.TargetID] {
			continue
		}
		if !validAnchorValue(e.SourceAnchor) || !validAnchorValue(e.TargetAnchor) {
			continue
		}
		doc.Edges = append(doc.Edges, e)
	}
	if p.NodeCounter >= 1 {
		doc.NodeCounter = p.NodeCounter
	}
	// The counter must stay ahead of every counter-derived id in the blob,
	// even when the counter field itself was missing or stale, or the next
	// add would reissue a taken id.
	for _, n := range doc.Nodes {
		if rest, ok := strings.CutPrefix(n.ID, "node-"); ok {
			if seq, err := strconv.Atoi(rest); err == nil && seq >= doc.NodeCounter {
				doc.NodeCounter = seq + 1
			}
		}
	}
	return doc
}

func validAnchorValue(a Anchor) bool {
	switch a {
	case AnchorTop, AnchorBottom, AnchorLeft, AnchorRight:
		return true
	}
	return false
}

// loadDocument reads the chart blob. Absence is a normal first run, not an
// error; anything else is logged and also falls back to empty.
func loadDocument(store BlobStore, log *zap.Logger) Document {
	data, err := store.Load(chartKey)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn("chart load failed, starting empty", zap.Error(err))
		}
		return NewDocument()
	}
	return decodeDocument(data)
}

// saver writes the document after a quiescence period. Each change hands a
// fresh snapshot to the debouncer, so the timer goroutine never reads live
// model state. Save failures are warnings only; in-memory state is the
// source of truth.
type saver struct {
	store     BlobStore
	log       *zap.Logger
	debounced func(func())
}

func newSaver(store BlobStore, log *zap.Logger) *saver {
	return &saver{
		store:     store,
		log:       log,
		debounced: debounce.New(saveDebounceMillis * time.Millisecond),
	}
}

// DocumentChanged schedules a save of the given snapshot. Later snapshots
// inside the window supersede earlier ones.
func (s *saver) DocumentChanged(snapshot Document) {
	s.debounced(func() {
		s.write(snapshot)
	})
}

// Flush writes a snapshot immediately, bypassing the debounce. Used on quit.
func (s *saver) Flush(snapshot Document) {
	s.write(snapshot)
}

func (s *saver) write(snapshot Document) {
	data, err := encodeDocument(snapshot)
	if err != nil {
		s.log.Warn("chart encode failed", zap.Error(err))
		return
	}
	if err := s.store.Save(chartKey, data); err != nil {
		s.log.Warn("chart save failed", zap.Error(err))
	}
}

// newLogger opens a session log file in the data directory. A TUI owns the
// terminal, so logs can never go to stdout. Failure degrades to a no-op
// logger rather than blocking startup.
func newLogger(dir string) *zap.Logger {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return zap.NewNop()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "nodal.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
