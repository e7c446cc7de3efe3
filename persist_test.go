package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDocumentEncodeDecodeRoundTrip(t *testing.T) {
	doc := NewDocument()
	doc.Nodes = []Node{
		{ID: "node-1", X: 10.5, Y: -3, Label: "start", Type: ShapeEllipse},
		{ID: "node-2", X: 200, Y: 340, Label: "decide", Type: ShapeDiamond},
	}
	doc.Edges = []Edge{{
		ID: "e1", SourceID: "node-1", TargetID: "node-2",
		SourceAnchor: AnchorBottom, TargetAnchor: AnchorTop,
	}}
	doc.NodeCounter = 3

	data, err := encodeDocument(doc)
	require.NoError(t, err)

	got := decodeDocument(data)
	assert.Equal(t, doc, got)
}

func TestWireFormatFieldNames(t *testing.T) {
	doc := NewDocument()
	doc.Nodes = []Node{{ID: "node-1", Type: ShapeRectangle}}
	doc.Nodes = append(doc.Nodes, Node{ID: "node-2", Type: ShapeRectangle})
	doc.Edges = []Edge{{
		ID: "e1", SourceID: "node-1", TargetID: "node-2",
		SourceAnchor: AnchorLeft, TargetAnchor: AnchorRight,
	}}

	data, err := encodeDocument(doc)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "nodes")
	assert.Contains(t, raw, "edges")
	assert.Contains(t, raw, "nodeCounter")

	var edges []map[string]any
	require.NoError(t, json.Unmarshal(raw["edges"], &edges))
	require.Len(t, edges, 1)
	assert.Equal(t, "node-1", edges[0]["sourceId"])
	assert.Equal(t, "node-2", edges[0]["targetId"])
	assert.Equal(t, "left", edges[0]["sourcePosition"])
	assert.Equal(t, "right", edges[0]["targetPosition"])
}

func TestDecodeMalformedBlobYieldsEmptyDocument(t *testing.T) {
	assert.Equal(t, NewDocument(), decodeDocument([]byte("not json at all")))
	assert.Equal(t, NewDocument(), decodeDocument([]byte(`[1,2,3]`)))
}

func TestDecodePartialFieldsDefaultIndividually(t *testing.T) {
	got := decodeDocument([]byte(`{"nodeCounter": 7}`))
	assert.Empty(t, got.Nodes)
	assert.Empty(t, got.Edges)
	assert.Equal(t, 7, got.NodeCounter)

	got = decodeDocument([]byte(`{"nodes": [{"id":"a","x":1,"y":2,"label":"n","type":"rectangle"}]}`))
	assert.Len(t, got.Nodes, 1)
	assert.Equal(t, 1, got.NodeCounter)
}

func TestDecodeCounterAdvancesPastLoadedIDs(t *testing.T) {
	// A blob without a counter field still carries counter-derived ids; the
	// counter must land past them so later adds never collide.
	blob := `{"nodes": [
		{"id":"node-1","type":"rectangle"},
		{"id":"node-7","type":"ellipse"},
		{"id":"custom","type":"rectangle"}
	]}`
	got := decodeDocument([]byte(blob))
	assert.Equal(t, 8, got.NodeCounter)

	assert.NotPanics(t, func() {
		s := NewStore(got, zap.NewNop())
		n := s.AddNode(ShapeRectangle)
		assert.Equal(t, "node-8", n.ID)
	})

	// A stale counter below the loaded ids is corrected the same way.
	got = decodeDocument([]byte(`{"nodes":[{"id":"node-3","type":"rectangle"}],"nodeCounter":2}`))
	assert.Equal(t, 4, got.NodeCounter)
}

func TestDecodeDropsInvalidEntries(t *testing.T) {
	blob := `{
		"nodes": [
			{"id":"a","type":"rectangle"},
			{"id":"a","type":"rectangle"},
			{"id":"","type":"rectangle"},
			{"id":"b","type":"dodecahedron"},
			{"id":"c","type":"ellipse"}
		],
		"edges": [
			{"id":"ok","sourceId":"a","targetId":"c","sourcePosition":"bottom","targetPosition":"top"},
			{"id":"loop","sourceId":"a","targetId":"a","sourcePosition":"bottom","targetPosition":"top"},
			{"id":"dangling","sourceId":"a","targetId":"gone","sourcePosition":"bottom","targetPosition":"top"},
			{"id":"badanchor","sourceId":"a","targetId":"c","sourcePosition":"middle","targetPosition":"top"}
		],
		"nodeCounter": 4
	}`
	got := decodeDocument([]byte(blob))

	require.Len(t, got.Nodes, 2)
	assert.Equal(t, "a", got.Nodes[0].ID)
	assert.Equal(t, "c", got.Nodes[1].ID)

	require.Len(t, got.Edges, 1)
	assert.Equal(t, "ok", got.Edges[0].ID)
}

func TestDecodeCounterFloorIsOne(t *testing.T) {
	got := decodeDocument([]byte(`{"nodeCounter": 0}`))
	assert.Equal(t, 1, got.NodeCounter)
	got = decodeDocument([]byte(`{"nodeCounter": -5}`))
	assert.Equal(t, 1, got.NodeCounter)
}

func TestFileBlobStoreRoundTrip(t *testing.T) {
	store := newFileBlobStore(t.TempDir())

	require.NoError(t, store.Save("chart", []byte(`{"nodes":[]}`)))
	data, err := store.Load("chart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[]}`, string(data))
}

func TestFileBlobStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deeper", "still")
	store := newFileBlobStore(dir)
	require.NoError(t, store.Save("chart", []byte("{}")))

	_, err := os.Stat(filepath.Join(dir, "chart.json"))
	assert.NoError(t, err)
}

func TestLoadDocumentMissingBlobStartsEmpty(t *testing.T) {
	store := newFileBlobStore(t.TempDir())
	doc := loadDocument(store, zap.NewNop())
	assert.Equal(t, NewDocument(), doc)
}

func TestLoadDocumentCorruptBlobStartsEmpty(t *testing.T) {
	store := newFileBlobStore(t.TempDir())
	require.NoError(t, store.Save(chartKey, []byte("}{")))

	doc := loadDocument(store, zap.NewNop())
	assert.Equal(t, NewDocument(), doc)
}

// failingBlobStore always errors on save.
type failingBlobStore struct{}

func (failingBlobStore) Load(string) ([]byte, error)    { return nil, os.ErrNotExist }
func (failingBlobStore) Save(string, []byte) error      { return os.ErrPermission }

func TestSaverFailureIsNonFatal(t *testing.T) {
	s := newSaver(failingBlobStore{}, zap.NewNop())
	doc := NewDocument()

	// Must not panic or block; failures only warn.
	assert.NotPanics(t, func() { s.Flush(doc) })
}

func TestSaverFlushWrites(t *testing.T) {
	dir := t.TempDir()
	store := newFileBlobStore(dir)
	s := newSaver(store, zap.NewNop())

	doc := NewDocument()
	doc.Nodes = []Node{{ID: "node-1", Label: "Node 1", Type: ShapeRectangle}}
	doc.NodeCounter = 2
	s.Flush(doc)

	got := loadDocument(store, zap.NewNop())
	assert.Equal(t, doc, got)
}
