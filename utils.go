package main

import (
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
)

// copyChartToClipboard puts the committed document on the system clipboard
// as pretty-printed JSON, the same shape the persistence blob uses.
func copyChartToClipboard(doc *Document) error {
	data, err := json.MarshalIndent(persistedDocument{
		Nodes:       doc.Nodes,
		Edges:       doc.Edges,
		NodeCounter: doc.NodeCounter,
	}, "", "  ")
	if err != nil {
		return err
	}
	return clipboard.WriteAll(string(data))
}

func formatZoom(scale float64) string {
	return fmt.Sprintf("%d%%", int(scale*100+0.5))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
