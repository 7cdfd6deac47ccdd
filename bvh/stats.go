package bvh

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/achilleasa/polaris-cull/types"
	"github.com/olekukonko/tablewriter"
)

// Build a tabular representation of the tree statistics.
func (t *Tree[S]) Stats() string {
	snap := t.active.Load()

	visible := 0
	for idx := range snap.nodes {
		if node := &snap.nodes[idx]; node.IsLeaf() && Flag(snap.flags[idx].Load()) == FlagPreviouslyVisible {
			visible++
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Category", "Item", "Value"})
	table.Append([]string{"Tree", "---", types.SpaceName[S]() + " space"})
	table.Append([]string{"", "Objects", strconv.Itoa(snap.stats.objects)})
	table.Append([]string{"", "Nodes", strconv.Itoa(snap.stats.nodes)})
	table.Append([]string{"", "Leafs", strconv.Itoa(snap.stats.leafs)})
	table.Append([]string{"", "Max depth", strconv.Itoa(snap.stats.maxDepth)})
	table.Append([]string{"", "Build time", snap.stats.buildTime.String()})
	table.Append([]string{"", "Visible leafs", strconv.Itoa(visible)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Memory", "---", fmtSize(snap.nodes, snap.flags, snap.objects)})
	table.Append([]string{"", "Nodes", fmtSize(snap.nodes)})
	table.Append([]string{"", "Flags", fmtSize(snap.flags)})
	table.Append([]string{"", "Objects", fmtSize(snap.objects)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(snap.nodes, snap.flags, snap.objects), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
