package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/achilleasa/polaris-cull/bvh"
	"github.com/achilleasa/polaris-cull/culler"
	"github.com/achilleasa/polaris-cull/scene/reader"
	"github.com/achilleasa/polaris-cull/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func loadScene(ctx *cli.Context) (*reader.Scene, *bvh.Tree[types.World], error) {
	if ctx.NArg() != 1 {
		return nil, nil, errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(context.Background(), ctx.Args().First())
	if err != nil {
		return nil, nil, err
	}

	tree, err := bvh.Build(sc.Objects, buildOptions(ctx))
	if err != nil {
		return nil, nil, err
	}
	return sc, tree, nil
}

func buildOptions(ctx *cli.Context) bvh.BuildOptions {
	opts := bvh.DefaultBuildOptions
	if ctx.IsSet("parallel-threshold") {
		opts.ParallelThreshold = ctx.Int("parallel-threshold")
	}
	return opts
}

// Cull a scene against its camera and list the visible objects.
func CullScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	sc, tree, err := loadScene(ctx)
	if err != nil {
		return err
	}

	if aspect := ctx.Float64("aspect"); aspect > 0 {
		sc.Camera.SetupProjection(float32(aspect))
	}
	logger.Info(sc.Camera.String())

	c := culler.New(tree, culler.Options{})
	res := c.CullCamera(sc.Camera)
	visibleLines := culler.CullSegments(sc.Camera.Frustum(), sc.Lines)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Object", "Name", "Center"})
	for _, id := range res.Visible {
		center := ""
		if idx, ok := tree.Lookup(id); ok {
			if node, ok := tree.Node(idx); ok {
				center = node.Volume.Center.String()
			}
		}
		table.Append([]string{id.String(), sc.Names[id], center})
	}
	table.SetFooter([]string{
		"VISIBLE",
		fmt.Sprintf("%d / %d", len(res.Visible), len(sc.Objects)),
		fmt.Sprintf("%d / %d lines", len(visibleLines), len(sc.Lines)),
	})
	table.Render()

	logger.Noticef(
		"visited %d nodes and culled %d subtrees in %s\n%s",
		res.Stats.NodesVisited, res.Stats.NodesCulled, res.Stats.TraversalTime, buf.String(),
	)
	return nil
}
