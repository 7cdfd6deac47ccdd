package cmd

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/achilleasa/polaris-cull/bvh"
	"github.com/achilleasa/polaris-cull/culler"
	"github.com/achilleasa/polaris-cull/geom"
	"github.com/achilleasa/polaris-cull/scene"
	"github.com/achilleasa/polaris-cull/types"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
)

const benchOrbitRadius float32 = 150

// Cull a randomly generated scene from a camera orbiting its center.
func Bench(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	numObjects := ctx.Int("objects")
	numFrames := ctx.Int("frames")
	rebuildEvery := ctx.Int("rebuild-every")
	if numObjects < 0 || numFrames <= 0 {
		return fmt.Errorf("invalid object (%d) or frame (%d) count", numObjects, numFrames)
	}

	rng := rand.New(rand.NewSource(ctx.Int64("seed")))
	objects := benchObjects(rng, numObjects, benchOrbitRadius)

	buildStart := time.Now()
	tree, err := bvh.Build(objects, buildOptions(ctx))
	if err != nil {
		return err
	}
	buildTime := time.Since(buildStart)
	logger.Infof("tree information:\n%s", tree.Stats())

	reg := prometheus.NewRegistry()
	c := culler.New(tree, culler.Options{
		MetricsNamespace: culler.DefaultOptions.MetricsNamespace,
		Registerer:       reg,
	})

	if addr := ctx.String("metrics-addr"); addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			logger.Noticef("serving metrics on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warningf("metrics server stopped: %v", err)
			}
		}()
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				logger.Warningf("shutting down the metrics server failed: %v", err)
			}
		}()
	}

	cam := scene.NewCamera(float32(ctx.Float64("fov")))
	var (
		totalTime                    time.Duration
		minTime                      = time.Duration(math.MaxInt64)
		maxTime                      time.Duration
		visible, newlyVisible, nodes int
		rebuilds                     int
	)
	for frame := 0; frame < numFrames; frame++ {
		if rebuildEvery > 0 && frame > 0 && frame%rebuildEvery == 0 {
			jitterObjects(rng, objects)
			if err := tree.Rebuild(objects); err != nil {
				return err
			}
			rebuilds++
		}

		angle := 2 * math.Pi * float64(frame) / float64(numFrames)
		cam.Position = types.XYZ(
			benchOrbitRadius*float32(math.Cos(angle)),
			0,
			benchOrbitRadius*float32(math.Sin(angle)),
		)
		cam.LookAt = types.XYZ(0, 0, 0)
		cam.Update()

		res := c.CullCamera(cam)
		totalTime += res.Stats.TraversalTime
		minTime = min(minTime, res.Stats.TraversalTime)
		maxTime = max(maxTime, res.Stats.TraversalTime)
		visible += res.Stats.ObjectsVisible
		newlyVisible += res.Stats.ObjectsNewlyVisible
		nodes += res.Stats.NodesVisited
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Objects", "Frames", "Rebuilds", "Build time", "Avg visible", "Avg new", "Avg nodes", "Min", "Max"})
	table.Append([]string{
		fmt.Sprintf("%d", numObjects),
		fmt.Sprintf("%d", numFrames),
		fmt.Sprintf("%d", rebuilds),
		buildTime.String(),
		fmt.Sprintf("%.1f", float64(visible)/float64(numFrames)),
		fmt.Sprintf("%.1f", float64(newlyVisible)/float64(numFrames)),
		fmt.Sprintf("%.1f", float64(nodes)/float64(numFrames)),
		minTime.String(),
		maxTime.String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "", "", "AVG", (totalTime / time.Duration(numFrames)).String()})
	table.Render()

	logger.Noticef("benchmark results\n%s", buf.String())
	return nil
}

func benchObjects(rng *rand.Rand, count int, spread float32) []bvh.GameObjectInfo[types.World] {
	objects := make([]bvh.GameObjectInfo[types.World], count)
	for idx := range objects {
		center := geom.NewPoint[types.World](
			(rng.Float32()*2-1)*spread,
			(rng.Float32()*2-1)*spread*0.1,
			(rng.Float32()*2-1)*spread,
		)
		axis := types.XYZ(rng.Float32()*2-1, rng.Float32()*2-1, rng.Float32()*2-1)
		rot := types.QuatIdent()
		if axis.Len() > 0 {
			rot = types.QuatFromAxisAngle(axis, rng.Float32()*math.Pi)
		}
		half := types.XYZ(0.5+rng.Float32()*2, 0.5+rng.Float32()*2, 0.5+rng.Float32()*2)
		objects[idx] = bvh.GameObjectInfo[types.World]{
			ID:     uuid.New(),
			Volume: geom.OBBFromRotation(center, rot, half),
		}
	}
	return objects
}

// Move every object by a small random offset while keeping its identity.
func jitterObjects(rng *rand.Rand, objects []bvh.GameObjectInfo[types.World]) {
	for idx := range objects {
		offset := geom.NewVector[types.World](rng.Float32()-0.5, rng.Float32()-0.5, rng.Float32()-0.5)
		objects[idx].Volume.Center = objects[idx].Volume.Center.Add(offset)
	}
}
