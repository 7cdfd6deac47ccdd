package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/polaris-cull/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	buildFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "parallel-threshold",
			Value: 4096,
			Usage: "build subtrees with at least this many objects in parallel",
		},
	}

	app := cli.NewApp()
	app.Name = "polaris-cull"
	app.Usage = "cull scene objects against a camera frustum using a BVH"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set the log level (debug, info, notice, warning, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "cull",
			Usage: "list the scene objects visible from the scene camera",
			Description: `
Load a YAML scene description, index its objects in a BVH and cull them
against the view frustum of the scene camera.`,
			ArgsUsage: "scene.yaml",
			Flags: append([]cli.Flag{
				cli.Float64Flag{
					Name:  "aspect",
					Usage: "override the camera aspect ratio",
				},
			}, buildFlags...),
			Action: cmd.CullScene,
		},
		{
			Name:      "tree-info",
			Usage:     "print statistics about the BVH built for a scene",
			ArgsUsage: "scene.yaml",
			Flags:     buildFlags,
			Action:    cmd.ShowTreeInfo,
		},
		{
			Name:  "bench",
			Usage: "cull a random scene from an orbiting camera",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "objects",
					Value: 100000,
					Usage: "number of objects to generate",
				},
				cli.IntFlag{
					Name:  "frames",
					Value: 1000,
					Usage: "number of frames to cull",
				},
				cli.IntFlag{
					Name:  "rebuild-every",
					Usage: "move the objects and rebuild the tree every N frames (0 disables)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed for the generated scene",
				},
				cli.Float64Flag{
					Name:  "fov",
					Value: 60,
					Usage: "vertical camera FOV in degrees",
				},
				cli.StringFlag{
					Name:  "metrics-addr",
					Usage: "serve prometheus metrics on this address while benchmarking",
				},
			}, buildFlags...),
			Action: cmd.Bench,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
