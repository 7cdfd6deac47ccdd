package cmd

import "github.com/urfave/cli"

// Display the BVH built for a scene.
func ShowTreeInfo(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	_, tree, err := loadScene(ctx)
	if err != nil {
		return err
	}

	logger.Noticef("tree information:\n%s", tree.Stats())
	return nil
}
