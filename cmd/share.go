package cmd

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arixlabs/treemorph/internal/imagery"
	"github.com/arixlabs/treemorph/internal/layout"
	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/sampler"
)

var shareBase string

var shareCmd = &cobra.Command{
	Use:   "share <image>...",
	Short: "Build a share link that places the given images on a tree",
	Args:  cobra.MinimumNArgs(1),
	RunE:  Share,
}

func init() {
	rootCmd.AddCommand(shareCmd)
	shareCmd.Flags().StringVarP(&shareBase, "base", "b", "http://localhost:8080/", "page the link points at")
}

func Share(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	uris := make([]string, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(8)
	for i, path := range args {
		g.Go(func() error {
			raw, err := imagery.Fetch(ctx, path)
			if err != nil {
				return err
			}
			if uris[i], err = imagery.DataURI(raw); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	smp := sampler.New(sampler.Dimensions{
		TreeHeight:     settings.TreeHeight,
		TreeRadiusBase: settings.TreeRadiusBase,
		ScatterRadius:  settings.ScatterRadius,
	}, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))

	// newest first, as if the images had been added in argument order
	ps := make([]models.Photo, 0, len(uris))
	for _, uri := range uris {
		ps = append([]models.Photo{smp.Photo(uuid.NewString(), uri)}, ps...)
	}

	link, err := layout.ShareURL(shareBase, ps, settings.MaxShareLength)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), link)
	return err
}
