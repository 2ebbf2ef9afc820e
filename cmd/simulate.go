package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/arixlabs/treemorph/internal/foliage"
	gestures "github.com/arixlabs/treemorph/internal/gesture"
	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/scene"
)

var simOpts struct {
	frames int
	dt     float32
	target string
	seed   uint64
	demo   bool
	every  int
	sample int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Step the scene without a window and print its state as JSON",
	Args:  cobra.NoArgs,
	RunE:  Simulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVarP(&simOpts.frames, "frames", "n", 300, "frames to step")
	simulateCmd.Flags().Float32Var(&simOpts.dt, "dt", 1.0/60, "seconds per frame")
	simulateCmd.Flags().StringVarP(&simOpts.target, "target", "t", "TREE_SHAPE", "target configuration")
	simulateCmd.Flags().Uint64Var(&simOpts.seed, "seed", 1, "layout seed")
	simulateCmd.Flags().BoolVar(&simOpts.demo, "demo-hand", false, "feed the synthetic hand instead of a fixed target")
	simulateCmd.Flags().IntVar(&simOpts.every, "every", 0, "also print the state every n frames")
	simulateCmd.Flags().IntVar(&simOpts.sample, "sample", 0, "resolve the particle field on the CPU and print this many particles")
}

func Simulate(cmd *cobra.Command, args []string) error {
	if simOpts.frames < 0 {
		return fmt.Errorf("frames must not be negative: %d", simOpts.frames)
	}
	target, err := models.ParseMorphState(simOpts.target)
	if err != nil {
		return err
	}
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	sc := scene.New(settings, scene.Options{
		Logger: logger,
		Rand:   rand.New(rand.NewPCG(simOpts.seed, simOpts.seed)),
	})
	var hand *gestures.Synthetic
	if simOpts.demo {
		hand = gestures.NewSynthetic(int64(simOpts.seed), 0)
	} else {
		sc.SetTarget(target)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	step := time.Duration(float64(simOpts.dt) * float64(time.Second))
	for i := 1; i <= simOpts.frames; i++ {
		if hand != nil {
			sc.Hand.Publish(hand.At(time.Duration(i) * step))
		}
		sc.Frame(simOpts.dt)
		if simOpts.every > 0 && i%simOpts.every == 0 && i != simOpts.frames {
			if err := enc.Encode(sc.Status()); err != nil {
				return err
			}
		}
	}
	if err := enc.Encode(sc.Status()); err != nil {
		return err
	}
	if simOpts.sample > 0 {
		return encodeParticles(cmd.Context(), enc, sc.Foliage, simOpts.sample)
	}
	return nil
}

type particleReport struct {
	Resolved int `json:"resolved"`
	// MeanTreeDistance is how far particles sit from their tree positions.
	MeanTreeDistance float32          `json:"meanTreeDistance"`
	Sample           []foliage.Vertex `json:"sample"`
}

func encodeParticles(ctx context.Context, enc *json.Encoder, f *foliage.Field, n int) error {
	dst := make([]foliage.Vertex, f.Count)
	if err := f.Resolve(ctx, dst); err != nil {
		return err
	}
	var sum float32
	for i, v := range dst {
		sum += v.Position.Sub(f.TreeAt(i)).Len()
	}
	r := particleReport{Resolved: len(dst), Sample: dst[:min(n, len(dst))]}
	if len(dst) > 0 {
		r.MeanTreeDistance = sum / float32(len(dst))
	}
	return enc.Encode(r)
}
