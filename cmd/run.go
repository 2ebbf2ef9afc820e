package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arixlabs/treemorph/internal/draw"
	gestures "github.com/arixlabs/treemorph/internal/gesture"
	"github.com/arixlabs/treemorph/internal/imagery"
	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/opengl"
	"github.com/arixlabs/treemorph/internal/scene"
	"github.com/arixlabs/treemorph/internal/server"
	"github.com/arixlabs/treemorph/internal/window"
)

var runOpts struct {
	listen   string
	hand     string
	headless bool
	fps      int
	width    int
	height   int
}

var runCmd = &cobra.Command{
	Use:   "run [shared-layout]",
	Short: "Open the tree window",
	Long: `Open the tree window. A shared layout URL or token may be given to start
with its photos on the tree.

Keys: space toggles, s scatters, t assembles, enter dismisses the focused
photo, esc or q quits. Image files dropped on the window are added as photos.`,
	Args: cobra.MaximumNArgs(1),
	RunE: Run,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runtime.LockOSThread()

	runCmd.Flags().StringVarP(&runOpts.listen, "listen", "l", "", "serve the HTTP API on this address (overrides settings)")
	runCmd.Flags().StringVar(&runOpts.hand, "hand", "demo", "hand source: demo, none, stdin or a path to a landmark stream")
	runCmd.Flags().BoolVar(&runOpts.headless, "headless", false, "run without a window")
	runCmd.Flags().IntVar(&runOpts.fps, "fps", 60, "frame rate when headless")
	runCmd.Flags().IntVar(&runOpts.width, "width", 1280, "window width")
	runCmd.Flags().IntVar(&runOpts.height, "height", 800, "window height")
}

func Run(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if runOpts.listen != "" {
		settings.Listen = runOpts.listen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := imagery.NewLoader(settings.TextureSize, logger)
	sc := scene.New(settings, scene.Options{Logger: logger, Loader: loader})
	if len(args) == 1 {
		// a rejected layout is logged by Import; the session starts empty
		_ = sc.Import(args[0])
	}

	tracker, closer, blocking, err := openTracker(runOpts.hand)
	if err != nil {
		return err
	}
	defer closer.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loader.Run(gctx, runtime.NumCPU()) })
	if blocking {
		// reads cannot be interrupted, so the pump is not waited for
		go gestures.Supervise(gctx, tracker, sc.Hand, logger)
	} else {
		g.Go(func() error { return gestures.Supervise(gctx, tracker, sc.Hand, logger) })
	}
	if settings.Listen != "" {
		srv := server.New(sc, logger)
		g.Go(func() error { return srv.ListenAndServe(gctx, settings.Listen) })
	}

	if runOpts.headless {
		logger.Info("running headless", "fps", runOpts.fps)
		g.Go(func() error { return scene.Run(gctx, sc, runOpts.fps) })
		return ignoreCanceled(g.Wait())
	}

	loopErr := renderLoop(gctx, sc)
	stop()
	return errors.Join(loopErr, ignoreCanceled(g.Wait()))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openTracker resolves the --hand flag. blocking reports whether Next can
// block outside of context control.
func openTracker(mode string) (t gestures.Tracker, c io.Closer, blocking bool, err error) {
	switch mode {
	case "demo":
		return gestures.NewSynthetic(time.Now().UnixNano(), 0), nopCloser{}, false, nil
	case "none", "":
		return gestures.Disabled{}, nopCloser{}, false, nil
	case "stdin", "-":
		return gestures.NewStream(os.Stdin), nopCloser{}, true, nil
	}
	f, err := os.Open(mode)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to open hand stream: %w", err)
	}
	return gestures.NewStream(f), f, true, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func renderLoop(ctx context.Context, sc *scene.Scene) error {
	win, err := window.New("treemorph", runOpts.width, runOpts.height)
	if err != nil {
		return err
	}
	defer win.Destroy()

	r, err := opengl.InitGL(sc)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	defer r.Delete()

	app := draw.New(r, sc)
	last := win.Time()
	for !win.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		win.PollEvents()
		now := win.Time()
		dt := float32(now - last)
		last = now

		for _, k := range win.TakeKeys() {
			handleKey(sc, win, k)
		}
		for _, path := range win.TakeDropped() {
			go addDropped(ctx, sc, path)
		}

		sc.Frame(dt)
		w, h := win.GetSize()
		app.Draw(w, h, win.PixelRatio(), dt)
		win.SwapBuffers()
	}
	return nil
}

func handleKey(sc *scene.Scene, win *window.Window, k window.Key) {
	switch k {
	case window.KeyToggle:
		sc.Toggle()
	case window.KeyScatter:
		sc.SetTarget(models.Scattered)
	case window.KeyAssemble:
		sc.SetTarget(models.TreeShape)
	case window.KeyDismiss:
		sc.Dismiss()
	case window.KeyQuit:
		win.Close()
	}
}

// addDropped reads a dropped file off the frame goroutine and queues the
// upload for the next frame.
func addDropped(ctx context.Context, sc *scene.Scene, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read dropped file", "path", path, "err", err)
		return
	}
	uri, err := imagery.DataURI(raw)
	if err != nil {
		logger.Warn("dropped file is not an image", "path", path, "err", err)
		return
	}
	err = sc.Do(ctx, func(s *scene.Scene) {
		if _, err := s.Upload(uri); err != nil {
			logger.Warn("failed to add photo", "path", path, "err", err)
		}
	})
	if err != nil {
		logger.Debug("upload abandoned", "path", path, "err", err)
	}
}
