package gestures

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/arixlabs/treemorph/internal/models"
)

var ErrUnavailable = errors.New("hand tracking unavailable")

// Tracker produces hand samples. Next blocks until a sample is ready.
type Tracker interface {
	Next(ctx context.Context) (models.HandData, error)
}

// Supervise pumps samples from t into mb until the context ends. A failing
// tracker is logged and leaves the hand absent for the rest of the session.
func Supervise(ctx context.Context, t Tracker, mb *Mailbox, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		h, err := t.Next(ctx)
		if err != nil {
			mb.Publish(models.Absent)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				logger.Info("hand stream closed")
			} else {
				logger.Warn("hand tracking disabled", "err", err)
			}
			return nil
		}
		mb.Publish(h)
	}
}

// Disabled always fails, so the hand stays absent.
type Disabled struct{}

func (Disabled) Next(context.Context) (models.HandData, error) {
	return models.Absent, ErrUnavailable
}

// Synthetic wanders a hand around with smooth noise and cycles through the
// gestures on a fixed schedule. Used for demos and headless runs.
type Synthetic struct {
	Interval time.Duration
	Period   time.Duration

	nx, ny *perlin.Perlin
	start  time.Time
	ticker *time.Ticker
}

func NewSynthetic(seed int64, interval time.Duration) *Synthetic {
	if interval <= 0 {
		interval = time.Second / 30
	}
	return &Synthetic{
		Interval: interval,
		Period:   8 * time.Second,
		nx:       perlin.NewPerlin(2, 2, 3, seed),
		ny:       perlin.NewPerlin(2, 2, 3, seed+1),
	}
}

// schedule is the gesture held through each eighth of the period.
var schedule = [8]models.Gesture{
	models.GestureFist, models.GestureFist, models.GestureFist,
	models.GesturePinch,
	models.GestureOpen, models.GestureOpen, models.GestureOpen,
	models.GestureNone,
}

// At is the sample at elapsed time since start.
func (s *Synthetic) At(elapsed time.Duration) models.HandData {
	sec := elapsed.Seconds()
	h := models.HandData{
		X:         clampUnit(float32(s.nx.Noise1D(sec * 0.25))),
		Y:         clampUnit(float32(s.ny.Noise1D(sec * 0.25))),
		IsPresent: true,
	}
	if s.Period > 0 {
		phase := elapsed % s.Period
		h.Gesture = schedule[int(phase*time.Duration(len(schedule))/s.Period)]
	}
	return h
}

func (s *Synthetic) Next(ctx context.Context) (models.HandData, error) {
	if s.ticker == nil {
		s.start = time.Now()
		s.ticker = time.NewTicker(s.Interval)
	}
	select {
	case <-ctx.Done():
		s.ticker.Stop()
		return models.Absent, ctx.Err()
	case now := <-s.ticker.C:
		return s.At(now.Sub(s.start)), nil
	}
}

func clampUnit(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// frame is one line of a hand stream: either raw landmarks for the first
// detected hand, or an already classified sample.
type frame struct {
	Landmarks []Landmark `json:"landmarks"`
	models.HandData
}

// Stream reads newline-delimited JSON frames, as written by an external
// landmark detector.
type Stream struct {
	scanner *bufio.Scanner
}

func NewStream(r io.Reader) *Stream {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Stream{scanner: sc}
}

func (s *Stream) Next(ctx context.Context) (models.HandData, error) {
	for {
		if err := ctx.Err(); err != nil {
			return models.Absent, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return models.Absent, fmt.Errorf("read hand stream: %w", err)
			}
			return models.Absent, io.EOF
		}
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var f frame
		if err := json.Unmarshal(line, &f); err != nil {
			return models.Absent, fmt.Errorf("decode hand frame: %w", err)
		}
		if f.Landmarks != nil {
			return Classify(f.Landmarks), nil
		}
		return f.HandData, nil
	}
}
