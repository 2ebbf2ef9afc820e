package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/arixlabs/treemorph/internal/layout"
	"github.com/arixlabs/treemorph/internal/models"
	"github.com/arixlabs/treemorph/internal/photos"
)

type command struct {
	fn   func(*Scene)
	done chan struct{}
}

// Do runs fn on the frame goroutine before the next frame advances and
// waits for it to finish.
func (s *Scene) Do(ctx context.Context, fn func(*Scene)) error {
	c := command{fn: fn, done: make(chan struct{})}
	select {
	case s.commands <- c:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scene) drain() {
	for {
		select {
		case c := <-s.commands:
			c.fn(s)
			close(c.done)
		default:
			return
		}
	}
}

// Upload places a new photo at random tree and scatter positions and queues
// its texture.
func (s *Scene) Upload(url string) (models.Photo, error) {
	p := s.sampler.Photo(s.newID(), url)
	if err := s.Photos.Prepend(p); err != nil {
		return models.Photo{}, err
	}
	if s.Loader != nil {
		s.Loader.Request(p.ID, p.URL)
	}
	s.logger.Info("photo added", "id", p.ID, "photos", s.Photos.Len())
	return p, nil
}

// Delete removes a photo. Deleting the focused photo clears focus.
func (s *Scene) Delete(id string) error {
	if err := s.Photos.Remove(id); err != nil {
		return err
	}
	if s.State.FocusedID == id {
		s.State.ClearFocus()
	}
	s.forgetTexture(id)
	s.logger.Info("photo removed", "id", id, "photos", s.Photos.Len())
	return nil
}

func (s *Scene) forgetTexture(id string) {
	if s.Loader != nil {
		s.Loader.Forget(id)
	}
	kept := s.textures[:0]
	for _, t := range s.textures {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.textures = kept
}

func (s *Scene) Focus(id string) error {
	if !s.Photos.Contains(id) {
		return fmt.Errorf("%w: %s", photos.ErrNotFound, id)
	}
	s.State.FocusedID = id
	return nil
}

func (s *Scene) Dismiss() {
	s.State.ClearFocus()
}

// SetTarget changes the morph target. Any focused photo is dismissed, as
// with the matching gestures.
func (s *Scene) SetTarget(t models.MorphState) {
	if s.Morph.SetTarget(s.State, t) {
		s.logger.Info("morph target", "target", t)
	}
	s.State.ClearFocus()
}

func (s *Scene) Toggle() models.MorphState {
	s.SetTarget(s.State.Target.Other())
	return s.State.Target
}

// Import replaces the photos with a shared layout and assembles the tree,
// which dismisses any focus. On any error the session is left as it was.
func (s *Scene) Import(in string) error {
	ps, err := layout.Parse(in)
	if err != nil {
		s.logger.Warn("shared layout rejected", "err", err)
		return err
	}
	old := s.Photos.All()
	if err := s.Photos.Replace(ps); err != nil {
		s.logger.Warn("shared layout rejected", "err", err)
		return err
	}
	for _, p := range old {
		s.forgetTexture(p.ID)
	}
	if s.Loader != nil {
		for _, p := range ps {
			s.Loader.Request(p.ID, p.URL)
		}
	}
	s.SetTarget(models.TreeShape)
	s.logger.Info("shared layout imported", "photos", len(ps))
	return nil
}

// Share builds a share URL for the current photos.
func (s *Scene) Share(base string) (string, error) {
	u, err := layout.ShareURL(base, s.Photos.All(), s.Settings.MaxShareLength)
	if err != nil {
		s.logger.Warn("share refused", "err", err)
		return "", err
	}
	return u, nil
}

// Run advances s at a fixed rate until ctx is done.
func Run(ctx context.Context, s *Scene, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.Frame(float32(now.Sub(last).Seconds()))
			last = now
		}
	}
}
