package gestures

import (
	"sync/atomic"

	"github.com/arixlabs/treemorph/internal/models"
)

// Mailbox holds the most recent hand sample. Publishing overwrites; reading
// never blocks.
type Mailbox struct {
	latest atomic.Pointer[models.HandData]
}

func (m *Mailbox) Publish(h models.HandData) {
	m.latest.Store(&h)
}

// Latest returns the newest sample, or Absent before anything was published.
func (m *Mailbox) Latest() models.HandData {
	if h := m.latest.Load(); h != nil {
		return *h
	}
	return models.Absent
}
