// Package translate reacts to admin visibility by suppressing machine
// translation of the page while admin controls are shown.
package translate

import (
	"context"
	"sync/atomic"

	"github.com/korssa/gong34/internal/logging"
)

// AdminModeClass marks the page body while admin controls are visible.
const AdminModeClass = "admin-mode"

// Hints are the document attributes a page applies for the current state.
type Hints struct {
	Suppressed    bool              `json:"suppressed"`
	WidgetEnabled bool              `json:"widgetEnabled"`
	Attributes    map[string]string `json:"attributes"`
	BodyClasses   []string          `json:"bodyClasses"`
}

// Suppressor is the visibility subscriber. It keeps no state besides the
// last signal it received.
type Suppressor struct {
	suppressed atomic.Bool
	changes    atomic.Int64
	logger     logging.Logger
}

func NewSuppressor(logger logging.Logger) *Suppressor {
	return &Suppressor{logger: logger}
}

// OnVisibility is the callback registered with the visibility broadcaster.
func (s *Suppressor) OnVisibility(visible bool) {
	if s.suppressed.Swap(visible) != visible {
		s.changes.Add(1)
		s.logger.Debug(context.Background(), "translation suppression changed", "suppressed", visible)
	}
}

func (s *Suppressor) Suppressed() bool { return s.suppressed.Load() }

// Changes counts effective state changes.
func (s *Suppressor) Changes() int64 { return s.changes.Load() }

func (s *Suppressor) Hints() Hints {
	if !s.Suppressed() {
		return Hints{WidgetEnabled: true, Attributes: map[string]string{}, BodyClasses: []string{}}
	}
	return Hints{
		Suppressed: true,
		Attributes: map[string]string{
			"translate": "no",
			"class":     "notranslate",
		},
		BodyClasses: []string{AdminModeClass, "notranslate"},
	}
}
