// Package export maintains the flat-file mirror of accepted quotes.
package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"marketwatch/internal/models"
)

// Mirror appends accepted quotes to a CSV sink. It is not a source of
// truth: the file is rebuildable from the store's history, performs no
// deduplication of its own, and must only ever receive the rows the store
// actually accepted in the same run.
type Mirror struct {
	path   string
	logger zerolog.Logger
}

// NewMirror creates a mirror exporter writing to path.
func NewMirror(path string, logger zerolog.Logger) *Mirror {
	return &Mirror{
		path:   path,
		logger: logger.With().Str("component", "export").Logger(),
	}
}

// Path returns the sink path.
func (m *Mirror) Path() string {
	return m.path
}

// ExportAccepted appends one line per quote in fixed column order. The
// header line is written only when the sink is created.
func (m *Mirror) ExportAccepted(quotes []models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	// A pre-existing empty file still needs the header line.
	info, statErr := os.Stat(m.path)
	exists := statErr == nil && info.Size() > 0

	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening mirror file: %w", err)
	}
	defer f.Close()

	if exists {
		err = gocsv.MarshalWithoutHeaders(&quotes, f)
	} else {
		err = gocsv.Marshal(&quotes, f)
	}
	if err != nil {
		return fmt.Errorf("writing mirror rows: %w", err)
	}

	m.logger.Debug().Int("rows", len(quotes)).Str("path", m.path).Msg("Mirrored accepted quotes")
	return nil
}
