package app

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/cohortpulse/cohortpulse/internal/record"
)

// loadRows reads a CSV file into loose rows, drawing a byte progress bar on
// stderr for large files.
func loadRows(path string) ([]record.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var r io.Reader = f
	// Only bother with a bar for files big enough to take a moment.
	if info.Size() > 1<<20 {
		bar := progressbar.DefaultBytes(info.Size(), "reading")
		r = io.TeeReader(f, bar)
	}

	rows, err := record.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}
