package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatResult is the one-line summary printed after a generation, e.g.
// "Saved out.png (2.0 KiB) in 12.3s".
func FormatResult(path string, size int, elapsed time.Duration) string {
	return fmt.Sprintf("Saved %s (%s) in %s", path, humanize.IBytes(uint64(size)), elapsed.Round(100*time.Millisecond))
}
