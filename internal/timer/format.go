package timer

import (
	"fmt"
	"time"
)

// FormatDuration renders d as HH:MM:SS. Negative values render as zero;
// hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
