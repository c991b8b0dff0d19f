package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/korssa/gong34/internal/common"
)

// ObjectName returns "<prefix>_<unix-millis>_<random>.<ext>".
func ObjectName(prefix, ext string, now time.Time) string {
	random, err := common.MakeRandHexString(6)
	if err != nil {
		random = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	return fmt.Sprintf("%s_%d_%s.%s", cleanPrefix(prefix), now.UnixMilli(), random, ext)
}

func cleanPrefix(prefix string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(prefix) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
