package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/colonies/internal/logging"
)

func TestInitLoggerReturnsTaggedLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colonies.log")
	t.Setenv(logging.EnvLogLevel, "warn")
	t.Setenv(logging.EnvLogFile, path)

	logger := InitLogger("colonies-cli")
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("level=%v want warn", logger.GetLevel())
	}
	logger.Info().Msg("suppressed")
	logger.Warn().Str("server", "http://localhost:50080/api").Msg("profile resolved")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"app":"colonies-cli"`) || !strings.Contains(out, "profile resolved") {
		t.Fatalf("log file missing tagged entry: %q", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info entry written at warn level: %q", out)
	}
}
