package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Ayush3323/crm-backend/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.log")
	cfg := &config.Config{Env: "production", LogLevel: "debug", LogFile: path, LogMaxSizeMB: 1}

	_, closer := NewLogger(cfg)
	log.Info().Str("k", "v").Msg("hello")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"hello"`)
	assert.Contains(t, string(b), `"service":"crm-backend"`)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestNewLogger_BadLevelFallsBackToInfo(t *testing.T) {
	_, closer := NewLogger(&config.Config{LogLevel: "loud"})
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestMailer_BreakerOpensOnUnreachableServer(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "127.0.0.1", SMTPPort: 1, SMTPFrom: "crm@plant.io"})
	assert.Equal(t, "closed", m.State())

	for i := 0; i < DefaultCBConfig().FailureThreshold; i++ {
		err := m.Send("a@plant.io", "s", "b")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, "open", m.State())
	assert.ErrorIs(t, m.Send("a@plant.io", "s", "b"), ErrCircuitOpen)
}

func TestNewMailer_FromFallsBackToUser(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "smtp.plant.io", SMTPPort: 587, SMTPUser: "bot@plant.io"})
	assert.Equal(t, "bot@plant.io", m.from)
	assert.Equal(t, "smtp.plant.io:587", m.addr)
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := NewDatabase("sqlite", "file::memory:")
	assert.Error(t, err)
}
