package feed_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kaspi-sync/internal/infrastructure/feed"
)

func TestWriter_PrimarioYRespaldoIdenticos(t *testing.T) {
	dir := t.TempDir()
	w := feed.NewWriter(dir, "kaspi.xml", zerolog.Nop())
	now := time.Date(2024, 1, 31, 15, 45, 0, 0, time.UTC)

	path, err := w.Write([]byte("<kaspi_catalog/>"), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kaspi.xml"), path)

	primary, err := os.ReadFile(path)
	require.NoError(t, err)
	backup, err := os.ReadFile(filepath.Join(dir, "kaspi_20240131_154500.xml"))
	require.NoError(t, err)
	assert.Equal(t, primary, backup, "primario y respaldo llevan el mismo contenido")
}

func TestWriter_CreaElDirectorioDeSalida(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs", "anidado")
	w := feed.NewWriter(dir, "kaspi.xml", zerolog.Nop())

	_, err := w.Write([]byte("<kaspi_catalog/>"), time.Now())
	require.NoError(t, err)
	assert.FileExists(t, w.PrimaryPath())
}

func TestWriter_SobrescribeElPrimarioSinResiduos(t *testing.T) {
	dir := t.TempDir()
	w := feed.NewWriter(dir, "kaspi.xml", zerolog.Nop())

	_, err := w.Write([]byte("viejo"), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = w.Write([]byte("nuevo"), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	got, err := os.ReadFile(w.PrimaryPath())
	require.NoError(t, err)
	assert.Equal(t, "nuevo", string(got))
	assert.NoFileExists(t, w.PrimaryPath()+".tmp", "el temporal no debe sobrevivir al rename")
}
