package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Writer escribe el feed al destino primario y a un respaldo con marca de
// tiempo, ambos con contenido idéntico y escritura atómica (tmp + rename).
type Writer struct {
	dir  string
	file string
	log  zerolog.Logger
}

// NewWriter crea el escritor para dir/file.
func NewWriter(dir, file string, log zerolog.Logger) *Writer {
	return &Writer{dir: dir, file: file, log: log}
}

// PrimaryPath ruta del feed vigente (la que sirve GET /xml).
func (w *Writer) PrimaryPath() string {
	return filepath.Join(w.dir, w.file)
}

// Write persiste el feed. Devuelve la ruta primaria escrita. Si el respaldo
// falla después de un primario exitoso se propaga el error igualmente: el
// contrato es ambos destinos o ninguno publicable como éxito.
func (w *Writer) Write(xmlBytes []byte, now time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("feed: crear directorio de salida: %w", err)
	}

	primary := w.PrimaryPath()
	if err := writeAtomic(primary, xmlBytes); err != nil {
		return "", err
	}

	backup := filepath.Join(w.dir, w.backupName(now))
	if err := writeAtomic(backup, xmlBytes); err != nil {
		return "", err
	}

	w.log.Info().Str("primary", primary).Str("backup", backup).Int("bytes", len(xmlBytes)).
		Msg("feed escrito")
	return primary, nil
}

// backupName deriva el nombre del respaldo del archivo primario:
// kaspi.xml -> kaspi_20240131_154500.xml
func (w *Writer) backupName(now time.Time) string {
	ext := filepath.Ext(w.file)
	base := strings.TrimSuffix(w.file, ext)
	return base + "_" + now.Format("20060102_150405") + ext
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("feed: escribir %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("feed: renombrar %s: %w", tmp, err)
	}
	return nil
}
