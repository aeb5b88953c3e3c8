package moysklad

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RetryPolicy política de reintentos para operaciones de red: hasta
// MaxRetries intentos adicionales tras el primero, separados por Delay fijo.
// Reintenta solo fallos de transporte/timeout y rechazos de autorización;
// un estado definitivo del servidor corta de inmediato.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// Do ejecuta fn bajo la política. Nunca entra en pánico más allá de esta
// frontera: tras agotar los intentos devuelve el último error para que el
// llamador lo colapse a resultado vacío.
func (p RetryPolicy) Do(ctx context.Context, log zerolog.Logger, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Info().Str("op", op).Dur("delay", p.Delay).Msg("reintento tras espera fija")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay):
			}
		}
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if !retryable(err) {
			return err
		}
		log.Warn().Str("op", op).Int("attempt", attempt+1).Int("max", p.MaxRetries+1).
			Err(err).Msg("operación de red fallida")
	}
	log.Error().Str("op", op).Int("attempts", p.MaxRetries+1).Msg("operación agotó los reintentos")
	return err
}

func retryable(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.Status == http.StatusUnauthorized
	}
	if errors.Is(err, ErrNoCredentials) || errors.Is(err, ErrStoreNotFound) || errors.Is(err, errAuthExhausted) {
		return false
	}
	return true
}
