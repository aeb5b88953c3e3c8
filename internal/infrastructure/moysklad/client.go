// Cliente HTTP de la API MoySklad: sesión con token reactivo, GET autenticado
// con refresco acotado ante 401 y política de reintentos uniforme.

package moysklad

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/kaspi-sync/pkg/config"
)

const (
	tokenPath      = "/security/token"
	requestTimeout = 60 * time.Second
	maxBodyBytes   = 32 << 20

	// maxAuthRetries refrescos de token permitidos dentro de una misma operación.
	maxAuthRetries = 3
)

// Session ranura única de token del proceso. La validez se aprende de forma
// reactiva: se descarta al recibir 401. Varias goroutines pueden observar un
// token viejo a la vez; un refresco duplicado es idempotente y barato.
type Session struct {
	mu    sync.RWMutex
	token string
}

// Token devuelve el token vigente ("" si no hay).
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set reemplaza el token vigente.
func (s *Session) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Invalidate descarta el token vigente.
func (s *Session) Invalidate() { s.Set("") }

// Empty indica si no hay token vigente.
func (s *Session) Empty() bool { return s.Token() == "" }

// Client adaptador de la API MoySklad. Posee la sesión de token; los
// llamadores reciben resultados completos o error, nunca páginas parciales.
type Client struct {
	cfg     config.MoySkladConfig
	http    *http.Client
	log     zerolog.Logger
	retry   RetryPolicy
	session *Session
}

// NewClient construye el cliente con el timeout de red generoso que exige el
// reporte de stock (puede tardar varios segundos por página).
func NewClient(cfg config.MoySkladConfig, log zerolog.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
		retry:   RetryPolicy{MaxRetries: cfg.RetryAttempts, Delay: cfg.RetryDelay},
		session: &Session{},
	}
}

// Session expone la sesión para diagnóstico y tests.
func (c *Client) Session() *Session { return c.session }

// EnsureValid garantiza un token vigente en la sesión. Con forceRefresh se
// descarta el actual y se pide uno nuevo al emisor (Basic auth). Sin
// credenciales configuradas falla de inmediato, sin reintentos.
func (c *Client) EnsureValid(ctx context.Context, forceRefresh bool) error {
	if !forceRefresh && !c.session.Empty() {
		return nil
	}
	if !c.cfg.HasCredentials() {
		return ErrNoCredentials
	}
	if forceRefresh {
		c.log.Info().Msg("forzando refresco de token")
	} else {
		c.log.Info().Msg("sin token vigente, solicitando uno nuevo")
	}

	return c.retry.Do(ctx, c.log, "token", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+tokenPath, nil)
		if err != nil {
			return fmt.Errorf("moysklad: crear request de token: %w", err)
		}
		req.SetBasicAuth(c.cfg.Login, c.cfg.Password)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("moysklad: solicitar token: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("moysklad: leer respuesta de token: %w", err)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return &apiError{Op: "token", Status: resp.StatusCode, Body: truncateBody(body)}
		}

		var tr tokenResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return fmt.Errorf("moysklad: decodificar respuesta de token: %w", err)
		}
		if tr.AccessToken == "" {
			return &apiError{Op: "token", Status: resp.StatusCode, Body: "respuesta sin access_token"}
		}
		c.session.Set(tr.AccessToken)
		c.log.Info().Msg("token de acceso obtenido")
		return nil
	})
}

// getJSON ejecuta un GET autenticado bajo la política de reintentos. Ante
// 401 invalida la sesión, refresca el token y repite, hasta maxAuthRetries
// por operación. Cualquier otro estado no exitoso es definitivo.
func (c *Client) getJSON(ctx context.Context, op, rawURL string, out any) error {
	authRetries := 0
	return c.retry.Do(ctx, c.log, op, func(ctx context.Context) error {
		for {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return fmt.Errorf("moysklad: crear request %s: %w", op, err)
			}
			req.Header.Set("Authorization", "Bearer "+c.session.Token())
			req.Header.Set("Accept", "application/json;charset=utf-8")

			resp, err := c.http.Do(req)
			if err != nil {
				return fmt.Errorf("moysklad: %s: %w", op, err)
			}
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			resp.Body.Close()
			if readErr != nil {
				return fmt.Errorf("moysklad: leer respuesta %s: %w", op, readErr)
			}

			if resp.StatusCode == http.StatusUnauthorized {
				authRetries++
				if authRetries > maxAuthRetries {
					return fmt.Errorf("%s: %w", op, errAuthExhausted)
				}
				c.log.Warn().Str("op", op).Int("auth_retry", authRetries).
					Msg("401 de la API, refrescando token")
				c.session.Invalidate()
				if err := c.EnsureValid(ctx, true); err != nil {
					return err
				}
				continue
			}
			if resp.StatusCode != http.StatusOK {
				return &apiError{Op: op, Status: resp.StatusCode, Body: truncateBody(body)}
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("moysklad: decodificar respuesta %s: %w", op, err)
			}
			return nil
		}
	})
}
