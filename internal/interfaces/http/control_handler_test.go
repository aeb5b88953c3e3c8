package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/jhoicas/kaspi-sync/internal/application/sync"
	httpRouter "github.com/jhoicas/kaspi-sync/internal/interfaces/http"
	"github.com/jhoicas/kaspi-sync/pkg/jwt"
)

// fakeControl doble del orquestador para el handler.
type fakeControl struct {
	generateErr   error
	stopErr       error
	scheduled     []int
	lastGenerated time.Time
	lastDigest    string
}

func (f *fakeControl) GenerateNow() error { return f.generateErr }

func (f *fakeControl) SetSchedule(minutes int) error {
	if minutes <= 0 {
		return appsync.ErrInvalidInterval
	}
	f.scheduled = append(f.scheduled, minutes)
	return nil
}

func (f *fakeControl) Stop() error { return f.stopErr }

func (f *fakeControl) Status() (time.Time, string) { return f.lastGenerated, f.lastDigest }

func newApp(ctrl *fakeControl, feedPath, jwtSecret string) *fiber.App {
	app := fiber.New()
	httpRouter.Router(app, httpRouter.RouterDeps{
		Control:   ctrl,
		FeedPath:  feedPath,
		JWTSecret: jwtSecret,
		AppName:   "kaspi-sync",
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers ...map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	app := newApp(&fakeControl{}, "no-importa.xml", "")
	resp, body := doJSON(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestControlGenerate_Encola(t *testing.T) {
	app := newApp(&fakeControl{}, "", "")
	resp, body := doJSON(t, app, http.MethodGet, "/control/generate", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "queued", body["status"])
}

func TestControlGenerate_ColaLlena(t *testing.T) {
	app := newApp(&fakeControl{generateErr: appsync.ErrQueueFull}, "", "")
	resp, body := doJSON(t, app, http.MethodGet, "/control/generate", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "QUEUE_FULL", body["code"])
}

func TestControlSchedule_IntervaloValido(t *testing.T) {
	ctrl := &fakeControl{}
	app := newApp(ctrl, "", "")
	resp, _ := doJSON(t, app, http.MethodGet, "/control/schedule?minutes=30", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []int{30}, ctrl.scheduled)
}

func TestControlSchedule_ParametroInvalido(t *testing.T) {
	ctrl := &fakeControl{}
	app := newApp(ctrl, "", "")
	for _, query := range []string{"minutes=0", "minutes=-5", "minutes=treinta", ""} {
		resp, out := doJSON(t, app, http.MethodGet, "/control/schedule?"+query, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query: %s", query)
		assert.Equal(t, "VALIDATION", out["code"])
	}
	assert.Empty(t, ctrl.scheduled, "ningún intervalo inválido debe llegar al orquestador")
}

func TestControlStatus_SinFeedPublicado(t *testing.T) {
	app := newApp(&fakeControl{}, "", "")
	resp, body := doJSON(t, app, http.MethodGet, "/control/status", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["server"])
	assert.Nil(t, body["last_generated"], "sin feed publicado la marca es null")
}

func TestControlStatus_ConFeedPublicado(t *testing.T) {
	generated := time.Date(2024, 1, 31, 15, 45, 0, 0, time.UTC)
	app := newApp(&fakeControl{lastGenerated: generated, lastDigest: "abc123"}, "", "")
	resp, body := doJSON(t, app, http.MethodGet, "/control/status", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, generated.Format(time.RFC3339), body["last_generated"])
	assert.Equal(t, "abc123", body["last_digest"])
}

func TestControlStop_Encola(t *testing.T) {
	app := newApp(&fakeControl{}, "", "")
	resp, body := doJSON(t, app, http.MethodPost, "/control/stop", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "queued", body["status"])
}

func TestXML_SirveElFeedVigente(t *testing.T) {
	dir := t.TempDir()
	feedPath := filepath.Join(dir, "kaspi.xml")
	require.NoError(t, os.WriteFile(feedPath, []byte("<kaspi_catalog/>"), 0o644))

	app := newApp(&fakeControl{}, feedPath, "")
	req := httptest.NewRequest(http.MethodGet, "/xml", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<kaspi_catalog/>", string(raw))
}

func TestControl_ProtegidoConJWT(t *testing.T) {
	const secret = "super-secreto"
	app := newApp(&fakeControl{}, "", secret)

	// Sin token: rechazado.
	resp, out := doJSON(t, app, http.MethodGet, "/control/generate", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", out["code"])

	// Token con firma ajena: rechazado.
	bad, err := jwt.Generate("otro-secreto", "ops", "kaspi-sync", 5)
	require.NoError(t, err)
	resp, out = doJSON(t, app, http.MethodGet, "/control/generate", "",
		map[string]string{"Authorization": "Bearer " + bad})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", out["code"])

	// Token legítimo: pasa.
	good, err := jwt.Generate(secret, "ops", "kaspi-sync", 5)
	require.NoError(t, err)
	resp, _ = doJSON(t, app, http.MethodGet, "/control/generate", "",
		map[string]string{"Authorization": "Bearer " + good})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestControl_AbiertoSinSecreto(t *testing.T) {
	app := newApp(&fakeControl{}, "", "")
	resp, _ := doJSON(t, app, http.MethodGet, "/control/status", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "sin CONTROL_JWT_SECRET los endpoints quedan abiertos")
}
