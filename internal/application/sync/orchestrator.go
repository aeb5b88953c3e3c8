package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
)

// Comandos aceptados por el bucle de sincronización.
type CommandKind int

const (
	CmdGenerateNow CommandKind = iota // regenerar el feed de inmediato
	CmdSetSchedule                    // cambiar el intervalo del ciclo
	CmdStop                           // detener el bucle
)

// Command orden encolada hacia el bucle. Minutes solo aplica a CmdSetSchedule.
type Command struct {
	Kind    CommandKind
	Minutes int
}

const commandQueueSize = 16

var (
	// ErrQueueFull la cola de comandos está llena; el llamador debe reintentar.
	ErrQueueFull = errors.New("cola de comandos llena")
	// ErrInvalidInterval el intervalo debe ser un entero positivo de minutos.
	ErrInvalidInterval = errors.New("intervalo inválido: se requiere un entero positivo de minutos")
)

// Orchestrator coordina el ciclo completo de sincronización: token,
// catálogo, stock, ensamblado y publicación del feed. Una sola goroutine
// (Loop) ejecuta las pasadas; los comandos externos llegan por la cola.
type Orchestrator struct {
	tokens    TokenSource
	catalog   CatalogSource
	stock     StockSource
	assembler *Assembler
	builder   FeedBuilder
	writer    FeedWriter
	journal   RunJournal // opcional, puede ser nil
	log       zerolog.Logger

	interval time.Duration
	commands chan Command

	mu            stdsync.RWMutex
	lastGenerated time.Time
	lastDigest    string
}

// OrchestratorDeps dependencias del orquestador.
type OrchestratorDeps struct {
	Tokens    TokenSource
	Catalog   CatalogSource
	Stock     StockSource
	Assembler *Assembler
	Builder   FeedBuilder
	Writer    FeedWriter
	Journal   RunJournal
	Log       zerolog.Logger
	Interval  time.Duration
}

// NewOrchestrator crea el orquestador.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		tokens:    deps.Tokens,
		catalog:   deps.Catalog,
		stock:     deps.Stock,
		assembler: deps.Assembler,
		builder:   deps.Builder,
		writer:    deps.Writer,
		journal:   deps.Journal,
		log:       deps.Log,
		interval:  deps.Interval,
		commands:  make(chan Command, commandQueueSize),
	}
}

// GenerateNow encola una regeneración inmediata del feed.
func (o *Orchestrator) GenerateNow() error {
	return o.enqueue(Command{Kind: CmdGenerateNow})
}

// SetSchedule encola un cambio de intervalo del ciclo automático.
func (o *Orchestrator) SetSchedule(minutes int) error {
	if minutes <= 0 {
		return ErrInvalidInterval
	}
	return o.enqueue(Command{Kind: CmdSetSchedule, Minutes: minutes})
}

// Stop encola la detención del bucle.
func (o *Orchestrator) Stop() error {
	return o.enqueue(Command{Kind: CmdStop})
}

func (o *Orchestrator) enqueue(cmd Command) error {
	select {
	case o.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Status devuelve la marca de tiempo y la huella del último feed publicado.
// Cero/vacío si aún no se publicó ninguno en este proceso.
func (o *Orchestrator) Status() (time.Time, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastGenerated, o.lastDigest
}

// Loop ejecuta el ciclo hasta que el contexto se cancele o llegue CmdStop.
// Corre una pasada inicial al arrancar y luego una por cada tick o comando.
func (o *Orchestrator) Loop(ctx context.Context) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.log.Info().Dur("interval", o.interval).Msg("ciclo de sincronización iniciado")
	o.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			o.log.Info().Msg("ciclo de sincronización cancelado")
			return
		case <-ticker.C:
			o.RunOnce(ctx)
		case cmd := <-o.commands:
			switch cmd.Kind {
			case CmdGenerateNow:
				o.log.Info().Msg("regeneración inmediata solicitada")
				o.RunOnce(ctx)
			case CmdSetSchedule:
				if cmd.Minutes <= 0 {
					o.log.Warn().Int("minutes", cmd.Minutes).Msg("intervalo inválido ignorado")
					continue
				}
				o.interval = time.Duration(cmd.Minutes) * time.Minute
				ticker.Reset(o.interval)
				o.log.Info().Dur("interval", o.interval).Msg("intervalo de sincronización actualizado")
			case CmdStop:
				o.log.Info().Msg("detención solicitada, ciclo finalizado")
				return
			}
		}
	}
}

// RunOnce ejecuta una pasada completa de sincronización. Devuelve true si se
// publicó un feed nuevo. Cualquier falla intermedia aborta la pasada entera y
// conserva el feed anterior en disco.
func (o *Orchestrator) RunOnce(ctx context.Context) bool {
	runID := uuid.NewString()
	startedAt := time.Now()
	log := o.log.With().Str("run_id", runID).Logger()
	log.Info().Msg("pasada de sincronización iniciada")

	fail := func(status, msg string, err error) bool {
		log.Error().Err(err).Str("status", status).Msg(msg)
		o.recordRun(ctx, entity.SyncRun{
			ID:        runID,
			StartedAt: startedAt, FinishedAt: time.Now(),
			Status:  status,
			Message: msg + ": " + err.Error(),
		})
		return false
	}

	// 1. Token vigente antes de tocar cualquier endpoint.
	if err := o.tokens.EnsureValid(ctx, false); err != nil {
		return fail(entity.RunStatusAuthFailed, "no se pudo obtener token", err)
	}

	// 2. Productos simples, filtrados por el marcador de exportación en servidor.
	products, err := o.catalog.FetchEntities(ctx, entity.KindProduct, true)
	if err != nil {
		return fail(entity.RunStatusEmptyCatalog, "no se pudo traer productos", err)
	}

	// 3. Complementos, con filtrado local del marcador.
	bundles, err := o.catalog.FetchEntities(ctx, entity.KindBundle, false)
	if err != nil {
		return fail(entity.RunStatusEmptyCatalog, "no se pudo traer complementos", err)
	}

	if len(products) == 0 && len(bundles) == 0 {
		log.Warn().Msg("catálogo sin artículos marcados, se conserva el feed anterior")
		o.recordRun(ctx, entity.SyncRun{
			ID:        runID,
			StartedAt: startedAt, FinishedAt: time.Now(),
			Status:  entity.RunStatusEmptyCatalog,
			Message: "catálogo sin artículos marcados para exportación",
		})
		return false
	}

	// 4. Reporte de stock del almacén configurado. Sin stock no hay pasada:
	// publicar con disponibilidad inventada sería peor que no publicar.
	stock, err := o.stock.FetchStock(ctx)
	if err != nil {
		return fail(entity.RunStatusNoStock, "no se pudo traer el reporte de stock", err)
	}

	// 5. Ensamblado: disponibilidad, precio y exclusión de stock cero.
	items := make([]entity.CatalogItem, 0, len(products)+len(bundles))
	items = append(items, products...)
	items = append(items, bundles...)

	now := time.Now()
	res, ok := o.assembler.Assemble(items, stock, now)
	if !ok {
		o.recordRun(ctx, entity.SyncRun{
			ID:        runID,
			StartedAt: startedAt, FinishedAt: time.Now(),
			Status:      entity.RunStatusEmptyFeed,
			SkippedZero: res.SkippedZero,
			Message:     "ninguna oferta con disponibilidad, se conserva el feed anterior",
		})
		return false
	}

	// 6. Serialización y huella del contenido.
	xmlBytes, err := o.builder.Build(res.Doc)
	if err != nil {
		return fail(entity.RunStatusEmptyFeed, "no se pudo serializar el feed", err)
	}
	digest, err := o.builder.Digest(xmlBytes)
	if err != nil {
		// La huella es diagnóstica: su falla no frena la publicación.
		log.Warn().Err(err).Msg("no se pudo calcular la huella del feed")
		digest = ""
	}

	// 7. Publicación atómica en disco (primario + respaldo fechado).
	path, err := o.writer.Write(xmlBytes, now)
	if err != nil {
		return fail(entity.RunStatusWriteFailed, "no se pudo escribir el feed", err)
	}

	o.mu.Lock()
	o.lastGenerated = now
	o.lastDigest = digest
	o.mu.Unlock()

	finishedAt := time.Now()
	log.Info().
		Str("path", path).
		Int("offers", len(res.Doc.Offers)).
		Int("skipped_zero", res.SkippedZero).
		Str("digest", digest).
		Dur("elapsed", finishedAt.Sub(startedAt)).
		Msg("feed publicado")

	o.recordRun(ctx, entity.SyncRun{
		ID:        runID,
		StartedAt: startedAt, FinishedAt: finishedAt,
		Status:      entity.RunStatusOK,
		Offers:      len(res.Doc.Offers),
		SkippedZero: res.SkippedZero,
		TotalValue:  res.TotalValue,
		Digest:      digest,
	})
	return true
}

func (o *Orchestrator) recordRun(ctx context.Context, run entity.SyncRun) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Record(ctx, run); err != nil {
		o.log.Warn().Err(err).Str("run_id", run.ID).Msg("no se pudo registrar la corrida en el diario")
	}
}
