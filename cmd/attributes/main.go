// attributes lista los atributos de producto del back-office para descubrir
// el ID del marcador de exportación y del atributo de precio.
//
// Uso: go run ./cmd/attributes
// Lee MS_LOGIN/MS_PASSWORD (y MS_BASE_URL) del entorno, igual que el servicio.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/kaspi-sync/internal/infrastructure/moysklad"
	"github.com/jhoicas/kaspi-sync/pkg/config"
	"github.com/jhoicas/kaspi-sync/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if !cfg.MoySklad.HasCredentials() {
		fmt.Fprintln(os.Stderr, "Defina MS_LOGIN y MS_PASSWORD en el entorno")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn"})
	client := moysklad.NewClient(cfg.MoySklad, log.Zerolog())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	metas, err := client.FetchAttributeMetadata(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Listar atributos: %v\n", err)
		os.Exit(1)
	}
	if len(metas) == 0 {
		fmt.Println("Sin atributos de producto definidos")
		return
	}

	fmt.Printf("%-36s  %-12s  %s\n", "ID", "TIPO", "NOMBRE")
	for _, m := range metas {
		fmt.Printf("%-36s  %-12s  %s\n", m.ID, m.Type, m.Name)
	}
}
