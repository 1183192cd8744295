// seed carga bodegas, ubicaciones y productos desde un catálogo XML y crea un usuario CEO.
// Imprime un token de desarrollo para ese usuario.
//
// Uso: go run ./cmd/seed [ruta/catalogo.xml]
// La empresa se toma de SEED_COMPANY_ID; si falta se genera una nueva.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	"github.com/jhoicas/wms-ledger/internal/application/usecase"
	"github.com/jhoicas/wms-ledger/internal/domain/authz"
	"github.com/jhoicas/wms-ledger/internal/domain/entity"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/wms-ledger/pkg/config"
	"github.com/jhoicas/wms-ledger/pkg/jwt"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

func main() {
	path := "catalogo.xml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("abrir catálogo")
	}
	defer f.Close()
	cat, err := parseCatalogo(f)
	if err != nil {
		log.Fatal().Err(err).Msg("decodificar catálogo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema de PostgreSQL")
	}
	tx := postgres.NewTxRunner(pool, cfg.Engine.TxMaxRetries, log)
	gate := authz.NewGate(nil)

	companyID := os.Getenv("SEED_COMPANY_ID")
	if companyID == "" {
		companyID = uuid.New().String()
	}
	s := entity.Session{CompanyID: companyID, UserID: uuid.New().String(), Role: entity.RoleCEO}

	ceo, err := usecase.NewUserUseCase(tx, gate).Create(ctx, s, dto.CreateUserRequest{
		Username: "ceo", Name: "Usuario inicial", Role: entity.RoleCEO,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear usuario CEO")
	}
	s.UserID = ceo.ID

	warehouses := usecase.NewWarehouseUseCase(tx, gate)
	for _, b := range cat.Bodegas {
		w, err := warehouses.Create(ctx, s, b.request())
		if err != nil {
			log.Fatal().Err(err).Str("bodega", b.Nombre).Msg("crear bodega")
		}
		for _, u := range b.Ubicaciones {
			if _, err := warehouses.AddLocation(ctx, s, w.ID, u.request()); err != nil {
				log.Fatal().Err(err).Str("bodega", b.Nombre).Msg("crear ubicación")
			}
		}
		log.Info().Str("bodega", w.Name).Int("ubicaciones", len(b.Ubicaciones)).Msg("bodega creada")
	}

	products := usecase.NewProductUseCase(tx, gate)
	for _, p := range cat.Productos {
		in, err := p.request()
		if err != nil {
			log.Fatal().Err(err).Str("codigo", p.Codigo).Msg("precio inválido")
		}
		if _, err := products.Create(ctx, s, in); err != nil {
			log.Fatal().Err(err).Str("codigo", p.Codigo).Msg("crear producto")
		}
	}
	log.Info().Int("productos", len(cat.Productos)).Str("company_id", companyID).Msg("catálogo cargado")

	token, err := jwt.Generate(cfg.JWT.Secret, ceo.ID, companyID, entity.RoleCEO, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("generar token")
	}
	fmt.Println(token)
}
