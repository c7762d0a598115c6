package stationrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
)

const pqUniqueViolation = "23505"

// GasStationRepository implementa a interface domain.GasStationRepository.
type GasStationRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewGasStationRepository cria uma nova instância do repositório de postos.
func NewGasStationRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *GasStationRepository {
	return &GasStationRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo posto no banco de dados.
func (r *GasStationRepository) Save(ctx context.Context, station domain.GasStation) (domain.GasStation, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if station.ID == "" {
		station.ID = uuid.NewString()
	}
	station.CreatedAt = time.Now()
	station.UpdatedAt = station.CreatedAt

	const insertSQL = `INSERT INTO gas_stations (id, name, cnpj, phone, address, plan, plan_until, created_at, updated_at)
                       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		station.ID,
		station.Name,
		station.CNPJ,
		station.Phone,
		station.Address,
		station.Plan,
		station.PlanUntil,
		station.CreatedAt,
		station.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			r.logger.Warn("Tentativa de cadastro com CNPJ duplicado.", map[string]interface{}{"cnpj": station.CNPJ})
			return domain.GasStation{}, apperror.NewConflictError("Já existe um posto cadastrado com esse CNPJ.")
		}
		r.logger.Error("Falha ao inserir posto no DB.", err)
		return domain.GasStation{}, apperror.NewDBError("failed to insert gas station", err)
	}

	r.logger.Info("Posto salvo com sucesso no repositório.", map[string]interface{}{"station_id": station.ID})
	return station, nil
}

// FindByID busca um posto pelo seu ID.
func (r *GasStationRepository) FindByID(ctx context.Context, id string) (domain.GasStation, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, name, cnpj, phone, address, plan, plan_until, created_at, updated_at
                   FROM gas_stations WHERE id = $1`

	return r.scanOne(r.DB.QueryRowContext(ctxTimeout, query, id), fmt.Sprintf("Posto com ID %s não encontrado.", id))
}

// FindByCNPJ busca um posto pelo CNPJ normalizado (14 dígitos).
// Usado na pré-checagem de unicidade do cadastro.
func (r *GasStationRepository) FindByCNPJ(ctx context.Context, cnpj string) (domain.GasStation, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, name, cnpj, phone, address, plan, plan_until, created_at, updated_at
                   FROM gas_stations WHERE cnpj = $1`

	return r.scanOne(r.DB.QueryRowContext(ctxTimeout, query, cnpj), "Posto não encontrado para o CNPJ informado.")
}

// Update grava os campos editáveis do perfil do posto.
func (r *GasStationRepository) Update(ctx context.Context, station domain.GasStation) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE gas_stations SET name = $1, phone = $2, address = $3, updated_at = $4 WHERE id = $5`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL, station.Name, station.Phone, station.Address, time.Now(), station.ID)
	if err != nil {
		r.logger.Error("Falha ao atualizar posto no DB.", err)
		return apperror.NewDBError("failed to update gas station", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Posto com ID %s não encontrado.", station.ID))
	}

	return nil
}

// Delete remove um posto. Usado apenas para desfazer um cadastro parcial
// (posto criado mas usuário dono não); postos com dados vinculados não
// passam pelas FKs.
func (r *GasStationRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM gas_stations WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover posto no DB.", err)
		return apperror.NewDBError("failed to delete gas station", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Posto com ID %s não encontrado.", id))
	}

	return nil
}

func (r *GasStationRepository) scanOne(row *sql.Row, notFoundMsg string) (domain.GasStation, error) {
	var station domain.GasStation
	err := row.Scan(
		&station.ID,
		&station.Name,
		&station.CNPJ,
		&station.Phone,
		&station.Address,
		&station.Plan,
		&station.PlanUntil,
		&station.CreatedAt,
		&station.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.GasStation{}, apperror.NewNotFoundError(notFoundMsg)
		}
		r.logger.Error("Falha ao buscar posto no DB.", err)
		return domain.GasStation{}, apperror.NewDBError("failed to find gas station", err)
	}

	return station, nil
}
