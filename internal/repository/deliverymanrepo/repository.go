package deliverymanrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
)

const pqUniqueViolation = "23505"

// DeliverymanRepository implementa a interface domain.DeliverymanRepository.
// As permissões são um conjunto de strings no domínio; aqui na borda do
// banco elas viram uma única coluna de texto separada por vírgulas.
type DeliverymanRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewDeliverymanRepository cria uma nova instância do repositório de entregadores.
func NewDeliverymanRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *DeliverymanRepository {
	return &DeliverymanRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo entregador no banco de dados.
func (r *DeliverymanRepository) Save(ctx context.Context, deliveryman domain.Deliveryman) (domain.Deliveryman, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if deliveryman.ID == "" {
		deliveryman.ID = uuid.NewString()
	}
	deliveryman.CreatedAt = time.Now()
	deliveryman.UpdatedAt = deliveryman.CreatedAt

	const insertSQL = `INSERT INTO deliverymen (id, gas_station_id, name, phone, email, cpf, active, permissions, created_at, updated_at)
                       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		deliveryman.ID,
		deliveryman.GasStationID,
		deliveryman.Name,
		deliveryman.Phone,
		deliveryman.Email,
		deliveryman.CPF,
		deliveryman.Active,
		serializePermissions(deliveryman.Permissions),
		deliveryman.CreatedAt,
		deliveryman.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			r.logger.Warn("Tentativa de cadastro de entregador duplicado.", map[string]interface{}{"email": deliveryman.Email})
			return domain.Deliveryman{}, apperror.NewConflictError("Já existe um entregador com esse e-mail ou CPF.")
		}
		r.logger.Error("Falha ao inserir entregador no DB.", err)
		return domain.Deliveryman{}, apperror.NewDBError("failed to insert deliveryman", err)
	}

	r.logger.Info("Entregador salvo com sucesso no repositório.", map[string]interface{}{"deliveryman_id": deliveryman.ID})
	return deliveryman, nil
}

// FindByID busca um entregador pelo ID.
func (r *DeliverymanRepository) FindByID(ctx context.Context, id string) (domain.Deliveryman, error) {
	return r.findOne(ctx, "id = $1", id, fmt.Sprintf("Entregador com ID %s não encontrado.", id))
}

// FindByEmail busca um entregador pelo e-mail (pré-checagem de unicidade).
func (r *DeliverymanRepository) FindByEmail(ctx context.Context, email string) (domain.Deliveryman, error) {
	return r.findOne(ctx, "email = $1", email, "Entregador não encontrado para o e-mail informado.")
}

// FindByCPF busca um entregador pelo CPF normalizado (pré-checagem de unicidade).
func (r *DeliverymanRepository) FindByCPF(ctx context.Context, cpf string) (domain.Deliveryman, error) {
	return r.findOne(ctx, "cpf = $1", cpf, "Entregador não encontrado para o CPF informado.")
}

// FindByStation lista os entregadores de um posto.
func (r *DeliverymanRepository) FindByStation(ctx context.Context, gasStationID string) ([]domain.Deliveryman, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, gas_station_id, name, phone, email, cpf, active, permissions, created_at, updated_at
                   FROM deliverymen WHERE gas_station_id = $1 ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query, gasStationID)
	if err != nil {
		r.logger.Error("Falha ao listar entregadores no DB.", err)
		return nil, apperror.NewDBError("failed to list deliverymen", err)
	}
	defer rows.Close()

	deliverymen := []domain.Deliveryman{}
	for rows.Next() {
		d, err := scanDeliveryman(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan deliveryman", err)
		}
		deliverymen = append(deliverymen, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate deliverymen", err)
	}

	return deliverymen, nil
}

// Update grava os campos editáveis do entregador.
func (r *DeliverymanRepository) Update(ctx context.Context, deliveryman domain.Deliveryman) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE deliverymen
                       SET name = $1, phone = $2, email = $3, cpf = $4, permissions = $5, updated_at = $6
                       WHERE id = $7`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL,
		deliveryman.Name,
		deliveryman.Phone,
		deliveryman.Email,
		deliveryman.CPF,
		serializePermissions(deliveryman.Permissions),
		time.Now(),
		deliveryman.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return apperror.NewConflictError("Já existe um entregador com esse e-mail ou CPF.")
		}
		r.logger.Error("Falha ao atualizar entregador no DB.", err)
		return apperror.NewDBError("failed to update deliveryman", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Entregador com ID %s não encontrado.", deliveryman.ID))
	}

	return nil
}

// SetActive ativa ou desativa um entregador.
func (r *DeliverymanRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE deliverymen SET active = $1, updated_at = $2 WHERE id = $3`, active, time.Now(), id)
	if err != nil {
		r.logger.Error("Falha ao alterar situação do entregador no DB.", err)
		return apperror.NewDBError("failed to set deliveryman active flag", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Entregador com ID %s não encontrado.", id))
	}

	return nil
}

func (r *DeliverymanRepository) findOne(ctx context.Context, where, arg, notFoundMsg string) (domain.Deliveryman, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, gas_station_id, name, phone, email, cpf, active, permissions, created_at, updated_at
              FROM deliverymen WHERE ` + where

	d, err := scanDeliveryman(r.DB.QueryRowContext(ctxTimeout, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Deliveryman{}, apperror.NewNotFoundError(notFoundMsg)
		}
		r.logger.Error("Falha ao buscar entregador no DB.", err)
		return domain.Deliveryman{}, apperror.NewDBError("failed to find deliveryman", err)
	}

	return d, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDeliveryman(row scanner) (domain.Deliveryman, error) {
	var d domain.Deliveryman
	var permissions string
	err := row.Scan(
		&d.ID,
		&d.GasStationID,
		&d.Name,
		&d.Phone,
		&d.Email,
		&d.CPF,
		&d.Active,
		&permissions,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return domain.Deliveryman{}, err
	}
	d.Permissions = deserializePermissions(permissions)
	return d, nil
}

// serializePermissions achata o conjunto de permissões na coluna de texto.
func serializePermissions(permissions []string) string {
	return strings.Join(permissions, ",")
}

// deserializePermissions reconstrói o conjunto a partir da coluna de texto.
func deserializePermissions(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}
