package deliveryrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
)

// DeliveryRepository implementa a interface domain.DeliveryRepository.
// Os itens do pedido ficam em tabela própria (delivery_items), gravados na
// mesma transação do pedido.
type DeliveryRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewDeliveryRepository cria uma nova instância do repositório de pedidos.
func NewDeliveryRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *DeliveryRepository {
	return &DeliveryRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save persiste um novo pedido e seus itens no banco de dados.
func (r *DeliveryRepository) Save(ctx context.Context, delivery domain.Delivery) (domain.Delivery, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if delivery.ID == "" {
		delivery.ID = uuid.NewString()
	}
	delivery.CreatedAt = time.Now()
	delivery.UpdatedAt = delivery.CreatedAt

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Delivery{}, apperror.NewDBError("failed to begin tx", err)
	}
	defer tx.Rollback()

	const deliverySQL = `INSERT INTO deliveries (id, gas_station_id, deliveryman_id, customer_name, customer_phone, delivery_address, total_amount, status, priority, invoice_number, created_at, updated_at)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = tx.ExecContext(ctxTimeout, deliverySQL,
		delivery.ID,
		delivery.GasStationID,
		nullable(delivery.DeliverymanID),
		delivery.CustomerName,
		delivery.CustomerPhone,
		delivery.DeliveryAddress,
		delivery.TotalAmount,
		delivery.Status,
		delivery.Priority,
		delivery.InvoiceNumber,
		delivery.CreatedAt,
		delivery.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir pedido no DB.", err)
		return domain.Delivery{}, apperror.NewDBError("failed to insert delivery", err)
	}

	const itemSQL = `INSERT INTO delivery_items (id, delivery_id, product_type, quantity, unit_price)
                     VALUES ($1, $2, $3, $4, $5)`

	for _, item := range delivery.Items {
		_, err = tx.ExecContext(ctxTimeout, itemSQL,
			uuid.NewString(), delivery.ID, item.ProductType, item.Quantity, item.UnitPrice)
		if err != nil {
			r.logger.Error("Falha ao inserir item do pedido no DB.", err)
			return domain.Delivery{}, apperror.NewDBError("failed to insert delivery item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Delivery{}, apperror.NewDBError("failed to commit tx", err)
	}

	r.logger.Info("Pedido salvo com sucesso no repositório.", map[string]interface{}{"delivery_id": delivery.ID})
	return delivery, nil
}

// FindByID busca um pedido pelo ID, incluindo seus itens.
func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (domain.Delivery, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, gas_station_id, COALESCE(deliveryman_id, ''), customer_name, customer_phone, delivery_address, total_amount, status, priority, invoice_number, created_at, updated_at
                   FROM deliveries WHERE id = $1`

	var delivery domain.Delivery
	err := r.DB.QueryRowContext(ctxTimeout, query, id).Scan(
		&delivery.ID,
		&delivery.GasStationID,
		&delivery.DeliverymanID,
		&delivery.CustomerName,
		&delivery.CustomerPhone,
		&delivery.DeliveryAddress,
		&delivery.TotalAmount,
		&delivery.Status,
		&delivery.Priority,
		&delivery.InvoiceNumber,
		&delivery.CreatedAt,
		&delivery.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Delivery{}, apperror.NewNotFoundError(fmt.Sprintf("Pedido com ID %s não encontrado.", id))
		}
		r.logger.Error("Falha ao buscar pedido no DB.", err)
		return domain.Delivery{}, apperror.NewDBError("failed to find delivery", err)
	}

	items, err := r.findItems(ctxTimeout, id)
	if err != nil {
		return domain.Delivery{}, err
	}
	delivery.Items = items

	return delivery, nil
}

// FindByStation lista os pedidos de um posto, aplicando os filtros opcionais
// de status, prioridade e intervalo de datas.
func (r *DeliveryRepository) FindByStation(ctx context.Context, gasStationID string, filter domain.DeliveryFilter) ([]domain.Delivery, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, gas_station_id, COALESCE(deliveryman_id, ''), customer_name, customer_phone, delivery_address, total_amount, status, priority, invoice_number, created_at, updated_at
              FROM deliveries WHERE gas_station_id = $1`
	args := []interface{}{gasStationID}

	var conditions []string
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, "priority = $"+strconv.Itoa(len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, "created_at <= $"+strconv.Itoa(len(args)))
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar pedidos no DB.", err)
		return nil, apperror.NewDBError("failed to list deliveries", err)
	}
	defer rows.Close()

	deliveries := []domain.Delivery{}
	for rows.Next() {
		var d domain.Delivery
		err := rows.Scan(
			&d.ID, &d.GasStationID, &d.DeliverymanID, &d.CustomerName, &d.CustomerPhone,
			&d.DeliveryAddress, &d.TotalAmount, &d.Status, &d.Priority, &d.InvoiceNumber,
			&d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan delivery", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate deliveries", err)
	}

	return deliveries, nil
}

// UpdateStatus grava um novo status do pedido. A validação da transição é
// responsabilidade do serviço; aqui é apenas uma atualização de linha.
func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id string, status domain.DeliveryStatus, deliverymanID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE deliveries SET status = $1, deliveryman_id = COALESCE($2, deliveryman_id), updated_at = $3 WHERE id = $4`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL, status, nullable(deliverymanID), time.Now(), id)
	if err != nil {
		r.logger.Error("Falha ao atualizar status do pedido no DB.", err)
		return apperror.NewDBError("failed to update delivery status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Pedido com ID %s não encontrado.", id))
	}

	return nil
}

// SetInvoiceNumber grava o número da nota, apenas se ainda não houver um.
func (r *DeliveryRepository) SetInvoiceNumber(ctx context.Context, id string, invoiceNumber string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE deliveries SET invoice_number = $1, updated_at = $2 WHERE id = $3 AND invoice_number = ''`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL, invoiceNumber, time.Now(), id)
	if err != nil {
		r.logger.Error("Falha ao gravar número da nota no DB.", err)
		return apperror.NewDBError("failed to set invoice number", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		// Linha inexistente ou nota já emitida por outra operação.
		return apperror.NewConflictError("A nota deste pedido já foi emitida.")
	}

	return nil
}

func (r *DeliveryRepository) findItems(ctx context.Context, deliveryID string) ([]domain.DeliveryItem, error) {
	const query = `SELECT product_type, quantity, unit_price FROM delivery_items WHERE delivery_id = $1`

	rows, err := r.DB.QueryContext(ctx, query, deliveryID)
	if err != nil {
		return nil, apperror.NewDBError("failed to list delivery items", err)
	}
	defer rows.Close()

	items := []domain.DeliveryItem{}
	for rows.Next() {
		var item domain.DeliveryItem
		if err := rows.Scan(&item.ProductType, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, apperror.NewDBError("failed to scan delivery item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate delivery items", err)
	}

	return items, nil
}

// nullable converte string vazia em NULL para colunas opcionais.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
