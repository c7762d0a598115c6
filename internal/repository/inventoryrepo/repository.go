package inventoryrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/cache"
	"pedegas/internal/pkg/logger"
)

// Chave de cache por item de estoque (estratégia Cache-Aside).
const itemCacheKey = "inventory:%s"

const itemCacheTTL = 5 * time.Minute

// InventoryRepository implementa a interface domain.InventoryRepository.
type InventoryRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewInventoryRepository cria uma nova instância do repositório de estoque,
// injetando as conexões de infraestrutura (DB e Cache).
func NewInventoryRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *InventoryRepository {
	return &InventoryRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo item de estoque.
func (r *InventoryRepository) Save(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	const insertSQL = `INSERT INTO inventory_items (id, gas_station_id, product_name, product_type, quantity, min_quantity, max_quantity, unit_price, created_at, updated_at)
                       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctxTimeout,
		insertSQL,
		item.ID,
		item.GasStationID,
		item.ProductName,
		item.ProductType,
		item.Quantity,
		item.MinQuantity,
		item.MaxQuantity,
		item.UnitPrice,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Falha ao inserir item de estoque no DB.", err)
		return domain.InventoryItem{}, apperror.NewDBError("failed to insert inventory item", err)
	}

	r.logger.Info("Item de estoque salvo com sucesso.", map[string]interface{}{"item_id": item.ID})
	return item, nil
}

// FindByID busca um item pelo ID, utilizando a estratégia Cache-Aside.
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (domain.InventoryItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(itemCacheKey, id)
	var item domain.InventoryItem

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &item) == nil {
			return item, nil
		}
		// Desserialização falhou: segue para o DB.
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	const query = `SELECT id, gas_station_id, product_name, product_type, quantity, min_quantity, max_quantity, unit_price, created_at, updated_at
                   FROM inventory_items WHERE id = $1`

	row := r.DB.QueryRowContext(ctxTimeout, query, id)
	if err := scanItem(row, &item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InventoryItem{}, apperror.NewNotFoundError(fmt.Sprintf("Item de estoque com ID %s não encontrado.", id))
		}
		r.logger.Error("Falha ao buscar item de estoque no DB.", err)
		return domain.InventoryItem{}, apperror.NewDBError("failed to find inventory item", err)
	}

	// 3. Popular o cache para futuras leituras.
	if itemJSON, marshalErr := json.Marshal(item); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, itemJSON, itemCacheTTL)
	}

	return item, nil
}

// FindByStation lista todos os itens de estoque de um posto.
func (r *InventoryRepository) FindByStation(ctx context.Context, gasStationID string) ([]domain.InventoryItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, gas_station_id, product_name, product_type, quantity, min_quantity, max_quantity, unit_price, created_at, updated_at
                   FROM inventory_items WHERE gas_station_id = $1 ORDER BY product_name`

	rows, err := r.DB.QueryContext(ctxTimeout, query, gasStationID)
	if err != nil {
		r.logger.Error("Falha ao listar itens de estoque no DB.", err)
		return nil, apperror.NewDBError("failed to list inventory items", err)
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	for rows.Next() {
		var item domain.InventoryItem
		if err := scanItem(rows, &item); err != nil {
			return nil, apperror.NewDBError("failed to scan inventory item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate inventory items", err)
	}

	return items, nil
}

// Update grava os campos editáveis de um item e invalida o cache.
func (r *InventoryRepository) Update(ctx context.Context, item domain.InventoryItem) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE inventory_items
                       SET product_name = $1, product_type = $2, quantity = $3, min_quantity = $4, max_quantity = $5, unit_price = $6, updated_at = $7
                       WHERE id = $8`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL,
		item.ProductName, item.ProductType, item.Quantity, item.MinQuantity, item.MaxQuantity, item.UnitPrice, time.Now(), item.ID)
	if err != nil {
		r.logger.Error("Falha ao atualizar item de estoque no DB.", err)
		return apperror.NewDBError("failed to update inventory item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Item de estoque com ID %s não encontrado.", item.ID))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(itemCacheKey, item.ID))
	return nil
}

// AdjustQuantity aplica um delta à quantidade de um item, em transação e com
// a linha bloqueada, garantindo que o estoque nunca fique negativo.
func (r *InventoryRepository) AdjustQuantity(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.InventoryItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de ajuste de estoque.", err)
		return domain.InventoryItem{}, apperror.NewDBError("failed to begin tx", err)
	}
	defer tx.Rollback()

	const querySelect = `SELECT id, gas_station_id, product_name, product_type, quantity, min_quantity, max_quantity, unit_price, created_at, updated_at
                         FROM inventory_items WHERE id = $1 FOR UPDATE`

	var item domain.InventoryItem
	row := tx.QueryRowContext(ctxTimeout, querySelect, adjustment.ItemID)
	if err := scanItem(row, &item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InventoryItem{}, apperror.NewNotFoundError(fmt.Sprintf("Item de estoque com ID %s não encontrado.", adjustment.ItemID))
		}
		r.logger.Error("Falha ao buscar item para ajuste.", err)
		return domain.InventoryItem{}, apperror.NewDBError("failed to select item for adjustment", err)
	}

	newQuantity := item.Quantity + adjustment.Delta
	if newQuantity < 0 {
		r.logger.Warn("Ajuste resultaria em estoque negativo.", map[string]interface{}{
			"item_id":          adjustment.ItemID,
			"current_quantity": item.Quantity,
			"delta":            adjustment.Delta,
		})
		return domain.InventoryItem{}, apperror.NewValidationError("O ajuste resultaria em quantidade de estoque negativa.")
	}

	const queryUpdate = `UPDATE inventory_items SET quantity = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctxTimeout, queryUpdate, newQuantity, time.Now(), adjustment.ItemID); err != nil {
		r.logger.Error("Falha ao atualizar quantidade do item.", err)
		return domain.InventoryItem{}, apperror.NewDBError("failed to update item quantity", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar ajuste de estoque.", err)
		return domain.InventoryItem{}, apperror.NewDBError("failed to commit tx", err)
	}

	item.Quantity = newQuantity
	item.UpdatedAt = time.Now()

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(itemCacheKey, item.ID))

	r.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"item_id":      item.ID,
		"new_quantity": newQuantity,
	})
	return item, nil
}

// Delete remove um item de estoque e invalida o cache.
func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover item de estoque no DB.", err)
		return apperror.NewDBError("failed to delete inventory item", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Item de estoque com ID %s não encontrado.", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(itemCacheKey, id))
	return nil
}

// scanner cobre *sql.Row e *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner, item *domain.InventoryItem) error {
	return row.Scan(
		&item.ID,
		&item.GasStationID,
		&item.ProductName,
		&item.ProductType,
		&item.Quantity,
		&item.MinQuantity,
		&item.MaxQuantity,
		&item.UnitPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
}
