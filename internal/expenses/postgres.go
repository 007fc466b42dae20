package expenses

import (
	"context"
	"fmt"

	"fjacquet/doc-recognizer/internal/store"
)

const insertExpenseSQL = `INSERT INTO gastos_gastos
	(id_sucursal_id, id_cat_gastos_id, id_cuenta_banco_id, monto, descripcion, fecha, fecha_registro)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// PostgresRepository writes expenses to the gastos_gastos table.
type PostgresRepository struct {
	db store.DB
}

// NewPostgresRepository creates a PostgresRepository.
func NewPostgresRepository(db store.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert implements Repository.
func (r *PostgresRepository) Insert(ctx context.Context, e Expense) error {
	// monto is a double precision column.
	amount, _ := e.Amount.Float64()
	_, err := r.db.Exec(ctx, insertExpenseSQL,
		e.BranchID, e.CategoryID, e.AccountID, amount, e.Description, e.Date.Time, e.RegisteredAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}
