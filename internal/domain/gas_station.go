package domain

import (
	"context"
	"time"
)

// GasStation representa um posto (ponto de venda) que possui estoque,
// entregadores e recebe pedidos de entrega.
type GasStation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj"` // 14 dígitos, sem formatação
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address"`
	Plan      PlanCode  `json:"plan"`
	PlanUntil time.Time `json:"plan_until"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlanCode identifica o plano de assinatura do posto.
type PlanCode string

const (
	PlanFree    PlanCode = "free"
	PlanPremium PlanCode = "premium"
)

// PlanExpired reporta se o plano do posto está vencido no instante informado.
// O relógio é injetado para o resultado ser determinístico em teste.
func PlanExpired(station GasStation, now time.Time) bool {
	if station.Plan == PlanFree {
		return false
	}
	return now.After(station.PlanUntil)
}

// GasStationUpdate é o payload de atualização do perfil do posto.
// O CNPJ é imutável após o cadastro e por isso não aparece aqui.
type GasStationUpdate struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// GasStationRepository define o contrato de persistência para a entidade GasStation.
// Delete existe para desfazer um cadastro parcial: um posto sem usuário dono
// prenderia o CNPJ para sempre.
type GasStationRepository interface {
	Save(ctx context.Context, station GasStation) (GasStation, error)
	FindByID(ctx context.Context, id string) (GasStation, error)
	FindByCNPJ(ctx context.Context, cnpj string) (GasStation, error)
	Update(ctx context.Context, station GasStation) error
	Delete(ctx context.Context, id string) error
}
