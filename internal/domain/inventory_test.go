package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pedegas/internal/domain"
)

func TestComputeStockStatus(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		min      int
		max      int
		want     domain.StockStatus
	}{
		{name: "zero_e_sempre_sem_estoque", quantity: 0, min: 5, max: 10, want: domain.StockOut},
		{name: "zero_independe_dos_limites", quantity: 0, min: 0, max: 0, want: domain.StockOut},
		{name: "igual_ao_minimo_e_baixo", quantity: 5, min: 5, max: 10, want: domain.StockLow},
		{name: "abaixo_do_minimo", quantity: 3, min: 5, max: 10, want: domain.StockLow},
		{name: "acima_do_minimo", quantity: 6, min: 5, max: 10, want: domain.StockOK},
		{name: "igual_ao_maximo", quantity: 10, min: 5, max: 10, want: domain.StockOK},
		{name: "acima_do_maximo", quantity: 11, min: 5, max: 10, want: domain.StockOverstocked},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := domain.ComputeStockStatus(test.quantity, test.min, test.max)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestStockStatusInfo(t *testing.T) {
	// A tabela de exibição cobre todos os status derivação possíveis.
	for _, status := range []domain.StockStatus{
		domain.StockOut, domain.StockLow, domain.StockOK, domain.StockOverstocked,
	} {
		info := status.Info()
		assert.NotEmpty(t, info.Label, "status %s sem rótulo", status)
		assert.NotEmpty(t, info.Color, "status %s sem cor", status)
	}

	assert.Equal(t, "Sem estoque", domain.StockOut.Info().Label)
	assert.Equal(t, "Estoque baixo", domain.StockLow.Info().Label)
}

func TestInventoryItemValidate(t *testing.T) {
	valid := domain.InventoryItem{
		ProductName: "Botijão P13",
		ProductType: domain.ProductP13,
		Quantity:    10,
		MinQuantity: 5,
		MaxQuantity: 50,
		UnitPrice:   110.0,
	}
	assert.Empty(t, valid.Validate())

	invalid := domain.InventoryItem{
		ProductName: "  ",
		ProductType: "p99",
		Quantity:    -1,
		MinQuantity: 10,
		MaxQuantity: 5,
		UnitPrice:   -2,
	}
	violations := invalid.Validate()
	// Todas as regras aplicáveis reportam juntas, sem curto-circuito.
	assert.Len(t, violations, 5)
	assert.Contains(t, violations, "O nome do produto é obrigatório.")
	assert.Contains(t, violations, "A quantidade mínima não pode ser maior que a máxima.")
}

func TestValidProductType(t *testing.T) {
	assert.True(t, domain.ValidProductType(domain.ProductP13))
	assert.True(t, domain.ValidProductType(domain.ProductP45))
	assert.False(t, domain.ValidProductType(domain.ProductType("p99")))

	assert.Equal(t, "Botijão 13kg", domain.ProductP13.Label())
	assert.Equal(t, "p99", domain.ProductType("p99").Label())
}
