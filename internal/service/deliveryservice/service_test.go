package deliveryservice_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pedegas/internal/domain"
	apperror "pedegas/internal/errors"
	"pedegas/internal/pkg/logger"
	"pedegas/internal/service/deliveryservice"
)

// MockDeliveryRepository é uma implementação mock da interface domain.DeliveryRepository.
type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Save(ctx context.Context, delivery domain.Delivery) (domain.Delivery, error) {
	args := m.Called(ctx, delivery)
	return args.Get(0).(domain.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindByID(ctx context.Context, id string) (domain.Delivery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindByStation(ctx context.Context, gasStationID string, filter domain.DeliveryFilter) ([]domain.Delivery, error) {
	args := m.Called(ctx, gasStationID, filter)
	return args.Get(0).([]domain.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) UpdateStatus(ctx context.Context, id string, status domain.DeliveryStatus, deliverymanID string) error {
	args := m.Called(ctx, id, status, deliverymanID)
	return args.Error(0)
}

func (m *MockDeliveryRepository) SetInvoiceNumber(ctx context.Context, id string, invoiceNumber string) error {
	args := m.Called(ctx, id, invoiceNumber)
	return args.Error(0)
}

func newSvc(repo *MockDeliveryRepository) *deliveryservice.Service {
	return deliveryservice.NewService(repo, logger.NewLogger("error"))
}

func pendingDelivery() domain.Delivery {
	return domain.Delivery{
		ID:              "d-1",
		GasStationID:    "gs-1",
		CustomerName:    "Maria Silva",
		CustomerPhone:   "11987654321",
		DeliveryAddress: "Rua das Flores, 100",
		Items:           []domain.DeliveryItem{{ProductType: domain.ProductP13, Quantity: 2, UnitPrice: 110}},
		TotalAmount:     220,
		Status:          domain.DeliveryPending,
		Priority:        domain.PriorityHigh,
	}
}

func TestCreate_InvalidDeliveryCollectsViolations(t *testing.T) {
	repo := new(MockDeliveryRepository)
	svc := newSvc(repo)

	_, err := svc.Create(context.Background(), "gs-1", domain.Delivery{})

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Messages(), "O nome do cliente é obrigatório.")
	assert.Contains(t, vErr.Messages(), "O pedido deve ter ao menos um item.")
	assert.Contains(t, vErr.Messages(), "O valor total do pedido deve ser maior que zero.")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreate_DefaultsToPendingAndMediumPriority(t *testing.T) {
	repo := new(MockDeliveryRepository)
	svc := newSvc(repo)

	d := pendingDelivery()
	d.ID = ""
	d.Status = "" // o serviço força pendente
	d.Priority = ""

	repo.On("Save", mock.Anything, mock.MatchedBy(func(saved domain.Delivery) bool {
		return saved.Status == domain.DeliveryPending && saved.Priority == domain.PriorityMedium
	})).Return(pendingDelivery(), nil)

	created, err := svc.Create(context.Background(), "gs-1", d)

	assert.NoError(t, err)
	assert.Equal(t, domain.DeliveryPending, created.Status)
	repo.AssertExpectations(t)
}

func TestAccept_PendingDelivery(t *testing.T) {
	repo := new(MockDeliveryRepository)
	svc := newSvc(repo)

	repo.On("FindByID", mock.Anything, "d-1").Return(pendingDelivery(), nil)
	repo.On("UpdateStatus", mock.Anything, "d-1", domain.DeliveryAccepted, "dm-1").Return(nil)

	err := svc.Accept(context.Background(), "gs-1", "d-1", "dm-1")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

// Apenas pedidos pendentes podem ser aceitos ou recusados; qualquer outro
// status responde com Conflito e nenhuma escrita acontece.
func TestAcceptReject_NonPendingIsConflict(t *testing.T) {
	for _, status := range []domain.DeliveryStatus{
		domain.DeliveryAccepted, domain.DeliveryInProgress, domain.DeliveryDelivered, domain.DeliveryRejected,
	} {
		t.Run(string(status), func(t *testing.T) {
			repo := new(MockDeliveryRepository)
			svc := newSvc(repo)

			d := pendingDelivery()
			d.Status = status
			repo.On("FindByID", mock.Anything, "d-1").Return(d, nil)

			var cErr *apperror.ConflictError

			err := svc.Accept(context.Background(), "gs-1", "d-1", "dm-1")
			assert.ErrorAs(t, err, &cErr)

			err = svc.Reject(context.Background(), "gs-1", "d-1")
			assert.ErrorAs(t, err, &cErr)

			repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestStartAndComplete_FollowLifecycle(t *testing.T) {
	repo := new(MockDeliveryRepository)
	svc := newSvc(repo)

	accepted := pendingDelivery()
	accepted.Status = domain.DeliveryAccepted
	repo.On("FindByID", mock.Anything, "d-1").Return(accepted, nil).Once()
	repo.On("UpdateStatus", mock.Anything, "d-1", domain.DeliveryInProgress, "").Return(nil).Once()

	assert.NoError(t, svc.Start(context.Background(), "gs-1", "d-1"))

	inRoute := pendingDelivery()
	inRoute.Status = domain.DeliveryInProgress
	repo.On("FindByID", mock.Anything, "d-1").Return(inRoute, nil).Once()
	repo.On("UpdateStatus", mock.Anything, "d-1", domain.DeliveryDelivered, "").Return(nil).Once()

	assert.NoError(t, svc.Complete(context.Background(), "gs-1", "d-1"))
	repo.AssertExpectations(t)
}

func TestGenerateInvoice_AcceptedWithoutInvoice(t *testing.T) {
	repo := new(MockDeliveryRepository)
	svc := newSvc(repo)

	d := pendingDelivery()
	d.Status = domain.DeliveryAccepted
	repo.On("FindByID", mock.Anything, "d-1").Return(d, nil)
	repo.On("SetInvoiceNumber", mock.Anything, "d-1", mock.MatchedBy(func(n string) bool {
		return strings.HasPrefix(n, "NF-")
	})).Return(nil)

	invoiceNumber, err := svc.GenerateInvoice(context.Background(), "gs-1", "d-1")

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(invoiceNumber, "NF-"))
	repo.AssertExpectations(t)
}

// A nota é emitida no máximo uma vez: pedido aceito que já tem número
// responde com Conflito, mesmo continuando aceito.
func TestGenerateInvoice_AlreadyIssued(t *testing.T) {
	repo := new(MockDeliveryRepository)
	svc := newSvc(repo)

	d := pendingDelivery()
	d.Status = domain.DeliveryAccepted
	d.InvoiceNumber = "NF-0001"
	repo.On("FindByID", mock.Anything, "d-1").Return(d, nil)

	_, err := svc.GenerateInvoice(context.Background(), "gs-1", "d-1")

	var cErr *apperror.ConflictError
	assert.ErrorAs(t, err, &cErr)
	assert.Contains(t, err.Error(), "já foi emitida")
	repo.AssertNotCalled(t, "SetInvoiceNumber", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateInvoice_PendingIsConflict(t *testing.T) {
	repo := new(MockDeliveryRepository)
	svc := newSvc(repo)

	repo.On("FindByID", mock.Anything, "d-1").Return(pendingDelivery(), nil)

	_, err := svc.GenerateInvoice(context.Background(), "gs-1", "d-1")

	var cErr *apperror.ConflictError
	assert.ErrorAs(t, err, &cErr)
	repo.AssertNotCalled(t, "SetInvoiceNumber", mock.Anything, mock.Anything, mock.Anything)
}

// Pedido de outro posto é invisível: responde 404 e nada é escrito.
func TestAccept_OtherStationDeliveryIsNotFound(t *testing.T) {
	repo := new(MockDeliveryRepository)
	svc := newSvc(repo)

	d := pendingDelivery()
	d.GasStationID = "gs-OUTRO"
	repo.On("FindByID", mock.Anything, "d-1").Return(d, nil)

	err := svc.Accept(context.Background(), "gs-1", "d-1", "dm-1")

	var nfErr *apperror.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestList_PassesFilterThrough(t *testing.T) {
	repo := new(MockDeliveryRepository)
	svc := newSvc(repo)

	filter := domain.DeliveryFilter{Status: domain.DeliveryPending, Priority: domain.PriorityHigh}
	expected := []domain.Delivery{pendingDelivery()}
	repo.On("FindByStation", mock.Anything, "gs-1", filter).Return(expected, nil)

	deliveries, err := svc.List(context.Background(), "gs-1", filter)

	assert.NoError(t, err)
	assert.Equal(t, expected, deliveries)
	repo.AssertExpectations(t)
}
