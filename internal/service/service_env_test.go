package service

import (
	"fmt"
	"testing"

	"gescom-backend/internal/database"
	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"
	"gescom-backend/internal/websocket"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires the full service graph over an in-memory SQLite database so
// tests exercise the real repositories and transactions.
type testEnv struct {
	db *gorm.DB

	txManager repository.TransactionManager

	numbering     NumberingService
	totals        TotalsService
	balance       BalanceService
	ledger        LedgerService
	config        ConfigService
	clients       ClientService
	users         UserService
	invoices      InvoiceService
	orders        WorkOrderService
	quotes        QuoteService
	payments      PaymentService
	cancellations CancellationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zerolog.Nop()
	hub := websocket.NewHub(logger)

	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	orderRepo := repository.NewWorkOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	lineItemRepo := repository.NewLineItemRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	movementRepo := repository.NewCashMovementRepository(db)
	bankRepo := repository.NewBankRepository(db)
	cancellationRepo := repository.NewCancellationRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	audit := NewAuditService(auditRepo, logger)
	notifier := NewNotificationService(hub, logger)
	numbering := NewNumberingService(counterRepo, configRepo, documentRepo)
	totals := NewTotalsService(lineItemRepo, configRepo, documentRepo)
	balance := NewBalanceService(clientRepo)
	ledger := NewLedgerService(movementRepo, bankRepo)
	config := NewConfigService(configRepo, audit)
	clients := NewClientService(clientRepo)
	users := NewUserService(userRepo, []byte("test_secret"))
	invoices := NewInvoiceService(invoiceRepo, clientRepo, lineItemRepo, numbering, totals, balance, txManager, audit, notifier)
	orders := NewWorkOrderService(orderRepo, invoiceRepo, clientRepo, lineItemRepo, numbering, totals, balance, txManager, audit, notifier)
	quotes := NewQuoteService(quoteRepo, orderRepo, clientRepo, lineItemRepo, numbering, totals, txManager, audit, notifier)
	payments := NewPaymentService(paymentRepo, invoiceRepo, orderRepo, invoices, orders, ledger, txManager, audit, notifier)
	cancellations := NewCancellationService(cancellationRepo, invoiceRepo, orderRepo, quoteRepo, paymentRepo, numbering, ledger, balance, txManager, audit, notifier)

	return &testEnv{
		db:            db,
		txManager:     txManager,
		numbering:     numbering,
		totals:        totals,
		balance:       balance,
		ledger:        ledger,
		config:        config,
		clients:       clients,
		users:         users,
		invoices:      invoices,
		orders:        orders,
		quotes:        quotes,
		payments:      payments,
		cancellations: cancellations,
	}
}

func (e *testEnv) seedClient(t *testing.T, nom string) *model.Client {
	t.Helper()
	client := &model.Client{Nom: nom, Categorie: model.CategorieStandard}
	require.NoError(t, e.db.Create(client).Error)
	return client
}

func (e *testEnv) reloadClient(t *testing.T, client *model.Client) *model.Client {
	t.Helper()
	var fresh model.Client
	require.NoError(t, e.db.First(&fresh, "id = ?", client.ID).Error)
	return &fresh
}

func (e *testEnv) reloadInvoice(t *testing.T, id string) *model.Invoice {
	t.Helper()
	var invoice model.Invoice
	require.NoError(t, e.db.First(&invoice, "id = ?", id).Error)
	return &invoice
}

func (e *testEnv) reloadOrder(t *testing.T, id string) *model.WorkOrder {
	t.Helper()
	var order model.WorkOrder
	require.NoError(t, e.db.First(&order, "id = ?", id).Error)
	return &order
}

func (e *testEnv) reloadBank(t *testing.T, id string) *model.Bank {
	t.Helper()
	var bank model.Bank
	require.NoError(t, e.db.First(&bank, "id = ?", id).Error)
	return &bank
}

// singleItem is a one-line child collection worth quantite * prix in HT.
func singleItem(designation, quantite, prix string) ChildCollectionsInput {
	items := []LineItemInput{{Designation: designation, Quantite: quantite, PrixUnitaire: prix}}
	return ChildCollectionsInput{LineItems: &items}
}
