package service

import (
	"context"
	"testing"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"

	"github.com/stretchr/testify/require"
)

// payableInvoice creates and validates a non-assujetti invoice so its TTC
// equals the given HT amount.
func payableInvoice(t *testing.T, env *testEnv, clientID, montant string) InvoiceResponse {
	t.Helper()
	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              clientID,
		Categorie:             model.CategorieNonAssujetti,
		ChildCollectionsInput: singleItem("Prestation", "1", montant),
	})
	require.NoError(t, err)
	validated, err := env.invoices.Validate(context.Background(), invoice.ID)
	require.NoError(t, err)
	return validated
}

func TestCreatePaymentThroughBank(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Olam Palm")
	bank, err := env.ledger.CreateBank(context.Background(), CreateBankRequest{Nom: "BGFI", NumeroCompte: "40001"})
	require.NoError(t, err)

	invoice := payableInvoice(t, env, client.ID.String(), "100000")

	banqueID := bank.ID.String()
	payment, err := env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "40000",
		ModePaiement: model.ModeVirement,
		BanqueID:     &banqueID,
		Reference:    "VIR-2025-118",
	})
	require.NoError(t, err)
	require.Equal(t, "40000.00", payment.Montant)
	require.Equal(t, "BGFI", payment.BanqueNom)

	fresh := env.reloadInvoice(t, invoice.ID)
	require.Equal(t, model.InvoiceStatusPartiellementPayee, fresh.Statut)
	require.Equal(t, "40000.00", fresh.MontantPaye.StringFixed(2))

	require.Equal(t, "40000.00", env.reloadBank(t, banqueID).Solde.StringFixed(2))

	movements, total, err := env.ledger.ListMovements(context.Background(), repository.CashMovementListFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, model.MouvementEntree, movements[0].Type)
	require.Equal(t, model.SourceBanque, movements[0].Source)
	require.Equal(t, "40000.00", movements[0].Montant.StringFixed(2))
}

func TestCreatePaymentSettlesInvoice(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Seeg")

	invoice := payableInvoice(t, env, client.ID.String(), "100000")

	_, err := env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "100000",
		ModePaiement: model.ModeEspeces,
	})
	require.NoError(t, err)

	fresh := env.reloadInvoice(t, invoice.ID)
	require.Equal(t, model.InvoiceStatusPayee, fresh.Statut)
	require.Equal(t, "0.00", env.reloadClient(t, client).Solde.StringFixed(2))
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Sucaf")
	invoice := payableInvoice(t, env, client.ID.String(), "10000")

	_, err := env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "0",
		ModePaiement: model.ModeEspeces,
	})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "-500",
		ModePaiement: model.ModeEspeces,
	})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCreatePaymentOnCancelledInvoiceRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Gsez")
	invoice := payableInvoice(t, env, client.ID.String(), "10000")

	_, err := env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{Motif: "doublon"})
	require.NoError(t, err)

	_, err = env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "10000",
		ModePaiement: model.ModeEspeces,
	})
	require.ErrorIs(t, err, ErrDocumentCancelled)
}

func TestGlobalPaymentAllocatesOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Cimgabon")

	first := payableInvoice(t, env, client.ID.String(), "30000")
	second := payableInvoice(t, env, client.ID.String(), "40000")

	created, err := env.payments.CreateGlobal(context.Background(), CreateGlobalPaymentRequest{
		ClientID:     client.ID.String(),
		Montant:      "50000",
		ModePaiement: model.ModeCheque,
		Reference:    "CHQ-00314",
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Equal(t, "30000.00", created[0].Montant)
	require.Equal(t, "20000.00", created[1].Montant)

	require.Equal(t, model.InvoiceStatusPayee, env.reloadInvoice(t, first.ID).Statut)

	partial := env.reloadInvoice(t, second.ID)
	require.Equal(t, model.InvoiceStatusPartiellementPayee, partial.Statut)
	require.Equal(t, "20000.00", partial.MontantPaye.StringFixed(2))

	// 70000 owed, 50000 settled.
	require.Equal(t, "20000.00", env.reloadClient(t, client).Solde.StringFixed(2))
}

func TestGlobalPaymentSkipsDraftsAndSettledInvoices(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Somifer")

	draft, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		Categorie:             model.CategorieNonAssujetti,
		ChildCollectionsInput: singleItem("Brouillon", "1", "15000"),
	})
	require.NoError(t, err)

	settled := payableInvoice(t, env, client.ID.String(), "10000")
	_, err = env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   settled.ID,
		Montant:      "10000",
		ModePaiement: model.ModeEspeces,
	})
	require.NoError(t, err)

	open := payableInvoice(t, env, client.ID.String(), "20000")

	created, err := env.payments.CreateGlobal(context.Background(), CreateGlobalPaymentRequest{
		ClientID:     client.ID.String(),
		Montant:      "100000",
		ModePaiement: model.ModeMobileMoney,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, open.ID, created[0].DocumentID)
	require.Equal(t, "20000.00", created[0].Montant)

	require.Equal(t, model.InvoiceStatusBrouillon, env.reloadInvoice(t, draft.ID).Statut)
}

func TestGlobalPaymentHonorsDocumentSelection(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Comilog")

	older := payableInvoice(t, env, client.ID.String(), "50000")
	newer := payableInvoice(t, env, client.ID.String(), "30000")

	created, err := env.payments.CreateGlobal(context.Background(), CreateGlobalPaymentRequest{
		Documents: []GlobalPaymentTarget{
			{DocumentType: model.DocTypeFacture, DocumentID: newer.ID},
		},
		Montant:      "30000",
		ModePaiement: model.ModeVirement,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, newer.ID, created[0].DocumentID)

	require.Equal(t, model.InvoiceStatusPayee, env.reloadInvoice(t, newer.ID).Statut)

	untouched := env.reloadInvoice(t, older.ID)
	require.Equal(t, model.InvoiceStatusValidee, untouched.Statut)
	require.Equal(t, "0.00", untouched.MontantPaye.StringFixed(2))
}

func TestGlobalPaymentFollowsGivenOrder(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Setrag")

	first := payableInvoice(t, env, client.ID.String(), "30000")
	second := payableInvoice(t, env, client.ID.String(), "20000")

	created, err := env.payments.CreateGlobal(context.Background(), CreateGlobalPaymentRequest{
		Documents: []GlobalPaymentTarget{
			{DocumentType: model.DocTypeFacture, DocumentID: second.ID},
			{DocumentType: model.DocTypeFacture, DocumentID: first.ID},
		},
		Montant:      "30000",
		ModePaiement: model.ModeCheque,
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Equal(t, second.ID, created[0].DocumentID)
	require.Equal(t, "20000.00", created[0].Montant)
	require.Equal(t, first.ID, created[1].DocumentID)
	require.Equal(t, "10000.00", created[1].Montant)

	require.Equal(t, model.InvoiceStatusPayee, env.reloadInvoice(t, second.ID).Statut)
	require.Equal(t, model.InvoiceStatusPartiellementPayee, env.reloadInvoice(t, first.ID).Statut)
}

func TestGlobalPaymentClampsRequestedAmounts(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Assala")

	first := payableInvoice(t, env, client.ID.String(), "30000")
	second := payableInvoice(t, env, client.ID.String(), "20000")

	over := "50000"
	partial := "5000"
	created, err := env.payments.CreateGlobal(context.Background(), CreateGlobalPaymentRequest{
		Documents: []GlobalPaymentTarget{
			{DocumentType: model.DocTypeFacture, DocumentID: first.ID, Montant: &over},
			{DocumentType: model.DocTypeFacture, DocumentID: second.ID, Montant: &partial},
		},
		Montant:      "100000",
		ModePaiement: model.ModeEspeces,
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	// A request above the outstanding balance is clamped to it.
	require.Equal(t, "30000.00", created[0].Montant)
	require.Equal(t, "5000.00", created[1].Montant)

	require.Equal(t, model.InvoiceStatusPayee, env.reloadInvoice(t, first.ID).Statut)

	fresh := env.reloadInvoice(t, second.ID)
	require.Equal(t, model.InvoiceStatusPartiellementPayee, fresh.Statut)
	require.Equal(t, "5000.00", fresh.MontantPaye.StringFixed(2))
}

func TestGlobalPaymentSettlesWorkOrders(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Perenco")

	order, err := env.orders.Create(context.Background(), CreateWorkOrderRequest{
		ClientID:              client.ID.String(),
		Categorie:             model.CategorieNonAssujetti,
		ChildCollectionsInput: singleItem("Transport conteneur", "1", "25000"),
	})
	require.NoError(t, err)
	invoice := payableInvoice(t, env, client.ID.String(), "10000")

	created, err := env.payments.CreateGlobal(context.Background(), CreateGlobalPaymentRequest{
		Documents: []GlobalPaymentTarget{
			{DocumentType: model.DocTypeOrdre, DocumentID: order.ID},
			{DocumentType: model.DocTypeFacture, DocumentID: invoice.ID},
		},
		Montant:      "30000",
		ModePaiement: model.ModeMobileMoney,
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Equal(t, model.DocTypeOrdre, created[0].DocumentType)
	require.Equal(t, "25000.00", created[0].Montant)
	require.Equal(t, "5000.00", created[1].Montant)

	freshOrder := env.reloadOrder(t, order.ID)
	require.Equal(t, model.OrdreStatusTermine, freshOrder.Statut)
	require.Equal(t, "25000.00", freshOrder.MontantPaye.StringFixed(2))

	// Only the invoice remainder feeds the client balance.
	require.Equal(t, "5000.00", env.reloadClient(t, client).Solde.StringFixed(2))
}

func TestGlobalPaymentRequiresTargets(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.payments.CreateGlobal(context.Background(), CreateGlobalPaymentRequest{
		Montant:      "10000",
		ModePaiement: model.ModeEspeces,
	})
	require.Error(t, err)
}

func TestGlobalPaymentOnCancelledTargetRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Sobraga")

	invoice := payableInvoice(t, env, client.ID.String(), "10000")
	_, err := env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{Motif: "erreur de saisie"})
	require.NoError(t, err)

	_, err = env.payments.CreateGlobal(context.Background(), CreateGlobalPaymentRequest{
		Documents: []GlobalPaymentTarget{
			{DocumentType: model.DocTypeFacture, DocumentID: invoice.ID},
		},
		Montant:      "10000",
		ModePaiement: model.ModeEspeces,
	})
	require.ErrorIs(t, err, ErrDocumentCancelled)
}

func TestCancelPaymentRestoresEverything(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Pizolub")
	bank, err := env.ledger.CreateBank(context.Background(), CreateBankRequest{Nom: "UGB", NumeroCompte: "40002"})
	require.NoError(t, err)

	invoice := payableInvoice(t, env, client.ID.String(), "50000")

	banqueID := bank.ID.String()
	payment, err := env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "50000",
		ModePaiement: model.ModeVirement,
		BanqueID:     &banqueID,
	})
	require.NoError(t, err)
	require.Equal(t, model.InvoiceStatusPayee, env.reloadInvoice(t, invoice.ID).Statut)

	require.NoError(t, env.payments.Cancel(context.Background(), payment.ID))

	fresh := env.reloadInvoice(t, invoice.ID)
	require.Equal(t, model.InvoiceStatusValidee, fresh.Statut)
	require.Equal(t, "0.00", fresh.MontantPaye.StringFixed(2))

	require.Equal(t, "0.00", env.reloadBank(t, banqueID).Solde.StringFixed(2))
	require.Equal(t, "50000.00", env.reloadClient(t, client).Solde.StringFixed(2))

	// The payment row is gone; the ledger keeps both movements.
	_, err = env.payments.Get(context.Background(), payment.ID)
	require.Error(t, err)

	_, total, err := env.ledger.ListMovements(context.Background(), repository.CashMovementListFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}
