package service

import (
	"context"
	"strings"
	"testing"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestCancelPaidInvoiceGeneratesCreditNote(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Ogar Assurances")

	invoice := payableInvoice(t, env, client.ID.String(), "100000")
	payment, err := env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "60000",
		ModePaiement: model.ModeEspeces,
	})
	require.NoError(t, err)

	cancellation, err := env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{
		Motif:        "prestation contestee",
		GenererAvoir: true,
	})
	require.NoError(t, err)

	require.True(t, cancellation.AvoirGenere)
	require.NotNil(t, cancellation.NumeroAvoir)
	require.True(t, strings.HasPrefix(*cancellation.NumeroAvoir, "AV-"))
	require.Equal(t, "60000.00", cancellation.SoldeAvoir)
	require.Equal(t, "100000.00", cancellation.Montant)
	require.False(t, cancellation.Rembourse)

	require.Equal(t, model.InvoiceStatusAnnulee, env.reloadInvoice(t, invoice.ID).Statut)

	// The payment is reversed out of existence, with a compensating sortie.
	_, err = env.payments.Get(context.Background(), payment.ID)
	require.Error(t, err)

	movements, total, err := env.ledger.ListMovements(context.Background(), repository.CashMovementListFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	types := []string{movements[0].Type, movements[1].Type}
	require.Contains(t, types, model.MouvementEntree)
	require.Contains(t, types, model.MouvementSortie)
}

func TestCancelUnpaidInvoiceSkipsCreditNote(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Ecobank")

	invoice := payableInvoice(t, env, client.ID.String(), "30000")

	cancellation, err := env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{
		Motif:        "emission par erreur",
		GenererAvoir: true,
	})
	require.NoError(t, err)

	// Nothing was paid, so there is no money to park on an avoir.
	require.False(t, cancellation.AvoirGenere)
	require.Nil(t, cancellation.NumeroAvoir)
}

func TestCancelInvoiceTwiceRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Air Service")

	invoice := payableInvoice(t, env, client.ID.String(), "10000")

	_, err := env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{Motif: "doublon"})
	require.NoError(t, err)

	_, err = env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{Motif: "doublon"})
	require.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelInvoicedWorkOrderRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Sogatra")

	order, err := env.orders.Create(context.Background(), CreateWorkOrderRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Remorquage", "1", "25000"),
	})
	require.NoError(t, err)

	_, err = env.orders.ConvertToInvoice(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = env.cancellations.CancelWorkOrder(context.Background(), order.ID, CancelDocumentRequest{Motif: "trop tard"})
	require.ErrorIs(t, err, ErrAlreadyInvoiced)
}

func TestRefundCreditNoteInInstalments(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Sigalli")
	bank, err := env.ledger.CreateBank(context.Background(), CreateBankRequest{Nom: "BICIG", NumeroCompte: "40003", SoldeInitial: "100000"})
	require.NoError(t, err)

	invoice := payableInvoice(t, env, client.ID.String(), "60000")
	_, err = env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "60000",
		ModePaiement: model.ModeEspeces,
	})
	require.NoError(t, err)

	cancellation, err := env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{
		Motif:        "annulation commande",
		GenererAvoir: true,
	})
	require.NoError(t, err)
	require.Equal(t, "60000.00", cancellation.SoldeAvoir)

	banqueID := bank.ID.String()
	partial, err := env.cancellations.Refund(context.Background(), cancellation.ID, RefundRequest{
		Montant:  "20000",
		BanqueID: &banqueID,
	})
	require.NoError(t, err)
	require.Equal(t, "40000.00", partial.SoldeAvoir)
	require.Equal(t, "20000.00", partial.MontantRembourse)
	require.False(t, partial.Rembourse)
	require.Equal(t, "80000.00", env.reloadBank(t, banqueID).Solde.StringFixed(2))

	// An empty amount refunds whatever credit remains.
	full, err := env.cancellations.Refund(context.Background(), cancellation.ID, RefundRequest{})
	require.NoError(t, err)
	require.Equal(t, "0.00", full.SoldeAvoir)
	require.Equal(t, "60000.00", full.MontantRembourse)
	require.True(t, full.Rembourse)

	_, err = env.cancellations.Refund(context.Background(), cancellation.ID, RefundRequest{Montant: "1"})
	require.ErrorIs(t, err, ErrRefundExceedsCredit)
}

func TestRefundWithoutCreditNoteRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Fidmeca")

	invoice := payableInvoice(t, env, client.ID.String(), "10000")
	cancellation, err := env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{Motif: "sans avoir"})
	require.NoError(t, err)

	_, err = env.cancellations.Refund(context.Background(), cancellation.ID, RefundRequest{Montant: "5000"})
	require.ErrorIs(t, err, ErrNoCreditNote)
}

func TestRefundExceedingCreditRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Tropical Bois")

	invoice := payableInvoice(t, env, client.ID.String(), "30000")
	_, err := env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "30000",
		ModePaiement: model.ModeEspeces,
	})
	require.NoError(t, err)

	cancellation, err := env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{
		Motif:        "retour marchandise",
		GenererAvoir: true,
	})
	require.NoError(t, err)

	_, err = env.cancellations.Refund(context.Background(), cancellation.ID, RefundRequest{Montant: "30001"})
	require.ErrorIs(t, err, ErrRefundExceedsCredit)
}

func TestListCancellationsByType(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Mbolo Distribution")

	invoice := payableInvoice(t, env, client.ID.String(), "10000")
	_, err := env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{Motif: "erreur"})
	require.NoError(t, err)

	quote, err := env.quotes.Create(context.Background(), CreateQuoteRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Devis", "1", "5000"),
	})
	require.NoError(t, err)
	_, err = env.cancellations.CancelQuote(context.Background(), quote.ID, "sans suite")
	require.NoError(t, err)

	factures, total, err := env.cancellations.List(context.Background(), repository.CancellationListFilter{Type: model.DocTypeFacture})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, model.DocTypeFacture, factures[0].Type)

	_, total, err = env.cancellations.List(context.Background(), repository.CancellationListFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}
