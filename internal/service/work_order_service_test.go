package service

import (
	"context"
	"strings"
	"testing"

	"gescom-backend/internal/model"

	"github.com/stretchr/testify/require"
)

func TestConvertWorkOrderToInvoice(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Sobraga")

	order, err := env.orders.Create(context.Background(), CreateWorkOrderRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Livraison palettes", "1", "100000"),
	})
	require.NoError(t, err)
	require.Equal(t, model.OrdreStatusEnCours, order.Statut)
	require.True(t, strings.HasPrefix(order.Numero, "OT-"))

	// Order totals do not touch the client balance.
	require.Equal(t, "0.00", env.reloadClient(t, client).Solde.StringFixed(2))

	invoice, err := env.orders.ConvertToInvoice(context.Background(), order.ID)
	require.NoError(t, err)

	require.Equal(t, model.InvoiceStatusBrouillon, invoice.Statut)
	require.True(t, strings.HasPrefix(invoice.Numero, "FAC-"))
	require.Equal(t, order.MontantTTC, invoice.MontantTTC)
	require.NotNil(t, invoice.SourceOrdreID)
	require.Equal(t, order.ID, *invoice.SourceOrdreID)
	require.Len(t, invoice.LineItems, 1)

	require.Equal(t, model.OrdreStatusFacture, env.reloadOrder(t, order.ID).Statut)
	// The invoice now carries the debt.
	require.Equal(t, invoice.MontantTTC, env.reloadClient(t, client).Solde.StringFixed(2))

	_, err = env.orders.ConvertToInvoice(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrAlreadyConverted)
}

func TestConvertCancelledWorkOrderRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Ceca-Gadis")

	order, err := env.orders.Create(context.Background(), CreateWorkOrderRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Manutention", "1", "20000"),
	})
	require.NoError(t, err)

	_, err = env.cancellations.CancelWorkOrder(context.Background(), order.ID, CancelDocumentRequest{Motif: "chantier annule"})
	require.NoError(t, err)

	_, err = env.orders.ConvertToInvoice(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestWorkOrderPaymentMarksTermine(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Prix Import")

	order, err := env.orders.Create(context.Background(), CreateWorkOrderRequest{
		ClientID:              client.ID.String(),
		Categorie:             model.CategorieNonAssujetti,
		ChildCollectionsInput: singleItem("Transport", "1", "50000"),
	})
	require.NoError(t, err)

	_, err = env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeOrdre,
		DocumentID:   order.ID,
		Montant:      "50000",
		ModePaiement: model.ModeEspeces,
	})
	require.NoError(t, err)

	fresh := env.reloadOrder(t, order.ID)
	require.Equal(t, model.OrdreStatusTermine, fresh.Statut)
	require.Equal(t, "50000.00", fresh.MontantPaye.StringFixed(2))

	// Payments on orders never move the client solde.
	require.Equal(t, "0.00", env.reloadClient(t, client).Solde.StringFixed(2))
}

func TestPaymentOnInvoicedWorkOrderRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Bolloré Transport")

	order, err := env.orders.Create(context.Background(), CreateWorkOrderRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Acconage", "1", "10000"),
	})
	require.NoError(t, err)

	_, err = env.orders.ConvertToInvoice(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeOrdre,
		DocumentID:   order.ID,
		Montant:      "5000",
		ModePaiement: model.ModeEspeces,
	})
	require.ErrorIs(t, err, ErrAlreadyInvoiced)
}

func TestDuplicateWorkOrder(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "SGS Gabon")

	order, err := env.orders.Create(context.Background(), CreateWorkOrderRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Inspection", "3", "15000"),
	})
	require.NoError(t, err)

	duplicate, err := env.orders.Duplicate(context.Background(), order.ID)
	require.NoError(t, err)

	require.NotEqual(t, order.Numero, duplicate.Numero)
	require.Equal(t, model.OrdreStatusEnCours, duplicate.Statut)
	require.Equal(t, order.MontantTTC, duplicate.MontantTTC)
	require.Equal(t, "0.00", duplicate.MontantPaye)
}
