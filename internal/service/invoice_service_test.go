package service

import (
	"context"
	"strings"
	"testing"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoiceStartsAsDraft(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Comilog")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Manutention", "1", "100000"),
	})
	require.NoError(t, err)

	require.Equal(t, model.InvoiceStatusBrouillon, invoice.Statut)
	require.True(t, strings.HasPrefix(invoice.Numero, "FAC-"))
	require.Equal(t, "0.00", invoice.MontantPaye)

	// The client owes the full TTC as soon as the invoice exists.
	fresh := env.reloadClient(t, client)
	require.Equal(t, "119000.00", fresh.Solde.StringFixed(2))
}

func TestCreateInvoiceUnknownClient(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID: uuid.NewString(),
	})
	require.ErrorIs(t, err, ErrClientNotFound)
}

func TestValidateInvoiceRequiresDraft(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Setrag")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Transport rail", "1", "50000"),
	})
	require.NoError(t, err)

	validated, err := env.invoices.Validate(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Equal(t, model.InvoiceStatusValidee, validated.Statut)

	_, err = env.invoices.Validate(context.Background(), invoice.ID)
	require.ErrorIs(t, err, ErrNotDraft)
}

func TestSendInvoice(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Olam Gabon")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Entreposage", "1", "30000"),
	})
	require.NoError(t, err)

	sent, err := env.invoices.Send(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Equal(t, model.InvoiceStatusEnvoyee, sent.Statut)

	// Already past validee/brouillon, sending again is rejected.
	_, err = env.invoices.Send(context.Background(), invoice.ID)
	require.Error(t, err)
}

func TestUpdateCancelledInvoiceRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Socoba")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Acconage", "1", "10000"),
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&model.Invoice{}).Where("id = ?", invoice.ID).
		Update("statut", model.InvoiceStatusAnnulee).Error)

	notes := "tentative"
	_, err = env.invoices.Update(context.Background(), invoice.ID, UpdateInvoiceRequest{Notes: &notes})
	require.ErrorIs(t, err, ErrDocumentCancelled)
}

func TestUpdateReplacesChildCollections(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Gabon Meca")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		Categorie:             model.CategorieNonAssujetti,
		ChildCollectionsInput: singleItem("Ligne initiale", "1", "40000"),
	})
	require.NoError(t, err)
	require.Equal(t, "40000.00", invoice.MontantHT)

	updated, err := env.invoices.Update(context.Background(), invoice.ID, UpdateInvoiceRequest{
		ChildCollectionsInput: singleItem("Ligne remplacee", "2", "10000"),
	})
	require.NoError(t, err)

	require.Equal(t, "20000.00", updated.MontantHT)
	require.Len(t, updated.LineItems, 1)
	require.Equal(t, "Ligne remplacee", updated.LineItems[0].Designation)
}

func TestDuplicateInvoiceResetsPaymentState(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Foberd")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		Categorie:             model.CategorieNonAssujetti,
		ChildCollectionsInput: singleItem("Dedouanement", "1", "80000"),
	})
	require.NoError(t, err)
	_, err = env.invoices.Validate(context.Background(), invoice.ID)
	require.NoError(t, err)

	_, err = env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "30000",
		ModePaiement: model.ModeEspeces,
	})
	require.NoError(t, err)

	duplicate, err := env.invoices.Duplicate(context.Background(), invoice.ID)
	require.NoError(t, err)

	require.NotEqual(t, invoice.Numero, duplicate.Numero)
	require.Equal(t, model.InvoiceStatusBrouillon, duplicate.Statut)
	require.Equal(t, "0.00", duplicate.MontantPaye)
	require.Equal(t, invoice.MontantTTC, duplicate.MontantTTC)
	require.Len(t, duplicate.LineItems, 1)
}

func TestListInvoicesFilters(t *testing.T) {
	env := newTestEnv(t)
	alpha := env.seedClient(t, "Alpha Transit")
	beta := env.seedClient(t, "Beta Cargo")

	for _, client := range []*model.Client{alpha, beta} {
		_, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
			ClientID:              client.ID.String(),
			ChildCollectionsInput: singleItem("Prestation", "1", "10000"),
		})
		require.NoError(t, err)
	}

	all, total, err := env.invoices.List(context.Background(), repository.InvoiceListFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, all, 2)

	filtered, total, err := env.invoices.List(context.Background(), repository.InvoiceListFilter{ClientID: &alpha.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, alpha.ID.String(), filtered[0].ClientID)
}

func TestClientBalanceFollowsInvoiceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Rougier")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		Categorie:             model.CategorieNonAssujetti,
		ChildCollectionsInput: singleItem("Fret grumes", "1", "100000"),
	})
	require.NoError(t, err)
	_, err = env.invoices.Validate(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Equal(t, "100000.00", env.reloadClient(t, client).Solde.StringFixed(2))

	_, err = env.payments.Create(context.Background(), CreatePaymentRequest{
		DocumentType: model.DocTypeFacture,
		DocumentID:   invoice.ID,
		Montant:      "60000",
		ModePaiement: model.ModeVirement,
	})
	require.NoError(t, err)
	require.Equal(t, "40000.00", env.reloadClient(t, client).Solde.StringFixed(2))

	_, err = env.cancellations.CancelInvoice(context.Background(), invoice.ID, CancelDocumentRequest{Motif: "erreur de saisie"})
	require.NoError(t, err)
	// Cancelled invoices leave the balance aggregation entirely.
	require.Equal(t, "0.00", env.reloadClient(t, client).Solde.StringFixed(2))
}
