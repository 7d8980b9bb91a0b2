package service

import (
	"context"
	"strings"
	"testing"

	"gescom-backend/internal/model"

	"github.com/stretchr/testify/require"
)

func TestQuoteLifecycleToWorkOrder(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Assala Energy")

	quote, err := env.quotes.Create(context.Background(), CreateQuoteRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Etude logistique", "1", "75000"),
	})
	require.NoError(t, err)
	require.Equal(t, model.DevisStatusBrouillon, quote.Statut)
	require.True(t, strings.HasPrefix(quote.Numero, "DEV-"))

	sent, err := env.quotes.Send(context.Background(), quote.ID)
	require.NoError(t, err)
	require.Equal(t, model.DevisStatusEnvoye, sent.Statut)

	order, err := env.quotes.ConvertToWorkOrder(context.Background(), quote.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrdreStatusEnCours, order.Statut)
	require.Equal(t, quote.MontantTTC, order.MontantTTC)
	require.NotNil(t, order.SourceDevisID)
	require.Equal(t, quote.ID, *order.SourceDevisID)
	require.Len(t, order.LineItems, 1)

	converted, err := env.quotes.Get(context.Background(), quote.ID)
	require.NoError(t, err)
	require.Equal(t, model.DevisStatusConverti, converted.Statut)

	_, err = env.quotes.ConvertToWorkOrder(context.Background(), quote.ID)
	require.ErrorIs(t, err, ErrAlreadyConverted)
}

func TestSendQuoteRequiresDraft(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Total Energies")

	quote, err := env.quotes.Create(context.Background(), CreateQuoteRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Devis transport", "1", "10000"),
	})
	require.NoError(t, err)

	_, err = env.quotes.Send(context.Background(), quote.ID)
	require.NoError(t, err)

	_, err = env.quotes.Send(context.Background(), quote.ID)
	require.ErrorIs(t, err, ErrNotDraft)
}

func TestCancelQuote(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Satram")

	quote, err := env.quotes.Create(context.Background(), CreateQuoteRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Prestation", "1", "10000"),
	})
	require.NoError(t, err)

	cancellation, err := env.cancellations.CancelQuote(context.Background(), quote.ID, "client desiste")
	require.NoError(t, err)
	require.Equal(t, model.DocTypeDevis, cancellation.Type)
	require.False(t, cancellation.AvoirGenere)

	cancelled, err := env.quotes.Get(context.Background(), quote.ID)
	require.NoError(t, err)
	require.Equal(t, model.DevisStatusAnnule, cancelled.Statut)

	_, err = env.cancellations.CancelQuote(context.Background(), quote.ID, "deja annule")
	require.ErrorIs(t, err, ErrAlreadyCancelled)

	_, err = env.quotes.ConvertToWorkOrder(context.Background(), quote.ID)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestUpdateConvertedQuoteRejected(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Gabon Port")

	quote, err := env.quotes.Create(context.Background(), CreateQuoteRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Stockage", "1", "5000"),
	})
	require.NoError(t, err)

	_, err = env.quotes.ConvertToWorkOrder(context.Background(), quote.ID)
	require.NoError(t, err)

	notes := "modification tardive"
	_, err = env.quotes.Update(context.Background(), quote.ID, UpdateQuoteRequest{Notes: &notes})
	require.ErrorIs(t, err, ErrAlreadyConverted)
}
