package service

import (
	"context"
	"testing"

	"gescom-backend/internal/model"

	"github.com/stretchr/testify/require"
)

func TestTotalsStandardRates(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "SOGEC Transit")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Manutention conteneur", "1", "100000"),
	})
	require.NoError(t, err)

	require.Equal(t, "100000.00", invoice.MontantHT)
	require.Equal(t, "18000.00", invoice.MontantTVA)
	require.Equal(t, "1000.00", invoice.MontantCSS)
	require.Equal(t, "119000.00", invoice.MontantTTC)
}

func TestTotalsNonAssujetti(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "ONG Horizon")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		Categorie:             model.CategorieNonAssujetti,
		ChildCollectionsInput: singleItem("Entreposage", "1", "100000"),
	})
	require.NoError(t, err)

	require.Equal(t, "100000.00", invoice.MontantHT)
	require.Equal(t, "0.00", invoice.MontantTVA)
	require.Equal(t, "0.00", invoice.MontantCSS)
	require.Equal(t, "100000.00", invoice.MontantTTC)
}

func TestTotalsPerTaxExemptions(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "CFAO Equipement")

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		ExonereTVA:            true,
		ChildCollectionsInput: singleItem("Transport", "1", "100000"),
	})
	require.NoError(t, err)
	require.Equal(t, "0.00", invoice.MontantTVA)
	require.Equal(t, "1000.00", invoice.MontantCSS)
	require.Equal(t, "101000.00", invoice.MontantTTC)

	invoice, err = env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		ExonereCSS:            true,
		ChildCollectionsInput: singleItem("Transport", "1", "100000"),
	})
	require.NoError(t, err)
	require.Equal(t, "18000.00", invoice.MontantTVA)
	require.Equal(t, "0.00", invoice.MontantCSS)
	require.Equal(t, "118000.00", invoice.MontantTTC)
}

func TestTotalsFlattenContainerOperations(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Maritime Plus")

	// The container's own prix_unitaire never enters the totals, only its
	// operations do.
	containers := []ContainerInput{{
		Numero:       "TCLU1234567",
		TypeTC:       "40HC",
		PrixUnitaire: "999999",
		Operations: []OperationInput{
			{Designation: "Depotage", Quantite: "2", PrixUnitaire: "25000"},
			{Designation: "Relevage", Quantite: "1", PrixUnitaire: "10000"},
		},
	}}
	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		Categorie:             model.CategorieNonAssujetti,
		ChildCollectionsInput: ChildCollectionsInput{Containers: &containers},
	})
	require.NoError(t, err)

	require.Equal(t, "60000.00", invoice.MontantHT)
	require.Equal(t, "60000.00", invoice.MontantTTC)
}

func TestTotalsSumAllCollections(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Bois du Gabon")

	items := []LineItemInput{{Designation: "Dossier", Quantite: "1", PrixUnitaire: "5000"}}
	containers := []ContainerInput{{
		Numero:     "MSKU7654321",
		TypeTC:     "20GP",
		Operations: []OperationInput{{Designation: "Empotage", Quantite: "1", PrixUnitaire: "15000"}},
	}}
	lots := []LotInput{{Designation: "Grumes okoume", Quantite: "4", PrixUnitaire: "20000"}}

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:  client.ID.String(),
		Categorie: model.CategorieNonAssujetti,
		ChildCollectionsInput: ChildCollectionsInput{
			LineItems:  &items,
			Containers: &containers,
			Lots:       &lots,
		},
	})
	require.NoError(t, err)

	// 5000 + 15000 + 4*20000
	require.Equal(t, "100000.00", invoice.MontantHT)
}

func TestTotalsFollowTaxConfiguration(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Petro Services")

	require.NoError(t, env.config.UpdateTaxes(context.Background(), model.TaxConfig{TVATaux: 20, CSSTaux: 2}))

	invoice, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Acconage", "1", "100000"),
	})
	require.NoError(t, err)

	require.Equal(t, "20000.00", invoice.MontantTVA)
	require.Equal(t, "2000.00", invoice.MontantCSS)
	require.Equal(t, "122000.00", invoice.MontantTTC)
}

func TestTotalsRecomputeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Afritrans")

	created, err := env.invoices.Create(context.Background(), CreateInvoiceRequest{
		ClientID:              client.ID.String(),
		ChildCollectionsInput: singleItem("Manutention", "1", "100000"),
	})
	require.NoError(t, err)

	// An update that touches no collection re-runs the recompute over the same
	// children and must land on the same totals.
	updated, err := env.invoices.Update(context.Background(), created.ID, UpdateInvoiceRequest{})
	require.NoError(t, err)

	require.Equal(t, created.MontantHT, updated.MontantHT)
	require.Equal(t, created.MontantTVA, updated.MontantTVA)
	require.Equal(t, created.MontantCSS, updated.MontantCSS)
	require.Equal(t, created.MontantTTC, updated.MontantTTC)
}
