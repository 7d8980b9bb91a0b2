package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gescom-backend/internal/model"

	"github.com/stretchr/testify/require"
)

func (e *testEnv) generate(t *testing.T, docType string) string {
	t.Helper()
	var numero string
	err := e.txManager.RunInTx(context.Background(), func(txCtx context.Context) error {
		var err error
		numero, err = e.numbering.GenerateNumber(txCtx, docType)
		return err
	})
	require.NoError(t, err)
	return numero
}

func TestGenerateNumberSequence(t *testing.T) {
	env := newTestEnv(t)
	year := time.Now().Year()

	require.Equal(t, fmt.Sprintf("FAC-%d-0001", year), env.generate(t, model.DocTypeFacture))
	require.Equal(t, fmt.Sprintf("FAC-%d-0002", year), env.generate(t, model.DocTypeFacture))
	require.Equal(t, fmt.Sprintf("FAC-%d-0003", year), env.generate(t, model.DocTypeFacture))
}

func TestGenerateNumberPartitionsByType(t *testing.T) {
	env := newTestEnv(t)
	year := time.Now().Year()

	require.Equal(t, fmt.Sprintf("FAC-%d-0001", year), env.generate(t, model.DocTypeFacture))
	require.Equal(t, fmt.Sprintf("DEV-%d-0001", year), env.generate(t, model.DocTypeDevis))
	require.Equal(t, fmt.Sprintf("OT-%d-0001", year), env.generate(t, model.DocTypeOrdre))
	require.Equal(t, fmt.Sprintf("AV-%d-0001", year), env.generate(t, model.DocTypeAvoir))
}

func TestGenerateNumberNeverReusesSoftDeleted(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Transit Ogooue")
	year := time.Now().Year()

	invoice := &model.Invoice{
		Numero:       fmt.Sprintf("FAC-%d-0005", year),
		ClientID:     client.ID,
		Categorie:    model.CategorieStandard,
		Statut:       model.InvoiceStatusBrouillon,
		DateEmission: time.Now(),
	}
	require.NoError(t, env.db.Create(invoice).Error)
	require.NoError(t, env.db.Delete(invoice).Error)

	require.Equal(t, fmt.Sprintf("FAC-%d-0006", year), env.generate(t, model.DocTypeFacture))
}

func TestGenerateNumberReconcilesCounterWithData(t *testing.T) {
	env := newTestEnv(t)
	client := env.seedClient(t, "Gabon Fret")
	year := time.Now().Year()

	// Counter lags behind existing rows; the observed maximum wins.
	counter := &model.DocumentCounter{
		DocType:        model.DocTypeFacture,
		Annee:          year,
		Prefixe:        "FAC",
		ProchainNumero: 2,
	}
	require.NoError(t, env.db.Create(counter).Error)

	invoice := &model.Invoice{
		Numero:       fmt.Sprintf("FAC-%d-0042", year),
		ClientID:     client.ID,
		Categorie:    model.CategorieStandard,
		Statut:       model.InvoiceStatusBrouillon,
		DateEmission: time.Now(),
	}
	require.NoError(t, env.db.Create(invoice).Error)

	require.Equal(t, fmt.Sprintf("FAC-%d-0043", year), env.generate(t, model.DocTypeFacture))
}

func TestGenerateNumberUsesConfiguredSeed(t *testing.T) {
	env := newTestEnv(t)
	year := time.Now().Year()

	cfg := model.DefaultNumberingConfig()
	cfg.PrefixeFacture = "FA"
	cfg.ProchainNumeroFacture = 10
	require.NoError(t, env.config.UpdateNumbering(context.Background(), cfg))

	require.Equal(t, fmt.Sprintf("FA-%d-0010", year), env.generate(t, model.DocTypeFacture))
	require.Equal(t, fmt.Sprintf("FA-%d-0011", year), env.generate(t, model.DocTypeFacture))
}

func TestFormatNumero(t *testing.T) {
	require.Equal(t, "FAC-2025-0042", formatNumero("FAC", 2025, 42))
	require.Equal(t, "DEV-2025-0001", formatNumero("DEV", 2025, 1))
	// Past 9999 the suffix grows without re-padding.
	require.Equal(t, "FAC-2025-10000", formatNumero("FAC", 2025, 10000))
}
