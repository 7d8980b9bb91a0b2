package service

import (
	"context"
	"testing"

	"gescom-backend/internal/model"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaultsWhenUnset(t *testing.T) {
	env := newTestEnv(t)

	numbering, err := env.config.GetNumbering(context.Background())
	require.NoError(t, err)
	require.Equal(t, "FAC", numbering.PrefixeFacture)
	require.Equal(t, 1, numbering.ProchainNumeroFacture)

	taxes, err := env.config.GetTaxes(context.Background())
	require.NoError(t, err)
	require.Equal(t, float64(18), taxes.TVATaux)
	require.Equal(t, float64(1), taxes.CSSTaux)
}

func TestConfigUpdateRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	cfg := model.DefaultNumberingConfig()
	cfg.PrefixeDevis = "PRO"
	cfg.ProchainNumeroDevis = 500
	require.NoError(t, env.config.UpdateNumbering(context.Background(), cfg))

	stored, err := env.config.GetNumbering(context.Background())
	require.NoError(t, err)
	require.Equal(t, "PRO", stored.PrefixeDevis)
	require.Equal(t, 500, stored.ProchainNumeroDevis)

	require.NoError(t, env.config.UpdateTaxes(context.Background(), model.TaxConfig{TVATaux: 19.25, CSSTaux: 1}))
	taxes, err := env.config.GetTaxes(context.Background())
	require.NoError(t, err)
	require.Equal(t, 19.25, taxes.TVATaux)
}

func TestConfigRejectsNegativeRates(t *testing.T) {
	env := newTestEnv(t)

	err := env.config.UpdateTaxes(context.Background(), model.TaxConfig{TVATaux: -1, CSSTaux: 1})
	require.ErrorIs(t, err, ErrInvalidAmount)
}
