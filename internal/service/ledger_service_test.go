package service

import (
	"context"
	"testing"

	"gescom-backend/internal/model"
	"gescom-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLedgerRecordCashMovement(t *testing.T) {
	env := newTestEnv(t)

	movement, err := env.ledger.Record(context.Background(), LedgerEntry{
		Type:    model.MouvementEntree,
		Montant: decimal.NewFromInt(25000),
		Libelle: "Encaissement especes",
	})
	require.NoError(t, err)
	require.Equal(t, model.SourceCaisse, movement.Source)
	require.Nil(t, movement.BanqueID)
}

func TestLedgerRecordAdjustsBankSolde(t *testing.T) {
	env := newTestEnv(t)
	bank, err := env.ledger.CreateBank(context.Background(), CreateBankRequest{
		Nom:          "Orabank",
		NumeroCompte: "40010",
		SoldeInitial: "100000",
	})
	require.NoError(t, err)

	_, err = env.ledger.Record(context.Background(), LedgerEntry{
		Type:     model.MouvementEntree,
		Montant:  decimal.NewFromInt(40000),
		BanqueID: &bank.ID,
		Libelle:  "Virement recu",
	})
	require.NoError(t, err)
	require.Equal(t, "140000.00", env.reloadBank(t, bank.ID.String()).Solde.StringFixed(2))

	_, err = env.ledger.Record(context.Background(), LedgerEntry{
		Type:     model.MouvementSortie,
		Montant:  decimal.NewFromInt(15000),
		BanqueID: &bank.ID,
		Libelle:  "Frais bancaires",
	})
	require.NoError(t, err)
	require.Equal(t, "125000.00", env.reloadBank(t, bank.ID.String()).Solde.StringFixed(2))
}

func TestLedgerRecordUnknownBank(t *testing.T) {
	env := newTestEnv(t)
	missing := uuid.New()

	_, err := env.ledger.Record(context.Background(), LedgerEntry{
		Type:     model.MouvementEntree,
		Montant:  decimal.NewFromInt(1000),
		BanqueID: &missing,
		Libelle:  "Banque inconnue",
	})
	require.ErrorIs(t, err, ErrBankNotFound)
}

func TestLedgerListMovementsFilters(t *testing.T) {
	env := newTestEnv(t)
	bank, err := env.ledger.CreateBank(context.Background(), CreateBankRequest{Nom: "BGFI", NumeroCompte: "40011"})
	require.NoError(t, err)

	_, err = env.ledger.Record(context.Background(), LedgerEntry{
		Type:    model.MouvementEntree,
		Montant: decimal.NewFromInt(5000),
		Libelle: "Caisse",
	})
	require.NoError(t, err)
	_, err = env.ledger.Record(context.Background(), LedgerEntry{
		Type:     model.MouvementEntree,
		Montant:  decimal.NewFromInt(7000),
		BanqueID: &bank.ID,
		Libelle:  "Banque",
	})
	require.NoError(t, err)

	caisse, total, err := env.ledger.ListMovements(context.Background(), repository.CashMovementListFilter{Source: model.SourceCaisse})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "5000.00", caisse[0].Montant.StringFixed(2))

	banque, total, err := env.ledger.ListMovements(context.Background(), repository.CashMovementListFilter{BanqueID: &bank.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "7000.00", banque[0].Montant.StringFixed(2))
}
