package jobcards

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

func TestFormatCode(t *testing.T) {
	require.Equal(t, "JC-0001", FormatCode(1))
	require.Equal(t, "JC-0042", FormatCode(42))
	require.Equal(t, "JC-12345", FormatCode(12345))
}

func TestComputeGrandTotal(t *testing.T) {
	j := JobCard{PriceSubtotal: 1000, TaxPercent: 18}
	j.ComputeGrandTotal()
	require.InDelta(t, 1180.0, j.GrandTotal, 0.001)

	j = JobCard{PriceSubtotal: 0, TaxPercent: 18}
	j.ComputeGrandTotal()
	require.Zero(t, j.GrandTotal)

	j = JobCard{PriceSubtotal: 2500.50, TaxPercent: 0}
	j.ComputeGrandTotal()
	require.InDelta(t, 2500.50, j.GrandTotal, 0.001)
}

func TestValidate(t *testing.T) {
	schedule := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	months := 6
	badMonths := 5
	next := schedule.AddDate(0, 3, 0)
	before := schedule.AddDate(0, 0, -1)

	cases := []struct {
		name    string
		job     JobCard
		wantErr error
	}{
		{
			"valid customer job",
			JobCard{Kind: KindCustomer, ScheduleDate: schedule, NextServiceDate: &next, TaxPercent: 18},
			nil,
		},
		{
			"valid society job",
			JobCard{Kind: KindSociety, ScheduleDate: schedule, ContractLengthMonths: &months, TaxPercent: 18},
			nil,
		},
		{
			"unknown kind",
			JobCard{Kind: "Factory", ScheduleDate: schedule},
			shared.ErrInvalidInput,
		},
		{
			"society without contract length",
			JobCard{Kind: KindSociety, ScheduleDate: schedule},
			shared.ErrRequiredField,
		},
		{
			"society with unsupported contract length",
			JobCard{Kind: KindSociety, ScheduleDate: schedule, ContractLengthMonths: &badMonths},
			shared.ErrInvalidInput,
		},
		{
			"negative subtotal",
			JobCard{Kind: KindCustomer, ScheduleDate: schedule, PriceSubtotal: -1},
			shared.ErrInvalidInput,
		},
		{
			"tax out of range",
			JobCard{Kind: KindCustomer, ScheduleDate: schedule, TaxPercent: 101},
			shared.ErrInvalidInput,
		},
		{
			"missing schedule date",
			JobCard{Kind: KindCustomer},
			shared.ErrRequiredField,
		},
		{
			"next service before schedule",
			JobCard{Kind: KindCustomer, ScheduleDate: schedule, NextServiceDate: &before},
			shared.ErrInvalidInput,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.job.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
