package main

import (
	"bytes"
	"credit-engine/internal/batch"
	"credit-engine/internal/config"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverrides(t *testing.T) {
	base := config.ReconciliationConfig{CustomerFile: "/data/customer_data.xlsx", LoanFile: "/data/loan_data.xlsx", Timeout: time.Minute}

	got := applyOverrides(base, &options{loanFile: "loans.csv"})

	assert.Equal(t, "/data/customer_data.xlsx", got.CustomerFile)
	assert.Equal(t, "loans.csv", got.LoanFile)
	assert.Equal(t, time.Minute, got.Timeout)
}

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--customers", "c.xlsx", "--loans", "l.xlsx", "--migrate", "-c", "/etc/credit"}))

	for name, want := range map[string]string{"customers": "c.xlsx", "loans": "l.xlsx", "migrate": "true", "config": "/etc/credit"} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, want, flag.Value.String(), name)
	}
}

func TestWriteRun(t *testing.T) {
	var buf bytes.Buffer
	run := &batch.Run{
		ID:     "run-1",
		Status: batch.RunCompletedWithErrors,
		Report: &batch.Report{
			Customers: batch.EntityCounts{Created: 1},
			Errors:    []string{"loans row 2: missing customer_id"},
		},
	}

	require.NoError(t, writeRun(&buf, run))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "completed_with_errors", decoded["status"])
	assert.Equal(t, []interface{}{"loans row 2: missing customer_id"}, decoded["report"].(map[string]interface{})["errors"])
}
