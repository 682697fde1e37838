package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesCmd(t *testing.T) {
	cmd := categoriesCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, model.CategoryNames(), lines)
}

func TestVersionCmd(t *testing.T) {
	cmd := versionCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "spice-relay dev\n", out.String())
}

func TestPrintExtraction(t *testing.T) {
	tests := []struct {
		result model.ExtractionResult
		name   string
		want   string
	}{
		{
			name: "recognized",
			result: model.Recognized{
				Amount:         decimal.NewFromInt(2349),
				Currency:       "CLP",
				RawDescription: "Falabella",
			},
			want: `{"amount":"2349","currency":"CLP","raw_description":"Falabella","recognized":true}`,
		},
		{
			name:   "not recognized",
			result: model.NotRecognized{Reason: "not a credit card transaction"},
			want:   `{"reason":"not a credit card transaction","recognized":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			require.NoError(t, printExtraction(out, tt.result))
			assert.JSONEq(t, tt.want, out.String())
		})
	}
}

func TestArgsOrStdin(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("  Compra por $2,349\n"))

	got, err := argsOrStdin(cmd, []string{"lunch", "with", "friends"})
	require.NoError(t, err)
	assert.Equal(t, "lunch with friends", got)

	got, err = argsOrStdin(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "Compra por $2,349", got)
}

func TestExportFilter(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(t *testing.T, since, until time.Time, category model.Category)
		wantErr bool
	}{
		{
			name: "no flags",
			want: func(t *testing.T, since, until time.Time, category model.Category) {
				assert.True(t, since.IsZero())
				assert.True(t, until.IsZero())
				assert.Empty(t, category)
			},
		},
		{
			name: "date window and category",
			args: []string{"--since", "2025-03-01", "--until", "2025-04-01", "--category", "Eating Out"},
			want: func(t *testing.T, since, until time.Time, category model.Category) {
				assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), since)
				assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), until)
				assert.Equal(t, model.CategoryEatingOut, category)
			},
		},
		{name: "bad date", args: []string{"--since", "March"}, wantErr: true},
		{name: "unknown category", args: []string{"--category", "Yachts"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exportCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))

			filter, err := exportFilter(cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.want(t, filter.Since, filter.Until, filter.Category)
		})
	}
}
