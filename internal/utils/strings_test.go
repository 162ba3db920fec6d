package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single value", input: "PETR4", expected: []string{"PETR4"}},
		{name: "varied spacing", input: "PETR4,  VALE3 , ITUB4", expected: []string{"PETR4", "VALE3", "ITUB4"}},
		{name: "trailing comma", input: "WEGE3,", expected: []string{"WEGE3"}},
		{name: "only spaces", input: "   ", expected: nil},
		{name: "comma only", input: ",", expected: nil},
		{name: "multiple commas", input: ",,BBAS3,,ABEV3,,", expected: []string{"BBAS3", "ABEV3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCSV(tt.input))
		})
	}
}

func TestParseSymbols(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "normalizes case", input: "petr4, Vale3", expected: []string{"PETR4", "VALE3"}},
		{name: "drops duplicates keeping order", input: "VALE3,petr4,vale3,ITUB4,PETR4", expected: []string{"VALE3", "PETR4", "ITUB4"}},
		{name: "empty", input: " , ", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSymbols(tt.input))
		})
	}
}

func TestUniqueSymbols_PreservesInput(t *testing.T) {
	input := []string{" btc ", "BTC", "eth"}
	out := UniqueSymbols(input)

	assert.Equal(t, []string{"BTC", "ETH"}, out)
	assert.Equal(t, []string{" btc ", "BTC", "eth"}, input, "input should not be modified")
}
