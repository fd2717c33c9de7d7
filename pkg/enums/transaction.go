package enums

import "fmt"

// Currency describes the allowed values for the transactions `currency` column.
type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
)

var validCurrencies = []Currency{CurrencyARS, CurrencyUSD}

func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts the raw string to Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}

// TransactionType splits financial events into income and expenses.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeIncome,
	TransactionTypeExpense,
}

func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts the raw string to TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}

// Frequency marks expenses as recurring or one-off.
type Frequency string

const (
	FrequencyFixed    Frequency = "FIXED"
	FrequencyVariable Frequency = "VARIABLE"
)

var validFrequencies = []Frequency{FrequencyFixed, FrequencyVariable}

func (f Frequency) IsValid() bool {
	for _, candidate := range validFrequencies {
		if candidate == f {
			return true
		}
	}
	return false
}

// IncomeType is the declared/undeclared income classification. The values are
// domain labels carried through untouched.
type IncomeType string

const (
	IncomeTypeBlanco IncomeType = "BLANCO"
	IncomeTypeNegro  IncomeType = "NEGRO"
)

var validIncomeTypes = []IncomeType{IncomeTypeBlanco, IncomeTypeNegro}

func (i IncomeType) IsValid() bool {
	for _, candidate := range validIncomeTypes {
		if candidate == i {
			return true
		}
	}
	return false
}
