package transactions

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// AmountInput accepts the amount either as a JSON number or as a raw string
// the way users type it ("1.234,56", "400.000", "$ 1500").
type AmountInput string

func (a *AmountInput) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	}
	*a = AmountInput(string(data))
	return nil
}

// NormalizeAmount turns a user-typed amount into a decimal. Commas count as
// decimal separators; when several dots remain, all but the last were
// thousand separators; a lone dot followed by exactly three digits is read as
// a thousand separator too, so "400.000" means four hundred thousand.
func NormalizeAmount(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "monto inválido")
	}

	s = strings.ReplaceAll(s, ",", ".")

	switch dots := strings.Count(s, "."); {
	case dots > 1:
		last := strings.LastIndex(s, ".")
		intPart := strings.ReplaceAll(s[:last], ".", "")
		fracPart := s[last+1:]
		if fracPart != "" {
			s = intPart + "." + fracPart
		} else {
			s = intPart
		}
	case dots == 1:
		parts := strings.SplitN(s, ".", 2)
		intPart, fracPart := parts[0], parts[1]
		if len(fracPart) == 3 {
			s = intPart + fracPart
		} else if fracPart == "" {
			s = intPart
		}
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "monto inválido")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "el monto debe ser mayor a cero")
	}
	return amount, nil
}
