package core

// MonthTotal is an amount aggregated for one YYYY-MM month.
type MonthTotal struct {
	Month string
	Total Money
}

// Totals is the income/expense summary used by reporting endpoints and the CLI.
type Totals struct {
	Income  Money
	Expense Money
}

// Net is income minus expense. It can be negative.
func (t Totals) Net() Money {
	return NewMoney(t.Income.Decimal().Sub(t.Expense.Decimal()))
}

// GroupByMonth folds dated amounts into ordered month totals.
// dates must be YYYY-MM-DD strings; rows arrive sorted by date.
func GroupByMonth(dates []string, amounts []Money) []MonthTotal {
	var out []MonthTotal
	for i, d := range dates {
		key := d
		if len(key) >= 7 {
			key = key[:7]
		}
		if n := len(out); n > 0 && out[n-1].Month == key {
			out[n-1].Total = out[n-1].Total.Add(amounts[i])
			continue
		}
		out = append(out, MonthTotal{Month: key, Total: amounts[i]})
	}
	return out
}
