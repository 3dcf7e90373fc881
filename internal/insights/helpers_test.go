package insights

import "fintrack/internal/core"

func income(id, date, amount string) core.Transaction {
	return core.Transaction{ID: id, Date: date, Type: core.Income, Category: "salary", Amount: core.Amount(amount)}
}

func expense(id, date, category, amount string) core.Transaction {
	return core.Transaction{ID: id, Date: date, Type: core.Expense, Category: category, Amount: core.Amount(amount)}
}

// mayScenario is one month with a salary and two lifestyle expenses.
func mayScenario() []core.Transaction {
	return []core.Transaction{
		income("t1", "2024-05-01", "1000"),
		expense("t2", "2024-05-02", "food", "300"),
		expense("t3", "2024-05-03", "shopping", "400"),
	}
}
