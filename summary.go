package folio

// CategorySummary is the allocation of one category, in display currency.
type CategorySummary struct {
	Name     string  `json:"name"`
	Goal     Percent `json:"goal"`
	Assets   int     `json:"assets"`
	Invested Money   `json:"invested"`
	Current  Money   `json:"current"`
	// Share is Current relative to the portfolio value.
	Share Percent `json:"share"`
}

// SummaryByCategory returns one row per category, in taxonomy order, even
// for categories without assets. Categories used by assets but missing from
// the taxonomy come last, with no goal.
func (p *Portfolio) SummaryByCategory() []CategorySummary {
	rows := make([]CategorySummary, 0, len(p.categories))
	index := make(map[string]int)
	row := func(name string, goal Percent) *CategorySummary {
		if i, ok := index[name]; ok {
			return &rows[i]
		}
		index[name] = len(rows)
		rows = append(rows, CategorySummary{
			Name:     name,
			Goal:     goal,
			Invested: M(0, p.currency),
			Current:  M(0, p.currency),
		})
		return &rows[len(rows)-1]
	}
	for _, c := range p.categories {
		row(c.Name, c.Goal)
	}
	for _, a := range p.assets {
		name := a.Info().Category
		if _, ok := index[name]; !ok {
			p.log.Warn().Str("ticker", a.Ticker()).Str("category", name).Msg("category missing from the taxonomy")
		}
		r := row(name, 0)
		r.Assets++
		r.Invested = r.Invested.Add(a.Invested())
		r.Current = r.Current.Add(a.CurrentValue())
	}
	for i := range rows {
		rows[i].Share = percentOf(rows[i].Current.Amount(), p.value.Amount())
	}
	return rows
}

// AssetRow describes one asset of the portfolio.
type AssetRow struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Field    string `json:"field,omitempty"`
	Currency string `json:"currency"`

	// native currency
	AverageBuy   Money    `json:"averageBuy"`
	UnitValue    Money    `json:"unitValue"`
	Owned        Quantity `json:"owned"`
	HoldingValue Money    `json:"holdingValue"`
	Invested     Money    `json:"invested"`

	// display currency
	Current Money `json:"current"`

	// Share is Current relative to the portfolio value.
	Share Percent `json:"share"`
	// Result is the gain of HoldingValue over Invested.
	Result Percent `json:"result"`
}

// AssetRows returns one row per asset, in load order.
func (p *Portfolio) AssetRows() []AssetRow {
	rows := make([]AssetRow, 0, len(p.assets))
	for _, a := range p.assets {
		info, results := a.Info(), a.Results()
		holding := a.HoldingValue()
		invested := results.Invested.In(info.Currency)
		rows = append(rows, AssetRow{
			Ticker:       info.Ticker,
			Name:         info.Name,
			Category:     info.Category,
			Field:        info.Field,
			Currency:     info.Currency,
			AverageBuy:   results.AverageBuy.In(info.Currency),
			UnitValue:    a.UnitValue(),
			Owned:        results.Owned,
			HoldingValue: holding,
			Invested:     invested,
			Current:      a.CurrentValue(),
			Share:        percentOf(a.CurrentValue().Amount(), p.value.Amount()),
			Result:       percentOf(holding.Sub(invested).Amount(), invested.Amount()),
		})
	}
	return rows
}
