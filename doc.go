// Package folio values a personal investment portfolio.
//
// A portfolio is built from a Source of transaction records and asset
// metadata, daily prices from a PriceProvider and exchange rates from a
// Converter. Every figure is reported in a single display currency:
//   - Asset holds one ticker, its native price series and its valuation.
//   - Portfolio aggregates the assets into category summaries, asset rows and
//     a daily evolution series.
//   - ProjectHoldings turns transaction records into a daily holding value.
//
// Arithmetic is done on decimals, never on floats, except for Percent which
// is only used for display.
//
// This package serves as the foundational logic for the `im` command-line
// tool and its HTTP API.
package folio
