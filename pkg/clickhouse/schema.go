package clickhouse

import "fmt"

// SchemaStatements returns idempotent DDL for the market tables.
// ReplacingMergeTree keeps the last row per sorting key, so re-ingesting a
// (ticker, date) and re-running the transform replace rather than duplicate.
func SchemaStatements(db string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.price_data (
            ticker String,
            date Date,
            open Float64,
            high Float64,
            low Float64,
            close Nullable(Float64),
            adj_close Float64,
            volume Int64
        ) ENGINE = ReplacingMergeTree ORDER BY (ticker, date)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.ticker_profile (
            ticker String,
            sector String
        ) ENGINE = ReplacingMergeTree ORDER BY ticker`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.daily_returns (
            ticker String,
            date Date,
            close Float64,
            prev_close Float64,
            daily_return Float64
        ) ENGINE = ReplacingMergeTree ORDER BY (ticker, date)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.sector_monthly_returns (
            sector String,
            month Date,
            avg_return Float64,
            samples UInt32
        ) ENGINE = ReplacingMergeTree ORDER BY (sector, month)`, db),
	}
}
