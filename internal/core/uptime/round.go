package uptime

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	perMinute = decimal.NewFromInt(int64(time.Minute))
	perHour   = decimal.NewFromInt(int64(time.Hour))
)

// Minutes rounds d to whole minutes, half to even
func Minutes(d time.Duration) int64 {
	return decimal.NewFromInt(int64(d)).Div(perMinute).RoundBank(0).IntPart()
}

// Hours rounds d to hours with two decimals, half to even
func Hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(perHour).RoundBank(2)
}
