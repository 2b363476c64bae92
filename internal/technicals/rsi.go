package technicals

// DefaultRSIPeriod is the standard Wilder lookback
const DefaultRSIPeriod = 14

// RSI computes Wilder's relative strength index over closes (oldest first).
// The first average gain and loss are simple means over the first period
// changes; later changes are smoothed as avg = (avg*(period-1) + x) / period.
// Returns nil with fewer than period+1 closes. A zero average loss yields 100.
func RSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum -= change
		}
	}

	p := float64(period)
	avgGain := gainSum / p
	avgLoss := lossSum / p

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	if avgLoss == 0 {
		return ptr(100)
	}
	rs := avgGain / avgLoss
	return ptr(clamp(100-100/(1+rs), 0, 100))
}
