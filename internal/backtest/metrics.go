package backtest

// Metrics summarises forecast quality and flat-stake betting performance
type Metrics struct {
	Fixtures            int     `json:"fixtures"`
	MeanRawRPS          float64 `json:"mean_raw_rps"`
	MeanCalibratedRPS   float64 `json:"mean_calibrated_rps"`
	MeanRawBrier        float64 `json:"mean_raw_brier"`
	MeanCalibratedBrier float64 `json:"mean_calibrated_brier"`
	MeanFactor          float64 `json:"mean_calibration_factor"`

	TotalBets   int     `json:"total_bets"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Pushes      int     `json:"pushes"`
	HitRate     float64 `json:"hit_rate"`
	TotalStaked float64 `json:"total_staked"`
	NetProfit   float64 `json:"net_profit"`
	ROI         float64 `json:"roi"`
	AverageOdds float64 `json:"average_odds"`
	AverageEdge float64 `json:"average_edge"`
	// MaxDrawdown is the largest peak to trough fall of cumulative profit, in stake units
	MaxDrawdown  float64 `json:"max_drawdown"`
	ProfitFactor float64 `json:"profit_factor"`
}

// CalibrationHelped reports whether calibration lowered the mean RPS
func (m Metrics) CalibrationHelped() bool {
	return m.Fixtures > 0 && m.MeanCalibratedRPS < m.MeanRawRPS
}

func calculateMetrics(scores []FixtureScore, bets []Bet) Metrics {
	m := Metrics{Fixtures: len(scores), TotalBets: len(bets)}

	if n := float64(len(scores)); n > 0 {
		for _, s := range scores {
			m.MeanRawRPS += s.RawRPS
			m.MeanCalibratedRPS += s.CalibratedRPS
			m.MeanRawBrier += s.RawBrier
			m.MeanCalibratedBrier += s.CalibratedBrier
			m.MeanFactor += s.Factor
		}
		m.MeanRawRPS /= n
		m.MeanCalibratedRPS /= n
		m.MeanRawBrier /= n
		m.MeanCalibratedBrier /= n
		m.MeanFactor /= n
	}

	if len(bets) == 0 {
		return m
	}
	for _, b := range bets {
		switch b.Outcome {
		case BetWon:
			m.Wins++
		case BetLost:
			m.Losses++
		case BetPush:
			m.Pushes++
		}
		m.TotalStaked += b.Stake
		m.NetProfit += b.Profit
		m.AverageOdds += b.Odds
		m.AverageEdge += b.Edge
	}
	m.AverageOdds /= float64(len(bets))
	m.AverageEdge /= float64(len(bets))
	if settled := m.Wins + m.Losses; settled > 0 {
		m.HitRate = float64(m.Wins) / float64(settled)
	}
	if m.TotalStaked > 0 {
		m.ROI = m.NetProfit / m.TotalStaked
	}
	m.MaxDrawdown = calculateMaxDrawdown(bets)
	m.ProfitFactor = calculateProfitFactor(bets)
	return m
}

func calculateMaxDrawdown(bets []Bet) float64 {
	maxDD := 0.0
	peak := 0.0
	cumulative := 0.0
	for _, b := range bets {
		cumulative += b.Profit
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// calculateProfitFactor is gross profit over gross loss; zero without losses
func calculateProfitFactor(bets []Bet) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, b := range bets {
		if b.Profit > 0 {
			grossProfit += b.Profit
		} else {
			grossLoss -= b.Profit
		}
	}
	if grossLoss == 0 {
		return 0
	}
	return grossProfit / grossLoss
}
