package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// FormatCycleReport formats one decision cycle into a Telegram message:
// a structured bought/failed/skipped summary with reasons, whatever
// partial failures occurred on the way.
func FormatCycleReport(report *model.CycleReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Daily decision cycle</b> | %s\n\n", report.Date.Format("2006-01-02")))

	if report.Status != model.CycleOK {
		b.WriteString(fmt.Sprintf("Status: <b>%s</b>", report.Status))
		if report.Reason != "" {
			b.WriteString(fmt.Sprintf(" (%s)", report.Reason))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Candidates analyzed: %d | Picks: %d\n", len(report.Candidates), len(report.Picks)))

	for _, s := range report.Executions {
		b.WriteString(fmt.Sprintf("\n💼 <b>%s</b> — spent %.2f / %.2f (%.0f%%)\n",
			s.Strategy, s.TotalSpent, s.Budget, s.BudgetUtilisationPct()))
		for _, t := range s.Bought {
			b.WriteString(fmt.Sprintf("  ✓ %s — %.2f (qty %.4f)\n", t.Ticker, t.Spent, t.Quantity))
		}
		for _, t := range s.Failed {
			b.WriteString(fmt.Sprintf("  ✗ %s — %s\n", t.Ticker, t.Error))
		}
		for _, t := range s.Skipped {
			b.WriteString(fmt.Sprintf("  ⏭ %s — %s\n", t.Ticker, t.Error))
		}
		if len(s.Bought)+len(s.Failed)+len(s.Skipped) == 0 {
			b.WriteString("  no orders attempted\n")
		}
	}

	return b.String()
}

// FormatSellSignals formats the sell-check result for one strategy.
func FormatSellSignals(strategy string, signals []model.SellSignal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔔 <b>Sell check</b> | %s | %s\n\n", strategy, time.Now().Format("2006-01-02")))

	if len(signals) == 0 {
		b.WriteString("No exit rules triggered.\n")
		return b.String()
	}

	for _, s := range signals {
		icon := "⏰"
		switch s.Rule {
		case model.RuleStopLoss:
			icon = "🛑"
		case model.RuleTakeProfit:
			icon = "💰"
		}
		b.WriteString(fmt.Sprintf("%s %s: %s (%+.1f%%, %d days held)\n",
			icon, s.Ticker, s.Reasoning, s.ReturnPct, s.DaysHeld))
	}
	return b.String()
}

// FormatCooldown formats the active blacklist.
func FormatCooldown(blocked map[string]bool, days int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧊 <b>Cooldown</b> (%d-day window)\n\n", days))
	if len(blocked) == 0 {
		b.WriteString("No tickers blocked.\n")
		return b.String()
	}
	tickers := make([]string, 0, len(blocked))
	for t := range blocked {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	b.WriteString(strings.Join(tickers, ", "))
	b.WriteString("\n")
	return b.String()
}

// FormatPositions formats broker position snapshots per strategy.
func FormatPositions(strategy string, positions []model.Position) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>Positions</b> | %s\n\n", strategy))
	if len(positions) == 0 {
		b.WriteString("No open positions.\n")
		return b.String()
	}
	for _, p := range positions {
		b.WriteString(fmt.Sprintf("%s: %.4f @ %.2f (opened %s)\n",
			p.Ticker, p.Quantity, p.AvgBuyPrice, p.OpenedAt.Format("2006-01-02")))
	}
	return b.String()
}
