// cmd/billwatch is a terminal dashboard of bills as they are committed.
// It subscribes to the same Redis channel the server publishes on.
// Usage: go run ./cmd/billwatch [-redis redis://localhost:6379/0] [-shop <shopId>]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"airportpos/internal/infra"
	"airportpos/internal/realtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

const maxRecent = 15

type shopTotal struct {
	name  string
	bills int
	total decimal.Decimal
}

type model struct {
	events  <-chan realtime.BillEvent
	shop    string
	recent  []realtime.BillEvent
	totals  map[string]*shopTotal
	started time.Time
	closed  bool
}

type billMsg realtime.BillEvent

type feedClosedMsg struct{}

func waitForBill(ch <-chan realtime.BillEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return billMsg(ev)
	}
}

func (m model) Init() tea.Cmd {
	return waitForBill(m.events)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "c":
			m.recent = nil
			m.totals = map[string]*shopTotal{}
		}
	case billMsg:
		ev := realtime.BillEvent(msg)
		if m.shop == "" || ev.ShopID == m.shop {
			m.recent = append([]realtime.BillEvent{ev}, m.recent...)
			if len(m.recent) > maxRecent {
				m.recent = m.recent[:maxRecent]
			}
			t, ok := m.totals[ev.ShopID]
			if !ok {
				t = &shopTotal{name: ev.ShopName}
				m.totals[ev.ShopID] = t
			}
			t.bills++
			t.total = t.total.Add(ev.Total)
		}
		return m, waitForBill(m.events)
	case feedClosedMsg:
		m.closed = true
	}
	return m, nil
}

func (m model) View() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "airportpos live bills (since %s)\n", m.started.Format("15:04:05"))
	if m.shop != "" {
		fmt.Fprintf(b, "Filtered to shop %s\n", m.shop)
	}
	fmt.Fprintln(b, "")

	if len(m.recent) == 0 {
		fmt.Fprintln(b, "  waiting for bills…")
	}
	for _, ev := range m.recent {
		fmt.Fprintf(b, "  %s  %-20s  %-18s  Rs. %10s  %s\n",
			ev.CreatedAt.Local().Format("15:04:05"),
			truncate(ev.ShopName, 20),
			truncate(ev.CustomerName, 18),
			ev.Total.StringFixed(2),
			ev.BillID)
	}

	if len(m.totals) > 0 {
		fmt.Fprintln(b, "\nTotals by shop:")
		ids := make([]string, 0, len(m.totals))
		for id := range m.totals {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return m.totals[ids[i]].total.GreaterThan(m.totals[ids[j]].total) })
		for _, id := range ids {
			t := m.totals[id]
			fmt.Fprintf(b, "  %-20s  %4d bills  Rs. %10s\n", truncate(t.name, 20), t.bills, t.total.StringFixed(2))
		}
	}

	if m.closed {
		fmt.Fprintln(b, "\nFeed closed.")
	}
	fmt.Fprintln(b, "\nControls: c to clear, q to quit")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func main() {
	redisURL := flag.String("redis", getenv("REDIS_URL", "redis://localhost:6379/0"), "Redis URL")
	shop := flag.String("shop", "", "only show bills of this shop id")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := infra.NewRedis(ctx, *redisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer rdb.Close()

	events, err := realtime.Subscribe(ctx, rdb)
	if err != nil {
		fmt.Fprintf(os.Stderr, "subscribe: %v\n", err)
		os.Exit(1)
	}

	m := model{events: events, shop: *shop, totals: map[string]*shopTotal{}, started: time.Now()}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "billwatch: %v\n", err)
		os.Exit(1)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
