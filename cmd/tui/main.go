package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/spendviz/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/spendviz/internal/config"
	"github.com/MrJamesThe3rd/spendviz/internal/report"
	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

type model struct {
	reportService *report.Service
	exportDir     string

	ds          *spend.Dataset
	filtered    *spend.Dataset
	criteria    spend.Criteria
	filterLabel string

	currentView View

	reportView view.ReportModel
	filterView view.FilterModel
	exportView view.ExportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewReport View = 1
	ViewFilter View = 2
	ViewExport View = 3
)

// menuReports maps the menu keys to reports.
var menuReports = map[string]report.Kind{
	"1": report.KindByAccount,
	"2": report.KindByProduct,
	"3": report.KindByPriceBook,
	"4": report.KindMonthOverMonth,
	"5": report.KindYearToDate,
	"6": report.KindMonthlyByProduct,
}

func initialModel(cfg *config.Config, ds *spend.Dataset) model {
	return model{
		reportService: report.NewService(cfg.Report.TopProducts),
		exportDir:     cfg.Report.ExportDir,
		ds:            ds,
		filtered:      ds,
		filterLabel:   "none",
		currentView:   ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			if kind, ok := menuReports[msg.String()]; ok {
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.reportService, m.filtered, kind, time.Now().Year(), m.exportDir)

				return m, m.reportView.Init()
			}

			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "f":
				m.currentView = ViewFilter
				m.filterView = view.NewFilterModel(m.ds, m.criteria)

				return m, m.filterView.Init()
			case "x":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.reportService, m.filtered, m.exportDir)

				return m, m.exportView.Init()
			case "c":
				m.criteria = spend.Criteria{}
				m.filtered = m.ds
				m.filterLabel = "none"

				return m, nil
			}
		}
	case view.FilterAppliedMsg:
		m.criteria = msg.Criteria
		m.filtered = m.ds.Filter(msg.Criteria)
		m.filterLabel = msg.Label
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	case ViewFilter:
		var newModel tea.Model
		newModel, cmd = m.filterView.Update(msg)
		m.filterView = newModel.(view.FilterModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return m.menu()
	case ViewReport:
		current = m.reportView
	case ViewFilter:
		current = m.filterView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.ShortHelp())

	return current.View() + "\n" + help
}

func (m model) menu() string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Spendviz"))
	sb.WriteString("\n\n")
	sb.WriteString(report.Summary(m.filtered))
	sb.WriteString(fmt.Sprintf("Filters: %s\n\n", m.filterLabel))
	sb.WriteString("1. Total spend by account\n")
	sb.WriteString(fmt.Sprintf("2. Top %d products by spend\n", m.reportService.TopProducts()))
	sb.WriteString("3. Total spend by price book\n")
	sb.WriteString("4. Month-over-month spend by account\n")
	sb.WriteString("5. Year-to-date summary\n")
	sb.WriteString("6. Monthly spend by product\n\n")
	sb.WriteString("f. Filter records\n")
	sb.WriteString("c. Clear filters\n")
	sb.WriteString("x. Export filtered CSV\n")
	sb.WriteString("q. Quit")

	return lipgloss.NewStyle().Padding(2).Render(sb.String())
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	path := cfg.Report.Source
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	ds, err := spend.LoadFile(path)
	if err != nil {
		if errors.Is(err, spend.ErrSourceNotFound) {
			fmt.Printf("File not found: %s\n", path)
			os.Exit(1)
		}

		slog.Error("failed to load spend data", "path", path, "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(cfg, ds), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
