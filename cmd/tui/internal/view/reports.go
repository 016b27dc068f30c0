package view

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendviz/internal/report"
	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

type reportState int

const (
	reportStateBrowse reportState = iota
	reportStateExportForm
	reportStateExporting
)

// exportSelection holds the export prompt bindings.
type exportSelection struct {
	confirm bool
	name    string
}

// ReportModel shows one named report as a table and a bar chart and offers
// to export it.
type ReportModel struct {
	svc       *report.Service
	ds        *spend.Dataset
	kind      report.Kind
	exportDir string

	rep      *report.Report
	year     int
	years    []int
	chartIdx int

	state     reportState
	table     table.Model
	form      *huh.Form
	selection *exportSelection
	spinner   spinner.Model

	status string
	err    error
}

// NewReportModel builds the report of kind over ds. year is the initial
// year of the year-to-date summary.
func NewReportModel(svc *report.Service, ds *spend.Dataset, kind report.Kind, year int, exportDir string) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	years := ds.Years()
	if !slices.Contains(years, year) {
		years = append(years, year)
		slices.Sort(years)
	}

	m := ReportModel{
		svc:       svc,
		ds:        ds,
		kind:      kind,
		exportDir: exportDir,
		year:      year,
		years:     years,
		spinner:   s,
		selection: &exportSelection{},
	}
	m.build()

	return m
}

func (m ReportModel) Title() string {
	if m.rep == nil {
		return string(m.kind)
	}

	return m.rep.Title
}

func (m ReportModel) ShortHelp() string {
	switch m.state {
	case reportStateExportForm:
		return "Enter: confirm | Esc: cancel"
	case reportStateExporting:
		return "Exporting..."
	}

	help := "Esc: back | e: export"

	switch {
	case m.kind == report.KindYearToDate:
		help += " | ←/→: year"
	case len(m.charts()) > 1:
		help += " | ←/→: account"
	}

	return help
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m *ReportModel) build() {
	m.rep, m.err = m.svc.Build(m.ds, m.kind, report.Params{Year: m.year})
	m.chartIdx = 0
	m.table = newTable(m.currentTable())
}

func (m ReportModel) charts() []report.Chart {
	if m.rep == nil {
		return nil
	}

	return m.rep.Charts
}

func (m ReportModel) currentChart() (report.Chart, bool) {
	charts := m.charts()
	if m.chartIdx >= len(charts) {
		return report.Chart{}, false
	}

	return charts[m.chartIdx], true
}

func (m ReportModel) currentTable() tableData {
	if m.rep == nil {
		return tableData{}
	}

	if m.rep.View.Len() > 0 {
		return viewData(m.rep.View)
	}

	if c, ok := m.currentChart(); ok && !c.Table.Empty() {
		return pivotData(c.Table)
	}

	return pivotData(m.rep.Table)
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if done, ok := msg.(reportExportedMsg); ok {
		m.state = reportStateBrowse
		m.table.Focus()

		if done.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Export failed: %v", done.err))
			return m, nil
		}

		m.status = "Saved " + done.path

		return m, nil
	}

	switch m.state {
	case reportStateBrowse:
		return m.updateBrowse(msg)
	case reportStateExportForm:
		return m.updateExportForm(msg)
	case reportStateExporting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ReportModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.step(-1)
			return m, nil
		case "right", "l":
			m.step(1)
			return m, nil
		case "e":
			return m.enterExport()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

// step moves to the previous or next year of the summary, or to the
// previous or next chart of a per-account report.
func (m *ReportModel) step(delta int) {
	if m.kind == report.KindYearToDate {
		i := slices.Index(m.years, m.year) + delta
		if i < 0 || i >= len(m.years) {
			return
		}

		m.year = m.years[i]
		m.status = ""
		m.build()

		return
	}

	i := m.chartIdx + delta
	if i < 0 || i >= len(m.charts()) {
		return
	}

	m.chartIdx = i
	m.status = ""
	m.table = newTable(m.currentTable())
}

func (m ReportModel) enterExport() (tea.Model, tea.Cmd) {
	c, ok := m.currentChart()
	if !ok {
		m.status = "Nothing to export."
		return m, nil
	}

	what := "chart"
	if m.kind == report.KindYearToDate {
		what = "table"
	}

	m.selection.confirm = true
	m.selection.name = c.Name

	input := huh.NewInput().
		Key("name").
		Title("Filename").
		Description("Saved into " + m.exportDir).
		Value(&m.selection.name)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Export this %s?", what)).
				Value(&m.selection.confirm),
		),
		huh.NewGroup(input).WithHideFunc(func() bool { return !m.selection.confirm }),
	).WithWidth(50).WithShowHelp(false)

	m.state = reportStateExportForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m ReportModel) updateExportForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = reportStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.selection.confirm {
		m.state = reportStateBrowse
		m.status = "Export skipped."
		m.table.Focus()

		return m, nil
	}

	c, _ := m.currentChart()
	m.state = reportStateExporting

	return m, tea.Batch(m.spinner.Tick, m.exportCmd(c, m.selection.name))
}

type reportExportedMsg struct {
	path string
	err  error
}

func (m ReportModel) exportCmd(c report.Chart, name string) tea.Cmd {
	svc, dir, kind := m.svc, m.exportDir, m.kind
	name = cmp.Or(strings.TrimSpace(name), c.Name)

	return func() tea.Msg {
		var (
			path string
			err  error
		)

		if kind == report.KindYearToDate {
			path, err = svc.ExportTable(dir, name, c.Title, c.Table)
		} else {
			path, err = svc.ExportChart(dir, name, c)
		}

		return reportExportedMsg{path: path, err: err}
	}
}

func (m ReportModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	title := lipgloss.NewStyle().Bold(true).Render(m.Title())

	if c, ok := m.currentChart(); ok && len(m.charts()) > 1 {
		title += faintStyle.Render(fmt.Sprintf("  %s (%d/%d)", c.Account, m.chartIdx+1, len(m.charts())))
	}

	if m.rep == nil || m.rep.Empty() {
		return lipgloss.NewStyle().Padding(1).Render(title + "\n\nNo records match the current filters.")
	}

	data := m.currentTable()

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(title),
		tableView,
		"",
		Bars(data.labels, data.totals),
	)

	switch m.state {
	case reportStateExportForm:
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	case reportStateExporting:
		content += "\n\n" + m.spinner.View() + " Exporting..."
	}

	if m.status != "" {
		content += "\n\n" + faintStyle.Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// tableData is a report flattened for the table and bar views.
type tableData struct {
	header []string
	rows   [][]string
	labels []string
	totals []decimal.Decimal
}

func viewData(v spend.View) tableData {
	label := "Key"
	if len(v.Fields) > 0 {
		label = v.Fields[0].Label()
	}

	d := tableData{header: []string{label, "Total spend", "Lines"}}

	for _, g := range v.Groups {
		d.rows = append(d.rows, []string{g.Label(), report.FormatAmount(g.Sum), strconv.Itoa(g.Count)})
		d.labels = append(d.labels, g.Label())
		d.totals = append(d.totals, g.Sum)
	}

	return d
}

func pivotData(t spend.Table) tableData {
	d := tableData{header: append([]string{t.RowField.Label()}, t.Cols...)}
	d.header = append(d.header, "Total")

	rowTotals := t.RowTotals()

	for i, key := range t.Rows {
		row := []string{key}
		for _, v := range t.Values[i] {
			row = append(row, report.FormatAmount(v))
		}

		d.rows = append(d.rows, append(row, report.FormatAmount(rowTotals[i])))
		d.labels = append(d.labels, key)
		d.totals = append(d.totals, rowTotals[i])
	}

	return d
}

func newTable(d tableData) table.Model {
	columns := make([]table.Column, len(d.header))
	for i, h := range d.header {
		width := len([]rune(h))
		for _, row := range d.rows {
			width = max(width, len([]rune(row[i])))
		}

		columns[i] = table.Column{Title: h, Width: min(width+2, 32)}
	}

	rows := make([]table.Row, 0, len(d.rows))
	for _, r := range d.rows {
		rows = append(rows, table.Row(r))
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(max(len(rows), 1), 12)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}
