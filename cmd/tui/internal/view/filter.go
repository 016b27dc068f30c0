package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

type filterState int

const (
	filterStateTimeframe filterState = iota
	filterStateValues
)

// FilterAppliedMsg carries the criteria chosen in the filter view.
type FilterAppliedMsg struct {
	Criteria spend.Criteria
	Label    string
}

// filterSelection holds the form bindings; huh writes through the pointers.
type filterSelection struct {
	accounts   []string
	products   []string
	priceBooks []string
}

// FilterModel narrows the dataset by invoice dates, then by accounts,
// products and price books.
type FilterModel struct {
	ds *spend.Dataset

	state           filterState
	timeframePicker TimeframePicker
	timeframe       TimeframeSelectedMsg

	form      *huh.Form
	selection *filterSelection
}

// NewFilterModel starts a filter over ds with current preselected.
func NewFilterModel(ds *spend.Dataset, current spend.Criteria) FilterModel {
	return FilterModel{
		ds:              ds,
		state:           filterStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeAll),
		selection: &filterSelection{
			accounts:   current.Accounts,
			products:   current.Products,
			priceBooks: current.PriceBooks,
		},
	}
}

func (m FilterModel) Title() string { return "Filter Records" }

func (m FilterModel) ShortHelp() string {
	if m.state == filterStateValues {
		return "Space: toggle | /: search | Enter: next | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m FilterModel) Init() tea.Cmd {
	return nil
}

func (m FilterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.timeframe = tfMsg
		m.form = m.buildForm()
		m.state = filterStateValues

		return m, m.form.Init()
	}

	switch m.state {
	case filterStateTimeframe:
		return m.updateTimeframe(msg)
	case filterStateValues:
		return m.updateValues(msg)
	}

	return m, nil
}

func (m FilterModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m FilterModel) updateValues(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = filterStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	applied := m.applied()

	return m, func() tea.Msg { return applied }
}

func (m FilterModel) applied() FilterAppliedMsg {
	c := m.timeframe.Apply(spend.Criteria{
		Accounts:   m.selection.accounts,
		Products:   m.selection.products,
		PriceBooks: m.selection.priceBooks,
	})

	return FilterAppliedMsg{Criteria: c, Label: describe(c, m.timeframe)}
}

func (m FilterModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Key("accounts").
				Title("Accounts").
				Description("None selected keeps every account").
				Options(huh.NewOptions(m.ds.Accounts()...)...).
				Height(8).
				Value(&m.selection.accounts),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Key("products").
				Title("Products").
				Options(huh.NewOptions(m.ds.Products()...)...).
				Height(10).
				Value(&m.selection.products),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Key("price_books").
				Title("Price Books").
				Options(huh.NewOptions(m.ds.PriceBooks()...)...).
				Height(6).
				Value(&m.selection.priceBooks),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m FilterModel) View() string {
	switch m.state {
	case filterStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	case filterStateValues:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Invoice dates: %s\n\n%s", accentStyle.Render(m.timeframe.Label()), m.form.View()),
		)
	}

	return ""
}

// describe summarises c in one line for the menu header.
func describe(c spend.Criteria, tf TimeframeSelectedMsg) string {
	if c.IsZero() {
		return "none"
	}

	var parts []string

	if c.From != nil || c.To != nil {
		parts = append(parts, tf.Label())
	}

	for _, set := range []struct {
		name   string
		values []string
	}{
		{"accounts", c.Accounts},
		{"products", c.Products},
		{"price books", c.PriceBooks},
	} {
		switch len(set.values) {
		case 0:
		case 1:
			parts = append(parts, set.values[0])
		default:
			parts = append(parts, fmt.Sprintf("%d %s", len(set.values), set.name))
		}
	}

	return strings.Join(parts, ", ")
}
