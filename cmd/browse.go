package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hacheraw/hytale-server-manager/config"
	"github.com/hacheraw/hytale-server-manager/db"
	"github.com/hacheraw/hytale-server-manager/logger"
	"github.com/hacheraw/hytale-server-manager/provider"
	"github.com/hacheraw/hytale-server-manager/ui"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Search the configured marketplaces interactively",
	Long: `Launch an interactive TUI that searches every configured marketplace
and installs the selected mod into the server directory.`,
	Run: func(_ *cobra.Command, _ []string) {
		runBrowse()
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

type searchResultsMsg struct {
	projects []provider.Project
	total    int64
}

type installDoneMsg struct {
	message string
}

type browseErrorMsg string

// browseModel is the state of the browse TUI.
type browseModel struct {
	cfg     config.Config
	service *provider.Service

	input   textinput.Model
	spinner spinner.Model

	projects      []provider.Project
	total         int64
	selectedIndex int
	searching     bool
	installing    bool
	message       string
	error         string
	width         int
	height        int
}

func initialBrowseModel(cfg config.Config, service *provider.Service) browseModel {
	input := textinput.New()
	input.Placeholder = "search mods..."
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return browseModel{
		cfg:     cfg,
		service: service,
		input:   input,
		spinner: s,
	}
}

func (m browseModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case searchResultsMsg:
		m.searching = false
		m.projects = msg.projects
		m.total = msg.total
		m.selectedIndex = 0
		m.error = ""
	case installDoneMsg:
		m.installing = false
		m.message = msg.message
	case browseErrorMsg:
		m.searching = false
		m.installing = false
		m.error = string(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.searching || m.installing {
			return m, cmd
		}
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m browseModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		if m.input.Focused() {
			m.input.Blur()
			m.searching = true
			m.message = ""
			return m, tea.Batch(m.spinner.Tick, m.search(m.input.Value()))
		}
		if len(m.projects) > 0 && !m.installing {
			m.installing = true
			return m, tea.Batch(m.spinner.Tick, m.install(m.projects[m.selectedIndex]))
		}
	case "/":
		if !m.input.Focused() {
			m.input.Focus()
			return m, textinput.Blink
		}
	case "up", "k":
		if !m.input.Focused() && m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case "down", "j":
		if !m.input.Focused() && m.selectedIndex < len(m.projects)-1 {
			m.selectedIndex++
		}
	case "q":
		if !m.input.Focused() {
			return m, tea.Quit
		}
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// search fans the query out across every configured provider.
func (m browseModel) search(query string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		resp := service.SearchAll(context.Background(), provider.SearchParams{
			Query:    query,
			Page:     1,
			PageSize: 25,
		})

		var projects []provider.Project
		for _, result := range resp.Results {
			projects = append(projects, result.Projects...)
		}
		return searchResultsMsg{projects: projects, total: resp.TotalAcrossProviders}
	}
}

// install downloads the project's latest version into the server directory.
func (m browseModel) install(p provider.Project) tea.Cmd {
	service := m.service
	cfg := m.cfg
	return func() tea.Msg {
		stream, meta, err := service.DownloadForInstallation(context.Background(), p.ProviderID, p.ID, "")
		if err != nil {
			return browseErrorMsg(fmt.Sprintf("download failed: %v", err))
		}
		defer stream.Close()

		fileName := meta.FileName
		if fileName == "" {
			fileName = meta.ProjectID + "-" + meta.VersionID + ".zip"
		}
		targetPath := filepath.Join(cfg.HytaleDir, getTargetSubDir(meta.Classification), fileName)

		if err := writeStream(targetPath, stream); err != nil {
			return browseErrorMsg(fmt.Sprintf("write failed: %v", err))
		}

		record := db.InstalledMod{
			ProviderID:     meta.ProviderID,
			ProjectID:      meta.ProjectID,
			ProjectTitle:   meta.ProjectTitle,
			IconURL:        meta.IconURL,
			VersionID:      meta.VersionID,
			VersionName:    meta.VersionName,
			Classification: string(meta.Classification),
			FileName:       fileName,
			FileSize:       meta.FileSize,
			InstallPath:    targetPath,
		}
		if err := upsertInstalledMod(record); err != nil {
			logger.Log.Warnw("Failed to save installed mod to database", zap.Error(err))
		}

		return installDoneMsg{message: fmt.Sprintf("Installed %s %s", meta.ProjectTitle, meta.VersionName)}
	}
}

func (m browseModel) View() string {
	view := ui.TitleStyle.Render("Hytale mod marketplaces") + "\n\n"
	view += m.input.View() + "\n\n"

	switch {
	case m.searching:
		view += m.spinner.View() + " searching...\n"
	case m.installing:
		view += m.spinner.View() + " installing...\n"
	case len(m.projects) == 0:
		view += ui.DimStyle.Render("No results. Type a query and press enter.") + "\n"
	default:
		view += ui.DimStyle.Render(fmt.Sprintf("%d results across providers", m.total)) + "\n\n"
		for i, p := range m.projects {
			line := fmt.Sprintf("%s %s  %s", ui.ProviderBadge(p.ProviderID), p.Title, ui.DimStyle.Render(p.ShortDescription))
			if i == m.selectedIndex {
				line = ui.SelectedStyle.Render("> ") + line
			} else {
				line = "  " + line
			}
			view += line + "\n"
		}
	}

	if m.error != "" {
		view += "\n" + ui.ErrorStyle.Render(m.error) + "\n"
	}
	if m.message != "" {
		view += "\n" + ui.MessageStyle.Render(m.message) + "\n"
	}

	view += "\n" + ui.DimStyle.Render("enter: search/install  /: edit query  j/k: move  q: quit")
	return view
}

func runBrowse() {
	cfg, service := bootstrap(".")

	p := tea.NewProgram(initialBrowseModel(cfg, service), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Log.Errorw("TUI crashed", zap.Error(err))
		os.Exit(1)
	}
}
