package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DesignSystem is the product's UI reference: the navigation structure,
// layout patterns, component vocabulary, and status color coding that
// generated designs must follow.
type DesignSystem struct {
	Navigation struct {
		TopBar         []string `yaml:"top_bar"`
		Sidebar        []string `yaml:"sidebar"`
		ContextToolbar []string `yaml:"context_toolbar"`
	} `yaml:"navigation"`
	Layouts     map[string]string `yaml:"layouts"`
	Components  []string          `yaml:"components"`
	Roles       []string          `yaml:"roles"`
	ColorCoding map[string]string `yaml:"color_coding"`
}

// DefaultDesignSystem returns the reference used when no
// design-system.yaml exists in the knowledge base.
func DefaultDesignSystem() DesignSystem {
	var ds DesignSystem
	ds.Navigation.TopBar = []string{"Global Search", "Notifications", "User Profile Menu"}
	ds.Navigation.Sidebar = []string{"Dashboard", "Requests", "Reports", "Settings", "Profile"}
	ds.Navigation.ContextToolbar = []string{"Quick Actions", "Filters", "Sorting", "Export"}
	ds.Layouts = map[string]string{
		"dual-pane":  "Left pane (statistics/data) + right pane (visualization)",
		"data-grid":  "Searchable table with filters, sorting, pagination, export",
		"form":       "Multi-field form with validation, sections, submit/cancel",
		"full-width": "Single content area with toolbar",
	}
	ds.Components = []string{
		"Statistics Cards", "Data Table with Sorting & Filtering",
		"Calendar Grid", "Modal Dialogs (Confirm, Edit, Create)",
		"Toast Notifications", "Breadcrumb Navigation", "Tab Navigation",
		"Status Badges", "Form Builder",
	}
	ds.Roles = []string{"Owner", "Admin", "Manager"}
	ds.ColorCoding = map[string]string{
		"success": "green",
		"warning": "orange",
		"error":   "red",
		"info":    "blue",
	}
	return ds
}

// loadDesignSystem reads design-system.yaml from the knowledge base dir.
// A missing file yields the default reference.
func loadDesignSystem(baseDir string) (DesignSystem, error) {
	path := filepath.Join(baseDir, "design-system.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDesignSystem(), nil
		}
		return DesignSystem{}, fmt.Errorf("read design system: %w", err)
	}

	var ds DesignSystem
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return DesignSystem{}, fmt.Errorf("parse design system: %w", err)
	}
	return ds, nil
}

// Summary renders a compact text form of the design system for LLM and
// generation prompts.
func (ds DesignSystem) Summary() string {
	var sb strings.Builder

	sb.WriteString("# Design System\n\n")
	sb.WriteString("## Navigation\n")
	sb.WriteString("- Top Bar: " + strings.Join(ds.Navigation.TopBar, ", ") + "\n")
	sb.WriteString("- Sidebar: " + strings.Join(ds.Navigation.Sidebar, ", ") + "\n")
	sb.WriteString("- Context Toolbar: " + strings.Join(ds.Navigation.ContextToolbar, ", ") + "\n")

	sb.WriteString("\n## Layouts\n")
	for _, name := range sortedKeys(ds.Layouts) {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", name, ds.Layouts[name]))
	}

	sb.WriteString("\n## UI Components\n")
	for _, c := range ds.Components {
		sb.WriteString("- " + c + "\n")
	}

	sb.WriteString("\n## Roles: " + strings.Join(ds.Roles, ", ") + "\n")

	sb.WriteString("\n## Status Color Coding\n")
	for _, name := range sortedKeys(ds.ColorCoding) {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", name, ds.ColorCoding[name]))
	}

	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
