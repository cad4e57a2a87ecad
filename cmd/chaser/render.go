package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/chaser/internal"
	"github.com/starford/chaser/internal/models"
	"github.com/starford/chaser/internal/targetfile"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func mark(ok bool) string {
	if ok {
		return okStyle.Render("✓")
	}
	return badStyle.Render("✗")
}

func presence(ok bool) string {
	if ok {
		return okStyle.Render("exists")
	}
	return badStyle.Render("missing")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func renderWatchPaths(cfg *internal.Config) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Watch paths:") + "\n")
	if len(cfg.Sync.WatchPaths) == 0 {
		b.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	for _, p := range cfg.Sync.WatchPaths {
		fmt.Fprintf(&b, "  %s %s\n", mark(exists(p)), p)
	}
	fmt.Fprintf(&b, "Recursive: %t\n", cfg.Sync.Recursive)
	fmt.Fprintf(&b, "Ignore patterns: %s\n", strings.Join(cfg.Sync.IgnorePatterns, ", "))
	return b.String()
}

func renderTargetList(locs []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Target files:") + "\n")
	if len(locs) == 0 {
		b.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	for _, loc := range locs {
		format := "?"
		if f, err := targetfile.FormatFromPath(loc); err == nil {
			format = f.String()
		}
		fmt.Fprintf(&b, "  %s %s %s\n", mark(exists(loc)), loc, dimStyle.Render("("+format+")"))
	}
	return b.String()
}

func renderStatus(ov models.Overview) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Watch roots:") + "\n")
	for _, r := range ov.Roots {
		fmt.Fprintf(&b, "  %s %s\n", mark(r.Exists), r.Path)
	}

	fmt.Fprintf(&b, "\n%s\n", titleStyle.Render(fmt.Sprintf("Tracked paths (%d):", len(ov.Paths))))
	if len(ov.Paths) == 0 {
		b.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	for _, p := range ov.Paths {
		fmt.Fprintf(&b, "  %s [%s]\n", p.Path, presence(p.Exists))
		for _, t := range p.Targets {
			fmt.Fprintf(&b, "    %s %s\n", dimStyle.Render("└─"), t)
		}
	}
	return b.String()
}

func renderSummary(ov models.Overview) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Targets loaded:") + "\n")
	for _, t := range ov.Targets {
		fmt.Fprintf(&b, "  %s %s: %d entries, %d tracked\n", t.Format, t.Location, t.Entries, t.Tracked)
	}
	missing := 0
	for _, p := range ov.Paths {
		if !p.Exists {
			missing++
		}
	}
	fmt.Fprintf(&b, "Tracking %d paths (%d missing)\n", len(ov.Paths), missing)
	return b.String()
}

func renderSyncResult(res models.SyncResult) string {
	if !res.Found {
		return fmt.Sprintf("%s is not tracked; nothing changed\n", res.OldPath)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s -> %s (%d mappings)\n", okStyle.Render("Renamed"), res.OldPath, res.NewPath, res.Mappings)
	for _, f := range res.Files {
		fmt.Fprintf(&b, "  %s updated %s\n", mark(true), f)
	}
	return b.String()
}
