package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/vidx/internal/operations"
	"github.com/desertthunder/vidx/internal/shared"
	"github.com/desertthunder/vidx/internal/tasks"
)

const rule = "═══════════════════════════════════════"

// Header renders a title between two rules.
func (p *Palette) Header(title string) string {
	return rule + "\n" + p.Title(title) + "\n" + rule + "\n"
}

// Response renders the outcome of a process or batch run.
func (p *Palette) Response(resp *tasks.Response) string {
	elapsed := shared.FormatMillis(resp.ProcessingTimeMs)
	if resp.Success {
		return fmt.Sprintf("%s %s completed in %s\n  → %s\n", p.OK("✓"), resp.Operation, elapsed, resp.VideoURL)
	}
	return fmt.Sprintf("%s %s failed after %s\n  %s\n", p.Err("✗"), resp.Operation, elapsed, p.Err(resp.Error))
}

// Progress renders one stage update. Done updates render as nothing; the response covers them.
func (p *Palette) Progress(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.FetchSource:
		return "📥 " + u.Message + "\n"
	case tasks.Transform:
		if u.Step == 0 {
			return "🎬 " + u.Message + "\n"
		}
		return "   " + u.Message + "\n"
	case tasks.Publish:
		return "📤 " + u.Message + "\n"
	default:
		return ""
	}
}

// Plan renders compiled steps in run order with their full argument lists.
func (p *Palette) Plan(binary, input string, plan []*operations.Invocation) string {
	var b strings.Builder
	b.WriteString(p.Header("Pipeline for " + input))
	if len(plan) == 0 {
		b.WriteString(p.Help("no operations; the source is returned unchanged") + "\n")
		return b.String()
	}
	for i, inv := range plan {
		fmt.Fprintf(&b, "%d. %s\n   %s %s\n", i+1, p.OK(string(inv.Kind)), binary, strings.Join(inv.Args, " "))
	}
	return b.String()
}

// Bulk renders a bulk run summary followed by its failures.
func (p *Palette) Bulk(res *tasks.BulkResult) string {
	var b strings.Builder
	b.WriteString(p.Header("Bulk run complete"))
	fmt.Fprintf(&b, "Succeeded: %s\n", p.OK(fmt.Sprintf("%d/%d", res.Succeeded, res.Total)))
	if res.Failed > 0 {
		fmt.Fprintf(&b, "Failed:    %s\n", p.Err(fmt.Sprintf("%d", res.Failed)))
		for _, e := range res.Entries {
			if !e.Response.Success {
				fmt.Fprintf(&b, "  - %s: %s\n", e.Source, e.Response.Error)
			}
		}
	}
	if res.ManifestPath != "" {
		fmt.Fprintf(&b, "Manifest:  %s\n", res.ManifestPath)
	}
	return b.String()
}

// Check renders the result of a transcoder probe.
func (p *Palette) Check(binary, version string, err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s is not usable: %v\n%s\n", p.Err("✗"), binary, err,
			p.Help("install ffmpeg or set processing.ffmpeg_path in config.toml"))
	}
	return fmt.Sprintf("%s %s\n  %s\n", p.OK("✓"), binary, version)
}
