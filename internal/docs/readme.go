// Package docs renders the command reference into README.md.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"

	"github.com/keshon/musicbot/internal/command"
)

// CommandTable renders descriptors as a markdown table.
func CommandTable(prefix string, cmds []command.Descriptor) string {
	tw := table.NewWriter()
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Command", "Aliases", "Usage", "Description"})
	for _, d := range cmds {
		aliases := lo.Map(d.Aliases, func(a string, _ int) string { return "`" + prefix + a + "`" })
		tw.AppendRow(table.Row{
			d.Name,
			strings.Join(aliases, ", "),
			fmt.Sprintf("`%s%s`", prefix, d.Usage),
			d.Description,
		})
	}
	return tw.RenderMarkdown()
}

// Render executes the template read from tmpl with the command table.
func Render(w io.Writer, tmpl io.Reader, prefix string, cmds []command.Descriptor) error {
	src, err := io.ReadAll(tmpl)
	if err != nil {
		return err
	}
	t, err := template.New("readme").Parse(string(src))
	if err != nil {
		return fmt.Errorf("parse readme template: %w", err)
	}
	return t.Execute(w, struct {
		Prefix   string
		Commands string
	}{prefix, CommandTable(prefix, cmds)})
}

// UpdateReadme regenerates outPath from tmplPath.
func UpdateReadme(tmplPath, outPath, prefix string, cmds []command.Descriptor) error {
	f, err := os.Open(tmplPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := Render(&buf, f, prefix, cmds); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}
