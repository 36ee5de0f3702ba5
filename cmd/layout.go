package cmd

import (
	"encoding/json"
	"fmt"

	"honeycomb/honeycomb"
	"honeycomb/layout"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the cell positions of the configured grid",
	RunE:  runLayout,
}

func init() {
	layoutCmd.Flags().String("format", "json", "output format: json or yaml")
	layoutCmd.Flags().Bool("terminal", false, "use the terminal footprint instead of the web one")
	rootCmd.AddCommand(layoutCmd)
}

type cellDoc struct {
	Col  int     `json:"col" yaml:"col"`
	Row  int     `json:"row" yaml:"row"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Size float64 `json:"size" yaml:"size"`
}

type layoutDoc struct {
	Shape  string    `json:"shape" yaml:"shape"`
	Width  float64   `json:"width" yaml:"width"`
	Height float64   `json:"height" yaml:"height"`
	Cells  []cellDoc `json:"cells" yaml:"cells"`
}

func newLayoutDoc(l *layout.Layout) layoutDoc {
	doc := layoutDoc{
		Shape:  l.Shape.String(),
		Width:  l.Width,
		Height: l.Height,
	}
	for _, cl := range l.Cells() {
		doc.Cells = append(doc.Cells, cellDoc{Col: cl.Col, Row: cl.Row, X: cl.X, Y: cl.Y, Size: cl.Size})
	}
	return doc
}

func encodeLayout(l *layout.Layout, format string) ([]byte, error) {
	doc := newLayoutDoc(l)
	switch format {
	case "json":
		return json.MarshalIndent(doc, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(doc)
	}
	return nil, fmt.Errorf("unsupported layout format %q", format)
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fp := cfg.LayoutFootprint()
	if terminal, _ := cmd.Flags().GetBool("terminal"); terminal {
		fp = cfg.TerminalFootprint()
	}
	l, err := layout.Compute(honeycomb.Shape(cfg.Shape), fp)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	out, err := encodeLayout(l, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
