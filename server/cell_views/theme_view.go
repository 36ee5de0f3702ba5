package cell_views

import (
	"html/template"

	"honeycomb/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// ThemeView is the light/dark toggle button. It also recolors the page background and
// every hexagon when the theme flips.
type ThemeView struct {
	id      string
	updates <-chan []fastview.EleUpdate
	// dark is the theme last sent; nil until the first grid.
	dark *bool
}

func NewThemeView(
	done <-chan struct{},
	grids <-chan Grid,
) (tv *ThemeView) {
	tv = &ThemeView{id: "theme"}
	tv.updates = channerics.Convert(done, grids, tv.onUpdate)
	return
}

func (tv *ThemeView) Updates() <-chan []fastview.EleUpdate {
	return tv.updates
}

func (tv *ThemeView) onUpdate(grid Grid) (ops []fastview.EleUpdate) {
	if tv.dark != nil && *tv.dark == grid.Dark {
		return nil
	}
	dark := grid.Dark
	tv.dark = &dark

	theme := ThemeFor(dark)
	ops = append(ops,
		fastview.EleUpdate{
			EleId: "page",
			Ops:   []fastview.Op{{Key: "style", Value: pageStyle(theme)}},
		},
		fastview.EleUpdate{
			EleId: tv.id + "-toggle",
			Ops: []fastview.Op{
				{Key: "textContent", Value: theme.Toggle},
				{Key: "style", Value: toggleStyle(theme)},
			},
		},
	)
	for _, cell := range grid.Cells {
		ops = append(ops, fastview.EleUpdate{
			EleId: cell.Id + "-hex",
			Ops: []fastview.Op{
				{Key: "fill", Value: theme.CellFill},
				{Key: "stroke", Value: theme.CellStroke},
			},
		})
	}
	return
}

func pageStyle(theme Theme) string {
	return "background-color: " + theme.Background + ";"
}

func toggleStyle(theme Theme) string {
	return "background-color: " + theme.CellFill + ";"
}

// Parse defines the toggle button. The page script sends a theme message on click.
func (tv *ThemeView) Parse(
	t *template.Template,
) (name string, err error) {
	name = tv.id
	_, err = t.Funcs(template.FuncMap{
		"toggleIcon":  func(dark bool) string { return ThemeFor(dark).Toggle },
		"toggleStyle": func(dark bool) template.CSS { return template.CSS(toggleStyle(ThemeFor(dark))) },
	}).Parse(`{{ define "` + name + `" }}
		<button id="` + tv.id + `-toggle" class="toggle" type="button"
			style="{{ toggleStyle .Dark }}">{{ toggleIcon .Dark }}</button>
		{{ end }}`)
	return
}
