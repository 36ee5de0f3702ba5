package cell_views

import (
	"html/template"
	"math"

	"honeycomb/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// scaleEpsilon is the smallest scale change worth sending; it matches the three
// decimals scaleTransform writes.
const scaleEpsilon = 0.0005

// HoneycombView draws every cell as a hexagon with its icon and keeps each cell's
// scale current. Only cells whose scale changed since the last grid are updated.
type HoneycombView struct {
	id      string
	updates <-chan []fastview.EleUpdate
	// last is only touched by the Convert goroutine.
	last map[string]float64
}

func NewHoneycombView(
	done <-chan struct{},
	grids <-chan Grid,
) (hv *HoneycombView) {
	hv = &HoneycombView{
		id:   "honeycomb",
		last: map[string]float64{},
	}
	hv.updates = channerics.Convert(done, grids, hv.onUpdate)
	return
}

func (hv *HoneycombView) Updates() <-chan []fastview.EleUpdate {
	return hv.updates
}

func (hv *HoneycombView) onUpdate(grid Grid) (ops []fastview.EleUpdate) {
	for _, cell := range grid.Cells {
		last, seen := hv.last[cell.Id]
		if seen && math.Abs(last-cell.Scale) < scaleEpsilon {
			continue
		}
		hv.last[cell.Id] = cell.Scale
		ops = append(ops, fastview.EleUpdate{
			EleId: cell.Id + "-cell",
			Ops: []fastview.Op{
				{
					Key:   "transform",
					Value: scaleTransform(cell.Scale),
				},
			},
		})
	}
	return
}

// Parse defines an svg with one group per cell. The outer group positions the cell;
// the inner "<col>-<row>-cell" group is the one scaled, about the cell's center.
func (hv *HoneycombView) Parse(
	t *template.Template,
) (name string, err error) {
	name = hv.id
	_, err = t.Funcs(template.FuncMap{
		"hexPoints": hexPoints,
		"scale":     scaleTransform,
		"fontSize":  func(size float64) float64 { return size * 0.4 },
		"fill":      func(dark bool) string { return ThemeFor(dark).CellFill },
		"stroke":    func(dark bool) string { return ThemeFor(dark).CellStroke },
	}).Parse(`{{ define "` + name + `" }}
		{{ $dark := .Dark }}
		<svg id="` + hv.id + `" xmlns="http://www.w3.org/2000/svg"
			width="{{ printf "%.0f" .Width }}" height="{{ printf "%.0f" .Height }}"
			viewBox="0 0 {{ printf "%.1f" .Width }} {{ printf "%.1f" .Height }}">
			{{ range .Cells }}
			<g transform="translate({{ printf "%.1f" .CX }} {{ printf "%.1f" .CY }})"
				class="cell" data-col="{{ .Col }}" data-row="{{ .Row }}">
				<g id="{{ .Id }}-cell" transform="{{ scale .Scale }}">
					<polygon id="{{ .Id }}-hex" points="{{ hexPoints .Size }}"
						fill="{{ fill $dark }}" stroke="{{ stroke $dark }}" stroke-width="2" />
					<text text-anchor="middle" dominant-baseline="central"
						font-size="{{ printf "%.0f" (fontSize .Size) }}">{{ .Icon }}</text>
				</g>
			</g>
			{{ end }}
		</svg>
		{{ end }}`)
	return
}
