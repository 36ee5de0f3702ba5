package root_view

import (
	"context"
	"html/template"
	"time"

	"honeycomb/hive"
	"honeycomb/server/cell_views"
	"honeycomb/server/fastview"
)

// RootView is the index page: the container of the view components, the wiring of
// their chans and the websocket bootstrap script.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView builds the page's views over a stream of hive frames. Their updates are
// merged and batched at rate. Everything stops when ctx is done.
func NewRootView(
	ctx context.Context,
	frames <-chan hive.Frame,
	convert func(hive.Frame) cell_views.Grid,
	rate time.Duration,
) (*RootView, error) {
	views, err := fastview.NewViewBuilder[hive.Frame, cell_views.Grid]().
		WithContext(ctx).
		WithModel(frames, convert).
		WithView(func(
			done <-chan struct{},
			grids <-chan cell_views.Grid) fastview.ViewComponent {
			return cell_views.NewHoneycombView(done, grids)
		}).
		WithView(func(
			done <-chan struct{},
			grids <-chan cell_views.Grid) fastview.ViewComponent {
			return cell_views.NewThemeView(done, grids)
		}).
		Build()
	if err != nil {
		return nil, err
	}

	return &RootView{
		views:   views,
		updates: fastview.FanIn(ctx.Done(), views, rate),
	}, nil
}

// Updates returns the page's merged ele-update chan.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse defines the page template, including every child view, and returns its name.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	var bodySpec string
	for _, vc := range rv.views {
		var tname string
		if tname, err = vc.Parse(parent); err != nil {
			return
		}
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	name = "mainpage"
	_, err = parent.Funcs(template.FuncMap{
		"pageBackground": func(dark bool) template.CSS {
			return template.CSS("background-color: " + cell_views.ThemeFor(dark).Background + ";")
		},
	}).Parse(`
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<meta charset="utf-8">
			<meta name="viewport" content="width=device-width, initial-scale=1">
			<link rel="icon" href="data:,">
			<title>honeycomb</title>
			<style>
				html, body { margin: 0; height: 100%; }
				#page {
					display: flex; align-items: center; justify-content: center;
					height: 100%; transition: background-color 0.2s;
				}
				.cell { cursor: pointer; }
				.toggle {
					position: absolute; top: 40px; right: 20px;
					width: 50px; height: 50px; border-radius: 25px; border: none;
					font-size: 22px; cursor: pointer; box-shadow: 0 2px 3px rgba(0, 0, 0, 0.2);
				}
			</style>
		</head>
		<body>
			<div id="page" style="{{ pageBackground .Dark }}">
			` + bodySpec + `
			</div>
			<script>
				const scheme = location.protocol === "https:" ? "wss://" : "ws://";
				const ws = new WebSocket(scheme + location.host + "/ws");
				ws.onopen = function (event) {
					console.log("Web socket opened");
				};
				ws.onerror = function (event) {
					console.log("WebSocket error: ", event);
				};

				// The server pushes element updates; find each element and apply its ops.
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data);
					for (const update of items) {
						const ele = document.getElementById(update.EleId);
						if (!ele) {
							continue;
						}
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value);
							}
						}
					}
				};

				function send(msg) {
					if (ws.readyState === WebSocket.OPEN) {
						ws.send(JSON.stringify(msg));
					}
				}

				for (const cell of document.querySelectorAll(".cell")) {
					cell.addEventListener("click", function () {
						send({
							kind: "tap",
							col: parseInt(cell.dataset.col, 10),
							row: parseInt(cell.dataset.row, 10),
						});
					});
				}
				document.getElementById("theme-toggle").addEventListener("click", function () {
					send({ kind: "theme" });
				});
			</script>
		</body>
	</html>
	{{ end }}
	`)
	return
}
