package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

var pageTemplates = template.Must(template.New("page").Parse(pageTemplate))

// cytoscapeLayouts maps layout flag values to Cytoscape.js layout names.
var cytoscapeLayouts = map[string]string{
	"force":  "cose",
	"circle": "circle",
	"grid":   "grid",
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", or "grid"
	Title  string // Page title
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout: "force",
		Title:  "Citation Graph",
	}
}

type pageData struct {
	Title     string
	Elements  template.JS
	Layout    string
	NodeCount int
	EdgeCount int
}

// GenerateHTML renders a standalone page. Cytoscape.js is loaded from a CDN.
// An empty graph renders a short page explaining how to build one.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if opts.Layout == "" {
		opts.Layout = "force"
	}
	layout, ok := cytoscapeLayouts[opts.Layout]
	if !ok {
		return "", fmt.Errorf("invalid layout %q: must be force, circle, or grid", opts.Layout)
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}

	data := pageData{
		Title:     opts.Title,
		Layout:    layout,
		NodeCount: len(graph.Nodes),
		EdgeCount: len(graph.Edges),
	}
	name := "graph"
	if graph.IsEmpty() {
		name = "empty"
	} else {
		elements, err := graph.ToCytoscapeJSON()
		if err != nil {
			return "", err
		}
		data.Elements = template.JS(elements)
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s page: %w", name, err)
	}
	return buf.String(), nil
}

const pageTemplate = `
{{define "head"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    html, body { margin: 0; height: 100%; background: #fafafa;
      font: 13px -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; }
    #cy { position: absolute; inset: 0; }
    .panel { position: absolute; background: rgba(255,255,255,0.95); border: 1px solid #ddd;
      border-radius: 4px; padding: 6px 10px; color: #444; }
    #bar { top: 10px; left: 10px; }
    #bar input { width: 220px; margin-left: 8px; }
    #info { right: 10px; bottom: 10px; max-width: 340px; display: none; }
    #info h3 { margin: 0 0 4px; font-size: 13px; }
    #info .meta { color: #777; font-size: 11px; }
    .empty { display: flex; height: 100%; align-items: center; justify-content: center; color: #666; }
    code { background: #eee; padding: 1px 5px; border-radius: 3px; }
  </style>
{{end}}

{{define "empty"}}{{template "head" .}}</head>
<body>
  <div class="empty">
    <div>
      <h2>No graph data</h2>
      <p>Build a graph first with <code>hepgraph build &lt;arxiv-id&gt;</code></p>
    </div>
  </div>
</body>
</html>
{{end}}

{{define "graph"}}{{template "head" .}}  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
</head>
<body>
  <div id="cy"></div>
  <div id="bar" class="panel">
    {{.NodeCount}} records, {{.EdgeCount}} citations
    <input id="filter" type="search" placeholder="filter by title or record id">
  </div>
  <div id="info" class="panel"></div>
  <script>
    const cy = cytoscape({
      container: document.getElementById("cy"),
      elements: {{.Elements}},
      layout: { name: {{.Layout}}, animate: false, nodeRepulsion: 9000, idealEdgeLength: 90 },
      style: [
        { selector: "node", style: {
            "width": "data(size)", "height": "data(size)",
            "background-color": "mapData(heat, 0, 1, #9ECAE1, #D7301F)",
            "label": "data(label)", "font-size": "9px", "color": "#333",
            "text-valign": "bottom", "text-margin-y": "4px" } },
        { selector: "node[type = 'seed']", style: {
            "shape": "star", "border-width": 2, "border-color": "#333", "font-weight": "bold" } },
        { selector: "edge", style: {
            "width": 1.2, "line-color": "#B0BEC5", "curve-style": "bezier",
            "target-arrow-shape": "triangle", "target-arrow-color": "#B0BEC5" } },
        { selector: ".faded", style: { "opacity": 0.15 } },
        { selector: "node.picked", style: { "border-width": 3, "border-color": "#E53935" } }
      ]
    });

    const info = document.getElementById("info");

    function text(s) {
      const span = document.createElement("span");
      span.textContent = s || "";
      return span.innerHTML;
    }

    function focus(node) {
      cy.elements().removeClass("faded picked");
      const near = node.closedNeighborhood();
      cy.elements().difference(near).addClass("faded");
      node.addClass("picked");

      const d = node.data();
      info.innerHTML =
        "<h3>" + text(d.title) + "</h3>" +
        "<div class=\"meta\">" + d.type + " " + text(d.id) + "</div>" +
        "<div>cited by " + d.parentCount + " in graph, cites " + node.outgoers("node").length + "</div>" +
        "<div>centrality " + d.centrality.toFixed(4) + "</div>" +
        "<a target=\"_blank\" href=\"https://inspirehep.net/literature/" + encodeURIComponent(d.id) + "\">open on INSPIRE</a>";
      info.style.display = "block";
    }

    function reset() {
      cy.elements().removeClass("faded picked");
      info.style.display = "none";
    }

    cy.on("tap", "node", evt => focus(evt.target));
    cy.on("tap", evt => { if (evt.target === cy) reset(); });

    document.getElementById("filter").addEventListener("input", evt => {
      const q = evt.target.value.trim().toLowerCase();
      cy.nodes().forEach(n => {
        const hit = !q || n.data("id").toLowerCase().includes(q) ||
          (n.data("title") || "").toLowerCase().includes(q);
        n.toggleClass("faded", !hit);
      });
    });
  </script>
</body>
</html>
{{end}}
`
