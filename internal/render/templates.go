package render

// docTmpl is the entire self-contained document: styles, the SVG chart, the
// exception panel and the interaction script. Bar and tick coordinates are
// computed server-side; the script only re-lays rows out when a stream is
// expanded or collapsed.
const docTmpl = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:ui-sans-serif,system-ui,-apple-system,"Segoe UI",Roboto,Helvetica,Arial,sans-serif;margin:16px;color:#0f172a}
h1{font-size:1.1rem;margin:0 0 10px}
.meta{margin:0 0 6px;color:#475569;font-size:.92rem}
.meta.dim{color:#94a3b8;font-size:.85rem}
.chart-wrap{border:1px solid #e2e8f0;border-radius:8px;padding:12px;overflow-x:auto;background:#fff;margin-top:10px}
svg{min-width:{{.Width}}px}
.tick{font-size:10px;fill:#64748b}
.label{font-size:11px;fill:#1f2937}
.summary-row{cursor:pointer}
.summary-row:focus{outline:none}
.summary-label{font-weight:600}
.summary-row.active .summary-label{fill:#0f172a;text-decoration:underline}
.exc{border:1px solid #fecaca;border-radius:8px;margin-top:16px;background:#fff}
.exc-hdr{padding:8px 12px;border-bottom:1px solid #fecaca;font-size:.8rem;font-weight:600;color:#991b1b;text-transform:uppercase;letter-spacing:.05em}
.exc-item{padding:10px 12px;border-bottom:1px solid #fee2e2}
.exc-item:last-child{border-bottom:none}
.exc-name{font-weight:600;font-size:.9rem;margin-right:8px}
.exc-copy{border:1px solid #e2e8f0;background:#f8fafc;border-radius:4px;padding:2px 10px;font-size:.75rem;cursor:pointer;color:#0f172a}
.exc-copy:hover{background:#f1f5f9}
.exc-text{background:#fef2f2;border-radius:6px;padding:8px 10px;margin:8px 0 0;font-size:.8rem;white-space:pre-wrap;word-break:break-word;color:#7f1d1d}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.Meta}}</p>
{{if .Synthetic}}<p class="meta dim">No run date found in the log; day numbers are relative to the first line.</p>{{end}}
<div class="chart-wrap">
<svg id="gantt" width="{{.Width}}" height="{{.Height}}" role="img" aria-label="Chunk Gantt chart">
<rect x="0" y="0" width="100%" height="100%" fill="white"/>
{{range .Ticks}}<line class="grid-tick" x1="{{printf "%.2f" .X}}" y1="{{$.TickTop}}" x2="{{printf "%.2f" .X}}" y2="{{$.TickBottom}}" stroke="#e5e7eb" stroke-width="1"/><text x="{{printf "%.2f" .X}}" y="{{$.TickLabelY}}" class="tick" text-anchor="middle">{{.Label}}</text>
{{end}}
{{range .Rows}}{{if .Summary}}<g class="row summary-row" data-row-type="summary" data-stream="{{.Stream}}" tabindex="0" role="button"><text x="{{$.LabelX}}" y="{{$.LabelY}}" class="label summary-label" text-anchor="end">{{.Label}}</text><rect x="{{printf "%.2f" .X}}" y="0" width="{{printf "%.2f" .W}}" height="{{$.BarH}}" rx="3" ry="3" fill="{{.Fill}}" opacity="0.86"><title>{{.Tooltip}}</title></rect></g>
{{else}}<g class="row chunk-row" data-row-type="chunk" data-stream="{{.Stream}}" style="display:none"><text x="{{$.LabelX}}" y="{{$.LabelY}}" class="label" text-anchor="end">{{.Label}}</text><rect x="{{printf "%.2f" .X}}" y="0" width="{{printf "%.2f" .W}}" height="{{$.BarH}}" rx="3" ry="3" fill="{{.Fill}}" opacity="0.58"><title>{{.Tooltip}}</title></rect></g>
{{end}}{{end}}
</svg>
</div>
{{if .Exceptions}}<div class="exc">
<div class="exc-hdr">Exceptions</div>
{{range .Exceptions}}<div class="exc-item">
<span class="exc-name">{{.Stream}}</span><button type="button" class="exc-copy">Copy</button>
<pre class="exc-text">{{.Text}}</pre>
</div>
{{end}}</div>
{{end}}
<script>window.__TIMELINE__ = {{.Payload}};</script>
<script>
(function(){
  var rowHeight = {{.RowH}};
  var topPad = {{.TopPad}};
  var svg = document.getElementById("gantt");
  var expanded = null;

  function layoutRows(){
    var y = topPad;
    svg.querySelectorAll(".row").forEach(function(row){
      var type = row.dataset.rowType;
      var stream = row.dataset.stream;
      var visible = type === "summary" || (expanded !== null && expanded === stream);
      row.style.display = visible ? "" : "none";
      row.classList.toggle("active", type === "summary" && expanded === stream);
      if (visible) {
        row.setAttribute("transform", "translate(0," + y + ")");
        y += rowHeight;
      }
    });
    var h = y + 64;
    svg.setAttribute("height", String(h));
    svg.querySelectorAll(".grid-tick").forEach(function(line){
      line.setAttribute("y2", String(h - 28));
    });
  }

  function toggle(stream){
    expanded = expanded === stream ? null : stream;
    layoutRows();
  }

  svg.addEventListener("click", function(evt){
    var row = evt.target.closest(".summary-row");
    if (row) toggle(row.dataset.stream);
  });
  svg.addEventListener("keydown", function(evt){
    if (evt.key !== "Enter" && evt.key !== " ") return;
    var row = evt.target.closest(".summary-row");
    if (row) { evt.preventDefault(); toggle(row.dataset.stream); }
  });

  layoutRows();
})();
</script>
<script>
(function(){
  function selectText(node){
    var range = document.createRange();
    range.selectNodeContents(node);
    var sel = window.getSelection();
    sel.removeAllRanges();
    sel.addRange(range);
  }
  function flash(btn, label){
    var prev = btn.textContent;
    btn.textContent = label;
    setTimeout(function(){ btn.textContent = prev; }, 1200);
  }
  document.querySelectorAll(".exc-item").forEach(function(item){
    var btn = item.querySelector(".exc-copy");
    var text = item.querySelector(".exc-text");
    if (!btn || !text) return;
    btn.addEventListener("click", function(){
      if (navigator.clipboard && navigator.clipboard.writeText) {
        navigator.clipboard.writeText(text.textContent).then(
          function(){ flash(btn, "Copied"); },
          function(){ selectText(text); flash(btn, "Select & copy"); }
        );
      } else {
        selectText(text);
        flash(btn, "Select & copy");
      }
    });
  });
})();
</script>
{{if .LiveReload}}<script>
(function(){
  var proto = location.protocol === "https:" ? "wss" : "ws";
  var sock = new WebSocket(proto + "://" + location.host + "/ws");
  sock.onmessage = function(){ location.reload(); };
})();
</script>
{{end}}</body>
</html>
`
