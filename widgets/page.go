package widgets

import (
	"fmt"
	"html/template"
	"io"
)

// Page is everything the page shell needs: container ids and the
// pre-rendered widget fragments.
type Page struct {
	Title      string
	Version    string
	SourcesID  string
	TrendingID string
	VersionID  string

	// PageID identifies this page load on /events and topic selections.
	PageID string

	SourcesHTML  template.HTML
	TrendingHTML template.HTML
	VersionHTML  template.HTML
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="newsdash {{.Version}}">
<title>{{.Title}}</title>
</head>
<body>
<aside class="sidebar">
{{.SourcesHTML}}
</aside>
<main>
{{.TrendingHTML}}
<section id="news"></section>
</main>
<footer>
{{.VersionHTML}}
</footer>
<script>
(function () {
  var pageID = {{.PageID}};
  var sourcesID = {{.SourcesID}};
  var trendingID = {{.TrendingID}};

  function post(url, fields) {
    return fetch(url, {
      method: 'POST',
      headers: {'Content-Type': 'application/x-www-form-urlencoded'},
      body: new URLSearchParams(fields)
    });
  }

  function reload(id, url) {
    fetch(url).then(function (resp) {
      if (!resp.ok) { throw new Error('status ' + resp.status); }
      return resp.text();
    }).then(function (html) {
      var el = document.getElementById(id);
      if (el) { el.outerHTML = html; }
    }).catch(function (err) { console.error('Error reloading ' + id + ':', err); });
  }

  document.addEventListener('change', function (e) {
    var box = e.target;
    if (!box.closest('#' + sourcesID) || box.type !== 'checkbox') { return; }
    post('/widgets/sources/toggle', {name: box.dataset.source, enabled: String(box.checked)})
      .catch(function (err) { console.error('Error updating source status:', err); });
  });

  document.addEventListener('click', function (e) {
    var topic = e.target.closest('.trending-topic');
    if (!topic) { return; }
    post('/widgets/trending/select', {topic: topic.dataset.topic, page: pageID})
      .catch(function (err) { console.error('Error selecting topic:', err); });
  });

  function connect() {
    var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
    var ws = new WebSocket(scheme + location.host + '/events?page=' + encodeURIComponent(pageID));
    ws.onmessage = function (m) {
      var ev = JSON.parse(m.data);
      switch (ev.kind) {
      case 'filter-by-topic':
        document.dispatchEvent(new CustomEvent('filter-by-topic', {detail: {topic: ev.topic}}));
        break;
      case 'news-refresh':
        if (typeof window.loadNews === 'function') { window.loadNews(); }
        break;
      case 'trending-updated':
        reload(trendingID, '/widgets/trending');
        break;
      }
    };
    ws.onclose = function () { setTimeout(connect, 5000); };
  }
  connect();
})();
</script>
</body>
</html>
`))

// RenderPage writes the page shell hosting the three widgets.
func RenderPage(w io.Writer, page Page) error {
	if err := pageTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
