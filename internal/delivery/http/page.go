package http

// pageTemplates holds the "index" page and the server-rendered "compare" page.
// The index page drives a session: keystrokes, picks and blurs go to the
// slot endpoints and suggestion lists come back over the event stream.
const pageTemplates = `
{{define "cards"}}
<div class="results">
  {{range .}}
  <div class="car-card">
    <h2>{{.Title}}</h2>
    <p class="year">{{.Year}}</p>
    <dl>
      {{range .Specs}}<dt>{{.Label}}</dt><dd>{{.Value}}</dd>{{end}}
    </dl>
  </div>
  {{end}}
</div>
{{end}}

{{define "style"}}
<style>
  body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; }
  .inputs { display: flex; gap: 1rem; }
  .slot { position: relative; flex: 1; }
  .slot input { width: 100%; padding: .5rem; }
  .suggestions { position: absolute; left: 0; right: 0; margin: 0; padding: 0; list-style: none; background: #fff; border: 1px solid #ccc; }
  .suggestions:empty { display: none; }
  .suggestions li { padding: .4rem .5rem; cursor: pointer; }
  .suggestions li:hover { background: #eef; }
  .results { display: flex; gap: 1rem; margin-top: 1.5rem; }
  .car-card { flex: 1; border: 1px solid #ddd; border-radius: 6px; padding: 1rem; }
  .car-card dl { display: grid; grid-template-columns: auto 1fr; gap: .25rem 1rem; }
  .error { color: #b00; margin-top: 1rem; }
  .loading { display: none; margin-top: 1rem; }
  .loading.active { display: block; }
</style>
{{end}}

{{define "index"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Car Comparator</title>
{{template "style"}}
</head>
<body>
<h1>Compare two vehicles</h1>
<div class="inputs">
  <div class="slot"><input id="input-a" data-slot="a" autocomplete="off" placeholder="First vehicle"><ul class="suggestions" id="suggestions-a"></ul></div>
  <div class="slot"><input id="input-b" data-slot="b" autocomplete="off" placeholder="Second vehicle"><ul class="suggestions" id="suggestions-b"></ul></div>
</div>
<p><button id="compare-btn">Compare</button></p>
<div class="loading" id="loading">Loading&hellip;</div>
<div class="error" id="error"></div>
<div id="results"></div>
<script>
(async function () {
  const api = "/api/v1/sessions";
  const inputs = document.querySelectorAll("input[data-slot]");
  let base = "";
  let events = null;
  let opening = null;

  function request(method, path, body) {
    return fetch(base + path, {
      method: method,
      headers: { "Content-Type": "application/json" },
      body: body === undefined ? undefined : JSON.stringify(body),
    });
  }

  // open starts a session and its event stream, replaying the inputs so an
  // expired session is replaced without losing what the user typed
  function open() {
    if (opening) return opening;
    opening = (async function () {
      const res = await fetch(api, { method: "POST" });
      const { id } = await res.json();
      base = api + "/" + encodeURIComponent(id);

      if (events) events.close();
      events = new EventSource(base + "/events");
      events.addEventListener("suggestions", function (e) {
        const update = JSON.parse(e.data);
        renderList(update.slot, update.suggestions);
      });
      events.addEventListener("error", function () {
        if (events.readyState === EventSource.CLOSED) open();
      });

      for (const input of inputs) {
        if (input.value) await request("PUT", "/slots/" + input.dataset.slot + "/query", { text: input.value });
      }
    })().finally(function () { opening = null; });
    return opening;
  }

  async function send(method, path, body) {
    if (opening) await opening;
    const r = await request(method, path, body);
    if (r.status !== 404) return r;
    await open();
    return request(method, path, body);
  }

  function renderList(slot, items) {
    const ul = document.getElementById("suggestions-" + slot);
    ul.replaceChildren();
    for (const text of items || []) {
      const li = document.createElement("li");
      li.textContent = text;
      li.addEventListener("mousedown", async function () {
        const r = await send("POST", "/slots/" + slot + "/pick", { value: text });
        if (r.ok) {
          const state = await r.json();
          document.getElementById("input-" + slot).value = state.query;
          renderList(slot, state.suggestions);
        }
      });
      ul.appendChild(li);
    }
  }

  await open();

  for (const input of inputs) {
    const slot = input.dataset.slot;
    input.addEventListener("input", function () {
      send("PUT", "/slots/" + slot + "/query", { text: input.value });
    });
    input.addEventListener("blur", function () {
      send("POST", "/slots/" + slot + "/blur");
    });
  }

  function renderCards(cards) {
    const results = document.getElementById("results");
    results.replaceChildren();
    const wrap = document.createElement("div");
    wrap.className = "results";
    for (const card of cards || []) {
      const div = document.createElement("div");
      div.className = "car-card";
      const h = document.createElement("h2");
      h.textContent = card.title;
      const y = document.createElement("p");
      y.className = "year";
      y.textContent = card.year;
      const dl = document.createElement("dl");
      for (const spec of card.specs) {
        const dt = document.createElement("dt");
        dt.textContent = spec.label;
        const dd = document.createElement("dd");
        dd.textContent = spec.value;
        dl.append(dt, dd);
      }
      div.append(h, y, dl);
      wrap.appendChild(div);
    }
    results.appendChild(wrap);
  }

  const button = document.getElementById("compare-btn");
  const loading = document.getElementById("loading");
  const error = document.getElementById("error");
  button.addEventListener("click", async function () {
    if (button.disabled) return;
    button.disabled = true;
    loading.classList.add("active");
    error.textContent = "";
    renderCards([]);
    try {
      const r = await send("POST", "/compare");
      const body = await r.json();
      renderCards(body.cards);
      error.textContent = body.error || "";
    } catch (e) {
      error.textContent = "An error occurred while fetching vehicle data. Please try again later.";
    } finally {
      loading.classList.remove("active");
      button.disabled = false;
    }
  });

  window.addEventListener("pagehide", function () {
    if (events) events.close();
    fetch(base, { method: "DELETE", keepalive: true });
  });
})();
</script>
</body>
</html>
{{end}}

{{define "compare"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.A}} vs {{.B}}</title>
{{template "style"}}
</head>
<body>
<h1>Compare two vehicles</h1>
<form class="inputs" method="get" action="/compare">
  <div class="slot"><input name="a" value="{{.A}}" placeholder="First vehicle"></div>
  <div class="slot"><input name="b" value="{{.B}}" placeholder="Second vehicle"></div>
  <button type="submit">Compare</button>
</form>
{{with .Error}}<div class="error">{{.}}</div>{{end}}
{{template "cards" .Cards}}
</body>
</html>
{{end}}
`
