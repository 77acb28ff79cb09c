// Package templates holds the server-rendered pages. Pages are templ
// components over html/template so dynamic fields are escaped; interactive
// regions are filled in by the datastar SSE endpoints after load.
package templates

import (
	"context"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const datastarCDN = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

var layoutTemplate = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · Salescope</title>
<script type="module" src="` + datastarCDN + `"></script>
<link rel="stylesheet" href="/static/app.css">
</head>
<body>
<header class="topbar">
<a href="/" class="brand">Salescope</a>
<nav>
{{if .Authed}}<a href="/history">History</a>
<form method="post" action="/logout" class="inline"><button type="submit">Sign out</button></form>
{{else}}<a href="/login">Sign in</a>
<a href="/register">Register</a>{{end}}
</nav>
</header>
<main>
{{.Body}}
</main>
</body>
</html>`))

type layoutData struct {
	Title  string
	Authed bool
	Body   template.HTML
}

func page(title string, authed bool, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layoutTemplate.Execute(w, layoutData{
			Title:  title,
			Authed: authed,
			Body:   template.HTML(body),
		})
	})
}

// Index is the upload page for signed-in users.
func Index() templ.Component {
	return page("Upload", true, `
<section class="card">
<h1>Analyze a sales file</h1>
<p>Upload a CSV, TSV or XLSX export. Columns are detected automatically.</p>
<form method="post" action="/upload" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,.tsv,.xlsx" required>
<button type="submit">Analyze</button>
</form>
</section>`)
}

// Login renders the sign-in form.
func Login() templ.Component {
	return page("Sign in", false, `
<section class="card narrow">
<h1>Sign in</h1>
<form method="post" action="/login">
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Sign in</button>
</form>
<p>No account? <a href="/register">Register</a></p>
</section>`)
}

// Register renders the account creation form.
func Register() templ.Component {
	return page("Register", false, `
<section class="card narrow">
<h1>Create an account</h1>
<form method="post" action="/register">
<label>Name <input type="text" name="name" maxlength="100" required></label>
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" minlength="8" required></label>
<button type="submit">Register</button>
</form>
<p>Already registered? <a href="/login">Sign in</a></p>
</section>`)
}

var resultsTemplate = template.Must(template.New("results").Parse(`
<section class="card" data-on-load="@get('/sse/analyses/{{.}}')">
<h1>Analysis results</h1>
<div id="sse-error"></div>
<div id="summary-content" data-signals="{monthlyData: [], dailyData: [], weekdayData: []}">
<p>Loading metrics…</p>
</div>
<div id="top-items-content"><p>Loading top items…</p></div>
<p><a href="/analyses/{{.}}/report.pdf">Download PDF report</a></p>
</section>`))

// Results shows one analysis; the tables and chart signals stream in over
// SSE once the page loads.
func Results(analysisID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf strings.Builder
		if err := resultsTemplate.Execute(&buf, analysisID); err != nil {
			return err
		}
		return layoutTemplate.Execute(w, layoutData{
			Title:  "Results",
			Authed: true,
			Body:   template.HTML(buf.String()),
		})
	})
}

// History lists the user's previous uploads.
func History() templ.Component {
	return page("History", true, `
<section class="card" data-on-load="@get('/sse/history')">
<h1>Your analyses</h1>
<div id="sse-error"></div>
<div id="history-content"><p>Loading history…</p></div>
</section>`)
}

