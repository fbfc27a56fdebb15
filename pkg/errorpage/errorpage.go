// Package errorpage turns a render failure into an HTML or JSON surface.
// How much detail is exposed (stack trace, context summary, line numbers)
// is gated by a debug flag that lives here, outside the render core: the
// structured error always carries full diagnostics, the presenter decides
// what a viewer gets to see.
package errorpage

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-smartrender/pkg/render"
)

// GenericMessage is what non-debug viewers see in place of diagnostics.
const GenericMessage = "An error occurred while rendering this page."

// The page shell deliberately uses html/template rather than the pongo2
// engine: it must render even when that engine is the thing that failed.
const pageSource = `<!doctype html>
<html>
<head><title>Render Error</title></head>
<body>
<h1>Render Error</h1>
{{if .Debug}}
<p class="kind">{{.Kind}}</p>
<p class="message">{{.Message}}</p>
{{if .Target}}<p class="target">target: <code>{{.Target}}</code>{{if .Macro}} macro: <code>{{.Macro}}</code>{{end}}{{if .Line}} line {{.Line}}{{end}}</p>{{end}}
{{if .ContextSummary}}<h2>Context</h2>
<ul class="context">
{{range $name, $type := .ContextSummary}}<li><code>{{$name}}</code>: {{$type}}</li>
{{end}}</ul>{{end}}
{{if .StackTrace}}<h2>Stack</h2>
<pre class="stack">{{range .StackTrace}}{{.}}
{{end}}</pre>{{end}}
{{else}}
<p class="message">{{.Message}}</p>
{{end}}
</body>
</html>
`

var pageTemplate = htmltemplate.Must(htmltemplate.New("errorpage").Parse(pageSource))

// Option customises the presenter.
type Option func(*Presenter)

// WithDebug exposes full diagnostic detail. Off by default.
func WithDebug(debug bool) Option {
	return func(p *Presenter) {
		p.debug = debug
	}
}

// WithPolicy overrides the sanitiser applied to engine-supplied text before
// it is trusted as markup.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(p *Presenter) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// Presenter renders *render.RenderError values for end users.
type Presenter struct {
	debug  bool
	policy *bluemonday.Policy
}

// New constructs a presenter. The default sanitisation policy is
// bluemonday's UGC policy.
func New(options ...Option) *Presenter {
	p := &Presenter{
		policy: bluemonday.UGCPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

type pageData struct {
	Debug          bool
	Kind           string
	Message        htmltemplate.HTML
	Target         string
	Macro          string
	Line           int
	ContextSummary map[string]string
	StackTrace     []string
}

// HTML renders the error page. Engine messages may quote template source, so
// they pass through the sanitiser and are then trusted as markup; everything
// else is escaped by html/template as usual.
func (p *Presenter) HTML(re *render.RenderError) string {
	data := pageData{
		Debug:   p.debug,
		Message: htmltemplate.HTML(p.policy.Sanitize(GenericMessage)),
	}
	if p.debug && re != nil {
		d := re.Detail
		data.Kind = string(d.Kind)
		data.Message = htmltemplate.HTML(p.policy.Sanitize(d.Message))
		data.Target = d.Target
		data.Macro = d.Macro
		data.Line = d.Line
		data.ContextSummary = d.ContextSummary
		data.StackTrace = d.StackTrace
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		// Static template over plain data; execution cannot realistically
		// fail, but the presenter must still never panic.
		return fmt.Sprintf("<h1>Render Error</h1><p>%s</p>", GenericMessage)
	}
	return buf.String()
}

type jsonDetail struct {
	Kind           string            `json:"kind"`
	Message        string            `json:"message"`
	Target         string            `json:"target,omitempty"`
	Macro          string            `json:"macro,omitempty"`
	Line           int               `json:"line,omitempty"`
	Timestamp      string            `json:"timestamp,omitempty"`
	ContextSummary map[string]string `json:"context_summary,omitempty"`
	StackTrace     []string          `json:"stack_trace,omitempty"`
}

type jsonEnvelope struct {
	Success bool       `json:"success"`
	Error   jsonDetail `json:"error"`
}

// JSON renders the API-facing representation. Non-debug responses carry only
// the failure kind and the generic message.
func (p *Presenter) JSON(re *render.RenderError) ([]byte, error) {
	envelope := jsonEnvelope{
		Error: jsonDetail{Message: GenericMessage},
	}
	if re != nil {
		envelope.Error.Kind = string(re.Detail.Kind)
	}
	if p.debug && re != nil {
		d := re.Detail
		envelope.Error = jsonDetail{
			Kind:           string(d.Kind),
			Message:        d.Message,
			Target:         d.Target,
			Macro:          d.Macro,
			Line:           d.Line,
			ContextSummary: d.ContextSummary,
			StackTrace:     d.StackTrace,
		}
		if !d.Timestamp.IsZero() {
			envelope.Error.Timestamp = d.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
	}
	return json.Marshal(envelope)
}

// WantsJSON reports whether a request should receive the JSON representation
// rather than the HTML page, based on its Accept header and URL path.
func WantsJSON(accept, path, apiPrefix string) bool {
	accept = strings.ToLower(strings.TrimSpace(accept))
	if strings.Contains(accept, "application/json") || strings.Contains(accept, "application/*") || accept == "*/*" {
		return true
	}
	return apiPrefix != "" && strings.HasPrefix(path, apiPrefix)
}
