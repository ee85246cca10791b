// Package notify renders and delivers deletion warning emails. The
// template engine is Liquid with the variables `days`, `customer` and
// `store`; delivery goes through AWS SES or, for development and dry
// runs, a transport that only logs.
package notify

import (
	"fmt"
	"sync"

	"github.com/osteele/liquid"
)

// DefaultTemplateID is used when no template is configured or the
// configured id is unknown.
const DefaultTemplateID = "deletion_warning"

const defaultSubjectTemplate = `Your account at {{ store.name }} will be deleted in {{ days }} days`

const defaultHTMLTemplate = `<p>Dear {{ customer.name | default: "Customer" }},</p>
<p>Your account at {{ store.name }} has been inactive for an extended period.
It will be permanently deleted in <strong>{{ days }}</strong> days.</p>
<p>To keep your account, simply <a href="{{ store.url }}">log in</a> before then.</p>
<p>{{ store.name }}</p>`

const defaultTextTemplate = `Dear {{ customer.name | default: "Customer" }},

Your account at {{ store.name }} has been inactive for an extended period.
It will be permanently deleted in {{ days }} days.

To keep your account, log in at {{ store.url }} before then.

{{ store.name }}`

// WarningTemplate is one renderable warning email: subject plus HTML and
// plain-text bodies.
type WarningTemplate struct {
	Subject string
	HTML    string
	Text    string
}

// TemplateEngine renders warning templates with Liquid, caching compiled
// templates per source string.
type TemplateEngine struct {
	engine    *liquid.Engine
	cache     sync.Map // map[string]*liquid.Template
	mu        sync.RWMutex
	templates map[string]WarningTemplate
}

// NewTemplateEngine creates an engine pre-loaded with the built-in
// default template.
func NewTemplateEngine() *TemplateEngine {
	engine := liquid.NewEngine()
	engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		s := fmt.Sprintf("%v", value)
		if s == "" || s == "<nil>" {
			return defaultVal
		}
		return value
	})

	return &TemplateEngine{
		engine: engine,
		templates: map[string]WarningTemplate{
			DefaultTemplateID: {
				Subject: defaultSubjectTemplate,
				HTML:    defaultHTMLTemplate,
				Text:    defaultTextTemplate,
			},
		},
	}
}

// Register adds or replaces a template under the given id.
func (e *TemplateEngine) Register(id string, tmpl WarningTemplate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[id] = tmpl
}

// Render produces the warning email for the template id. An unknown id
// falls back to the built-in default rather than failing the send.
func (e *TemplateEngine) Render(id string, bindings map[string]any) (WarningTemplate, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[id]
	if !ok {
		tmpl = e.templates[DefaultTemplateID]
	}
	e.mu.RUnlock()

	subject, err := e.renderOne(tmpl.Subject, bindings)
	if err != nil {
		return WarningTemplate{}, fmt.Errorf("render subject: %w", err)
	}
	html, err := e.renderOne(tmpl.HTML, bindings)
	if err != nil {
		return WarningTemplate{}, fmt.Errorf("render html body: %w", err)
	}
	text, err := e.renderOne(tmpl.Text, bindings)
	if err != nil {
		return WarningTemplate{}, fmt.Errorf("render text body: %w", err)
	}

	return WarningTemplate{Subject: subject, HTML: html, Text: text}, nil
}

func (e *TemplateEngine) renderOne(source string, bindings map[string]any) (string, error) {
	if cached, ok := e.cache.Load(source); ok {
		out, err := cached.(*liquid.Template).Render(bindings)
		return string(out), err
	}

	compiled, err := e.engine.ParseString(source)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	e.cache.Store(source, compiled)

	out, err := compiled.Render(bindings)
	return string(out), err
}
