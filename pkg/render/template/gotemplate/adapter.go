package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-smartrender/pkg/render/template"
)

const defaultExtension = ".html"

// contextArg is the variable the macro driver binds the render context to
// before invoking the macro with it.
const contextArg = "__smartrender_ctx__"

var identifierRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Option configures the adapter before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	templateFn map[string]any
	globalData map[string]any
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the extension appended to extension-less target
// names. Targets that already carry an extension are never rewritten.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithTemplateFunc registers helper functions or filters when the engine
// loads.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithGoTemplateOptions exists for backward compatibility with adapters built
// directly on go-template. It is inert: the options are accepted for API
// compatibility only and nothing is passed through to the engine.
func WithGoTemplateOptions(_ ...gotemplatepkg.Option) Option {
	return func(*config) {}
}

// Engine satisfies template.TemplateRenderer and template.MacroRenderer using
// a pongo2-backed template set. Failures come back as *template.Error so the
// renderer can tell a missing asset from a broken or misbehaving template.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string

	baseDir string
	fsys    fs.FS
}

var (
	_ template.TemplateRenderer = (*Engine)(nil)
	_ template.MacroRenderer    = (*Engine)(nil)
)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: defaultExtension,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("smartrender", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
		baseDir:     cfg.baseDir,
		fsys:        cfg.templates,
	}
	registerDefaultFilters()

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}
	for name, fn := range cfg.templateFn {
		if err := engine.registerTemplateFunc(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register template func %q: %w", name, err)
		}
	}

	return engine, nil
}

// Render treats name as inline template content when it looks like markup,
// and as a target name otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate loads, compiles and executes the named target.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	target := e.targetPath(name)

	tmpl, err := e.getTemplate(target)
	if err != nil {
		return "", err
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return "", &template.Error{Kind: template.KindExecution, Target: target, Err: fmt.Errorf("convert data: %w", err)}
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", &template.Error{Kind: template.KindExecution, Target: target, Line: lineOf(err), Err: err}
	}

	return tee(buf.String(), out)
}

// RenderString compiles and executes inline template content.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", &template.Error{Kind: template.KindSyntax, Line: lineOf(err), Err: err}
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return "", &template.Error{Kind: template.KindExecution, Err: fmt.Errorf("convert data: %w", err)}
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", &template.Error{Kind: template.KindExecution, Line: lineOf(err), Err: err}
	}

	return tee(buf.String(), out)
}

// RenderMacro imports the named macro from target and invokes it with the
// render context as its sole argument, via a synthesised driver template.
// The macro must be declared with the export flag
// ({% macro name(ctx) export %}); pongo2 hides unexported macros from
// {% import %}, and that failure surfaces here as an execution error.
func (e *Engine) RenderMacro(target, macro string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	if !identifierRx.MatchString(macro) {
		return "", &template.Error{
			Kind:   template.KindExecution,
			Target: target,
			Macro:  macro,
			Err:    fmt.Errorf("macro name %q is not a valid identifier", macro),
		}
	}

	targetPath := e.targetPath(target)
	driver := fmt.Sprintf("{%% import %q %s %%}{{ %s(%s) }}", targetPath, macro, macro, contextArg)

	tmpl, err := e.templateSet.FromString(driver)
	if err != nil {
		// The import tag resolves the target at compile time, so a missing
		// template, a broken template and an unknown macro all surface here.
		return "", &template.Error{
			Kind:   e.classifyLoadFailure(targetPath),
			Target: targetPath,
			Macro:  macro,
			Line:   lineOf(err),
			Err:    err,
		}
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return "", &template.Error{Kind: template.KindExecution, Target: targetPath, Macro: macro, Err: fmt.Errorf("convert data: %w", err)}
	}
	driverContext := pongo2.Context{contextArg: map[string]any(viewContext)}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(driverContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", &template.Error{Kind: template.KindExecution, Target: targetPath, Macro: macro, Line: lineOf(err), Err: err}
	}

	return tee(buf.String(), out)
}

// RegisterFilter registers a template filter on the wrapped engine.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext seeds global data on the wrapped engine.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return nil
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(trimmed) {
			return nil
		}
		return pongo2.RegisterFilter(trimmed, filter)
	}

	if !isCallable(fn) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals[trimmed] = fn
	return nil
}

// targetPath appends the configured extension only when the target has none.
func (e *Engine) targetPath(name string) string {
	if path.Ext(name) == "" {
		return name + e.tplExt
	}
	return name
}

func (e *Engine) getTemplate(target string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[target]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[target]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(target)
	if err != nil {
		return nil, &template.Error{
			Kind:   e.classifyLoadFailure(target),
			Target: target,
			Line:   lineOf(err),
			Err:    err,
		}
	}

	e.templates[target] = tmpl
	return tmpl, nil
}

// classifyLoadFailure distinguishes a missing asset from a target that exists
// but will not compile. pongo2 folds both into one load error, so the loader
// source is probed directly.
func (e *Engine) classifyLoadFailure(target string) template.ErrorKind {
	if e.fsys != nil {
		if _, err := fs.Stat(e.fsys, target); err == nil {
			return template.KindSyntax
		}
	}
	if e.baseDir != "" {
		if _, err := os.Stat(filepath.Join(e.baseDir, target)); err == nil {
			return template.KindSyntax
		}
	}
	return template.KindNotFound
}

func lineOf(err error) int {
	var perr *pongo2.Error
	if errors.As(err, &perr) {
		return perr.Line
	}
	return 0
}

func tee(rendered string, out []io.Writer) (string, error) {
	for _, w := range out {
		if _, err := w.Write([]byte(rendered)); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return convertMapToContext(map[string]any(v))
	case map[string]any:
		return convertMapToContext(v)
	default:
		m, err := jsonToMap(v)
		if err != nil {
			return nil, err
		}
		return convertMapToContext(m)
	}
}

func convertMapToContext(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if isCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case pongo2.Context:
		return convertMap(map[string]any(v))
	case map[string]any:
		return convertMap(v)
	case []any:
		return convertSlice(v)
	default:
		raw, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		switch decoded := raw.(type) {
		case map[string]any:
			return convertMap(decoded)
		case []any:
			return convertSlice(decoded)
		default:
			return decoded, nil
		}
	}
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func jsonToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("required") {
		_ = pongo2.RegisterFilter("required", filterRequired)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterRequired turns pongo2's lenient undefined-variable handling into an
// execution error, so templates can declare the variables they cannot render
// without: {{ title|required:"title" }}.
func filterRequired(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in == nil || in.IsNil() {
		name := "variable"
		if param != nil && param.IsString() && param.String() != "" {
			name = param.String()
		}
		return nil, &pongo2.Error{
			Sender:    "filter:required",
			OrigError: fmt.Errorf("required %s is missing from the context", name),
		}
	}
	return in, nil
}
