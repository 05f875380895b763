package rules

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	propschema "github.com/reoring/propschema"
	"github.com/reoring/propschema/i18n"
)

// ErrUnknownRule is returned when a rule table carries a token the engine
// does not implement.
var ErrUnknownRule = errors.New("rules: unknown rule")

// ErrBadParameter is returned for malformed rule parameters (min:abc,
// an invalid regex...).
var ErrBadParameter = errors.New("rules: bad rule parameter")

// Engine executes Laravel-style rule tokens ("required", "email", "min:3",
// "required_if:kind,business"...). It implements propschema.Engine.
type Engine struct {
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-rule debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

var _ propschema.Engine = (*Engine)(nil)

// markers alter how a field is validated but never fail on their own.
var markers = map[string]struct{}{"nullable": {}, "bail": {}, "sometimes": {}}

// implicit rules run even when the value is absent or blank; a failure stops
// validation of the field.
var implicit = map[string]struct{}{
	"required": {}, "required_if": {}, "required_unless": {}, "required_with": {},
	"required_without": {}, "filled": {}, "present": {}, "accepted": {},
	"prohibited": {}, "prohibited_if": {},
}

type check func(c *call) bool

var checks = map[string]check{
	"required":         func(c *call) bool { return c.present && filled(c.value) },
	"required_if":      checkRequiredIf,
	"required_unless":  checkRequiredUnless,
	"required_with":    checkRequiredWith,
	"required_without": checkRequiredWithout,
	"prohibited":       func(c *call) bool { return !c.present || !filled(c.value) },
	"prohibited_if":    checkProhibitedIf,
	"filled":           func(c *call) bool { return !c.present || filled(c.value) },
	"present":          func(c *call) bool { return c.present },
	"accepted":         checkAccepted,
	"string":           checkString,
	"integer":          func(c *call) bool { return isInteger(c.value) },
	"numeric":          checkNumeric,
	"boolean":          checkBoolean,
	"array":            checkArray,
	"email":            checkEmail,
	"url":              checkURL,
	"regex":            checkRegex,
	"in":               func(c *call) bool { return contains(c.rule.params, propschema.TokenValue(c.value)) },
	"not_in":           func(c *call) bool { return !contains(c.rule.params, propschema.TokenValue(c.value)) },
	"same":             checkSame,
	"different":        func(c *call) bool { return !checkSame(c) },
	"min":              checkSize,
	"max":              checkSize,
	"between":          checkSize,
	"size":             checkSize,
}

// numeric parameter arity per rule.
var numericParams = map[string]int{"min": 1, "max": 1, "between": 2, "size": 1}

// fieldParams lists rules whose first parameter names another field.
var fieldParams = map[string]struct{}{
	"required_if": {}, "required_unless": {}, "prohibited_if": {}, "same": {}, "different": {},
}

type parsedRule struct {
	name   string
	params []string
	nums   []float64
	re     *regexp.Regexp
}

type call struct {
	field   string
	value   any
	present bool
	record  map[string]any
	rule    parsedRule
	numeric bool // the field carries a numeric or integer rule
}

// Evaluate runs every field's rule list against in.Record.
func (e *Engine) Evaluate(in propschema.Input) (propschema.Result, error) {
	res := propschema.Result{Valid: true, Errors: map[string][]string{}}
	fields := make([]string, 0, len(in.Rules))
	for f := range in.Rules {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		parsed, err := e.expand(field, in.Rules[field], in.Record)
		if err != nil {
			return propschema.Result{}, err
		}
		e.validateField(field, parsed, in, &res)
	}
	res.Valid = len(res.Errors) == 0
	return res, nil
}

func (e *Engine) expand(field string, entries []propschema.FieldRule, record map[string]any) ([]parsedRule, error) {
	seen := map[string]struct{}{}
	var out []parsedRule
	for _, entry := range entries {
		for _, tok := range entry.Expand(record) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			pr, err := parse(tok)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", field, err)
			}
			out = append(out, pr)
		}
	}
	return out, nil
}

// parse splits and checks a single token.
func parse(token string) (parsedRule, error) {
	name, rest, hasParams := strings.Cut(strings.TrimSpace(token), ":")
	pr := parsedRule{name: name}
	if _, ok := markers[name]; ok {
		return pr, nil
	}
	if _, ok := checks[name]; !ok {
		return pr, fmt.Errorf("%w: %q", ErrUnknownRule, token)
	}
	if name == "regex" {
		re, err := compileRegex(rest)
		if err != nil {
			return pr, fmt.Errorf("%w: %q: %v", ErrBadParameter, token, err)
		}
		pr.re = re
		return pr, nil
	}
	if hasParams {
		pr.params = strings.Split(rest, ",")
	}
	if n, ok := numericParams[name]; ok {
		if len(pr.params) != n {
			return pr, fmt.Errorf("%w: %q expects %d parameter(s)", ErrBadParameter, token, n)
		}
		for _, p := range pr.params {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return pr, fmt.Errorf("%w: %q: %v", ErrBadParameter, token, err)
			}
			pr.nums = append(pr.nums, f)
		}
	}
	if _, ok := fieldParams[name]; ok && (len(pr.params) == 0 || pr.params[0] == "") {
		return pr, fmt.Errorf("%w: %q requires a field", ErrBadParameter, token)
	}
	if (name == "required_with" || name == "required_without") && len(pr.params) == 0 {
		return pr, fmt.Errorf("%w: %q requires fields", ErrBadParameter, token)
	}
	return pr, nil
}

func (e *Engine) validateField(field string, rules []parsedRule, in propschema.Input, res *propschema.Result) {
	var nullable, bail, sometimes, isNumeric bool
	for _, r := range rules {
		switch r.name {
		case "nullable":
			nullable = true
		case "bail":
			bail = true
		case "sometimes":
			sometimes = true
		case "numeric", "integer":
			isNumeric = true
		}
	}
	value, present := propschema.Lookup(in.Record, field)
	if sometimes && !present {
		return
	}

	for _, r := range rules {
		if _, ok := markers[r.name]; ok {
			continue
		}
		_, isImplicit := implicit[r.name]
		if !isImplicit && !validatable(value, present, nullable) {
			continue
		}
		c := &call{field: field, value: value, present: present, record: in.Record, rule: r, numeric: isNumeric}
		if checks[r.name](c) {
			continue
		}
		e.logger.Debug("rule failed", zap.String("field", field), zap.String("rule", r.name))
		msg, params := message(field, r, in)
		res.Errors[field] = append(res.Errors[field], msg)
		res.Issues = propschema.AppendIssues(res.Issues, propschema.Issue{
			Path:    propschema.PointerFor(field),
			Code:    r.name,
			Message: msg,
			Params:  params,
		})
		if isImplicit || bail {
			return
		}
	}
}

// validatable reports whether a non-implicit rule should run: the field must
// be present, not a blank string, and not null when marked nullable.
func validatable(value any, present, nullable bool) bool {
	if !present {
		return false
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return false
	}
	if value == nil && nullable {
		return false
	}
	return true
}

func message(field string, r parsedRule, in propschema.Input) (string, map[string]any) {
	data := map[string]string{}
	params := map[string]any{}
	for i, p := range r.params {
		params[strconv.Itoa(i)] = p
	}
	switch r.name {
	case "min", "max", "size":
		data[r.name] = r.params[0]
	case "between":
		data["min"], data["max"] = r.params[0], r.params[1]
	case "required_if", "prohibited_if", "required_unless", "same", "different":
		data["other"] = label(r.params[0], in.Attributes)
		data["value"] = strings.Join(r.params[1:], ",")
		data["values"] = strings.Join(r.params[1:], ", ")
	case "required_with", "required_without":
		labels := make([]string, len(r.params))
		for i, p := range r.params {
			labels[i] = label(p, in.Attributes)
		}
		data["values"] = strings.Join(labels, " / ")
	}
	for k, v := range data {
		params[k] = v
	}

	msg, ok := in.Messages[field+"."+r.name]
	if !ok {
		msg, ok = in.Messages[r.name]
	}
	if ok {
		msg = i18n.Replace(msg, data)
	} else {
		msg = i18n.T(r.name, data)
	}
	return i18n.Attribute(msg, label(field, in.Attributes)), params
}

func label(field string, attrs map[string]string) string {
	if l, ok := attrs[field]; ok && l != "" {
		return l
	}
	return propschema.HumanizeField(field)
}

// ---------- checks ----------

func checkString(c *call) bool {
	_, ok := c.value.(string)
	return ok
}

func checkNumeric(c *call) bool {
	_, ok := numeric(c.value)
	return ok
}

func checkEmail(c *call) bool {
	s, ok := c.value.(string)
	return ok && propschema.IsEmail(s)
}

func checkRegex(c *call) bool {
	s, ok := c.value.(string)
	return ok && c.rule.re.MatchString(s)
}

func checkSize(c *call) bool {
	n, ok := c.size()
	if !ok {
		return false
	}
	nums := c.rule.nums
	switch c.rule.name {
	case "min":
		return n >= nums[0]
	case "max":
		return n <= nums[0]
	case "between":
		return n >= nums[0] && n <= nums[1]
	default:
		return n == nums[0]
	}
}

func checkRequiredIf(c *call) bool {
	if !otherMatches(c) {
		return true
	}
	return c.present && filled(c.value)
}

func checkRequiredUnless(c *call) bool {
	if otherMatches(c) {
		return true
	}
	return c.present && filled(c.value)
}

func checkProhibitedIf(c *call) bool {
	if !otherMatches(c) {
		return true
	}
	return !c.present || !filled(c.value)
}

func checkRequiredWith(c *call) bool {
	for _, f := range c.rule.params {
		if v, ok := propschema.Lookup(c.record, f); ok && filled(v) {
			return c.present && filled(c.value)
		}
	}
	return true
}

// checkRequiredWithout requires the field when any listed field is missing.
func checkRequiredWithout(c *call) bool {
	for _, f := range c.rule.params {
		if v, ok := propschema.Lookup(c.record, f); !ok || !filled(v) {
			return c.present && filled(c.value)
		}
	}
	return true
}

func otherMatches(c *call) bool {
	other, _ := propschema.Lookup(c.record, c.rule.params[0])
	return contains(c.rule.params[1:], propschema.TokenValue(other))
}

func checkAccepted(c *call) bool {
	switch v := c.value.(type) {
	case bool:
		return v
	case string:
		return contains([]string{"yes", "on", "1", "true"}, strings.ToLower(v))
	}
	f, ok := propschema.AsFloat(c.value)
	return ok && f == 1
}

func checkBoolean(c *call) bool {
	switch v := c.value.(type) {
	case bool:
		return true
	case string:
		return v == "0" || v == "1"
	}
	f, ok := propschema.AsFloat(c.value)
	return ok && (f == 0 || f == 1)
}

func checkArray(c *call) bool {
	tag := propschema.RuntimeTag(c.value)
	return tag == "array" || tag == "object"
}

func checkURL(c *call) bool {
	s, ok := c.value.(string)
	if !ok {
		return false
	}
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func checkSame(c *call) bool {
	other, _ := propschema.Lookup(c.record, c.rule.params[0])
	return propschema.StrictEqual(c.value, other)
}

// size returns the measured size of the value: the number itself for
// numbers (and numeric strings under a numeric rule), the rune count of a
// string, the length of a collection.
func (c *call) size() (float64, bool) {
	if f, ok := propschema.AsFloat(c.value); ok {
		return f, true
	}
	if s, ok := c.value.(string); ok {
		if c.numeric {
			return numeric(s)
		}
		return float64(utf8.RuneCountInString(s)), true
	}
	rv := reflect.ValueOf(c.value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return float64(rv.Len()), true
	}
	return 0, false
}

// ---------- helpers ----------

// filled mirrors "required": nil, blank strings and empty collections are
// missing; false and zero are values.
func filled(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

func numeric(v any) (float64, bool) {
	if f, ok := propschema.AsFloat(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

func isInteger(v any) bool {
	if propschema.RuntimeTag(v) == "integer" {
		return true
	}
	if s, ok := v.(string); ok {
		_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return err == nil
	}
	f, ok := propschema.AsFloat(v)
	return ok && f == float64(int64(f))
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// compileRegex accepts both bare expressions and delimited ones such as
// "/^[a-z]+$/i".
func compileRegex(expr string) (*regexp.Regexp, error) {
	if len(expr) >= 2 && expr[0] == '/' {
		if end := strings.LastIndexByte(expr, '/'); end > 0 {
			body, flags := expr[1:end], expr[end+1:]
			if strings.Trim(flags, "imsU") == "" {
				if flags != "" {
					body = "(?" + flags + ")" + body
				}
				expr = body
			}
		}
	}
	return regexp.Compile(expr)
}
