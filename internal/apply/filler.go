package apply

import (
	"context"
	"math/rand/v2"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"easyApply/internal/answers"
	"easyApply/internal/browser"
	"easyApply/internal/config"
)

type settings struct {
	rules  Ruleset
	pause  PauseFunc
	log    *zap.Logger
	picker Picker
	resume string
	intn   func(n int) int

	formAnswers map[string]string
}

type Option func(*settings)

func WithRuleset(r Ruleset) Option {
	return func(s *settings) { s.rules = r }
}

func WithPause(p PauseFunc) Option {
	return func(s *settings) { s.pause = p }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithPicker включает выбор варианта через LLM, когда ответ не совпал ни с одной опцией.
func WithPicker(p Picker) Option {
	return func(s *settings) { s.picker = p }
}

// WithResume задаёт файл резюме для полей загрузки.
func WithResume(path string) Option {
	return func(s *settings) { s.resume = path }
}

// WithRandom подменяет источник случайного выбора (для тестов).
func WithRandom(intn func(n int) int) Option {
	return func(s *settings) { s.intn = intn }
}

// WithFormAnswers переключает Apply в режим готовых ответов (FillInitialForm).
func WithFormAnswers(m map[string]string) Option {
	return func(s *settings) { s.formAnswers = m }
}

func newSettings(opts []Option) settings {
	s := settings{
		rules: DefaultRuleset(),
		pause: defaultPause(),
		log:   zap.NewNop(),
		intn:  rand.IntN,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Filler fills the required controls of one wizard step. Controls that
// already hold a value are never touched.
type Filler struct {
	drv Driver
	res Resolver
	settings

	uploaded bool
}

func NewFiller(drv Driver, res Resolver, opts ...Option) *Filler {
	return &Filler{
		drv:      drv,
		res:      res,
		settings: newSettings(opts),
	}
}

// Reset начинает новую последовательность шагов: резюме снова можно загрузить один раз.
func (f *Filler) Reset() {
	f.uploaded = false
}

// FillStep enumerates the current step and fills it in a fixed order:
// uploads, text fields, selects, consent boxes, checkbox groups, custom
// choice widgets, native radio groups. It returns the number of controls changed.
func (f *Filler) FillStep(ctx context.Context) (int, error) {
	controls, err := f.drv.Controls(ctx, f.rules.Modal)
	if err != nil {
		return 0, err
	}

	filled := 0
	run := func(kind string, c browser.Control, fn func(context.Context, browser.Control) (bool, error)) error {
		ok, err := fn(ctx, c)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Debug("поле не заполнено", zap.String("kind", kind), zap.String("label", clipLabel(c.Label)), zap.Error(err))
			return nil
		}
		if ok {
			filled++
		}
		return nil
	}

	passes := []struct {
		kinds []browser.ControlKind
		fn    func(context.Context, browser.Control) (bool, error)
	}{
		{[]browser.ControlKind{browser.KindFile}, f.upload},
		{[]browser.ControlKind{browser.KindText, browser.KindNumber, browser.KindTextarea}, f.fillText},
		{[]browser.ControlKind{browser.KindSelect}, f.fillSelect},
		{[]browser.ControlKind{browser.KindCheckbox}, f.fillConsent},
		{[]browser.ControlKind{browser.KindCheckboxGroup}, f.fillCheckboxGroup},
	}
	for _, p := range passes {
		for _, c := range controls {
			if !kindIn(c.Kind, p.kinds) {
				continue
			}
			if err := run(string(c.Kind), c, p.fn); err != nil {
				return filled, err
			}
		}
	}

	// Радио внутри кастомных виджетов уже обработаны - не трогаем их второй раз.
	handled := map[string]bool{}
	seen := map[string]bool{}
	for _, c := range controls {
		if c.Kind != browser.KindChoice {
			continue
		}
		err := run(string(c.Kind), c, func(ctx context.Context, c browser.Control) (bool, error) {
			return f.fillChoice(ctx, c, seen, handled)
		})
		if err != nil {
			return filled, err
		}
	}
	for _, c := range controls {
		if c.Kind != browser.KindRadioGroup {
			continue
		}
		err := run(string(c.Kind), c, func(ctx context.Context, c browser.Control) (bool, error) {
			return f.fillRadio(ctx, c, handled)
		})
		if err != nil {
			return filled, err
		}
	}

	return filled, nil
}

func (f *Filler) upload(ctx context.Context, c browser.Control) (bool, error) {
	if f.resume == "" || f.uploaded {
		return false, nil
	}
	if _, err := os.Stat(f.resume); err != nil {
		return false, nil
	}
	if err := f.drv.SetFiles(ctx, c.Selector, f.resume); err != nil {
		return false, err
	}
	f.uploaded = true
	f.log.Info("резюме загружено в форму")
	return true, nil
}

func (f *Filler) fillText(ctx context.Context, c browser.Control) (bool, error) {
	if !c.Required || strings.TrimSpace(c.Value) != "" {
		return false, nil
	}

	label := strings.TrimSpace(c.Label)
	ans := f.res.Resolve(ctx, answers.Query{Label: label, AllowGenerative: true})
	value := CoerceText(c.Kind, label, ans.Value, c.MaxLength, f.res.Policy(), f.res.Profile())

	if err := f.drv.Fill(ctx, c.Selector, value); err != nil {
		return false, err
	}
	f.log.Debug("заполнено обязательное поле", zap.String("label", clipLabel(label)), zap.String("value", clipLabel(value)))

	if isCityField(label) && strings.TrimSpace(ans.Value) == strings.TrimSpace(f.res.Profile().City) {
		f.pickTypeahead(ctx)
	}
	return true, nil
}

// pickTypeahead выбирает первую подсказку автодополнения города, если она появилась.
func (f *Filler) pickTypeahead(ctx context.Context) {
	if err := f.pause(ctx, 1200*time.Millisecond, 1200*time.Millisecond); err != nil {
		return
	}
	sel := f.rules.Within(f.rules.Typeahead)
	if f.drv.Count(ctx, sel) == 0 {
		return
	}
	if err := f.drv.Click(ctx, sel); err == nil {
		f.log.Debug("город выбран из подсказок")
	}
}

func (f *Filler) fillSelect(ctx context.Context, c browser.Control) (bool, error) {
	if !c.Required {
		return false, nil
	}
	if v := strings.TrimSpace(c.Value); v != "" && !isPlaceholder(v) {
		return false, nil
	}
	opts := realOptions(c.Options)
	if len(opts) == 0 {
		return false, nil
	}

	label := strings.TrimSpace(c.Label)
	choice := f.chooseOption(ctx, label, opts)
	if err := f.drv.SelectOption(ctx, c.Selector, choice); err != nil {
		return false, err
	}
	f.log.Debug("выбрано значение списка", zap.String("label", clipLabel(label)), zap.String("value", choice))
	return true, nil
}

// chooseOption always returns a member of opts: resolved answer, Oui/Non
// mapping, model pick, then a uniform random option.
func (f *Filler) chooseOption(ctx context.Context, label string, opts []string) string {
	if strings.Contains(strings.ToLower(label), "legal status") {
		for _, pref := range legalStatusChoices {
			for _, o := range opts {
				if strings.TrimSpace(o) == pref {
					return o
				}
			}
		}
	}

	ans := f.res.Resolve(ctx, answers.Query{Label: label, AllowGenerative: true}).Value
	if m, ok := MatchOption(ans, opts); ok {
		return m
	}

	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "yes", "no":
		want := "non"
		if strings.EqualFold(strings.TrimSpace(ans), "yes") {
			want = "oui"
		}
		for _, o := range opts {
			if strings.ToLower(strings.TrimSpace(o)) == want {
				return o
			}
		}
	}

	if f.picker != nil {
		if choice, ok := f.picker.PickOption(ctx, label, opts); ok {
			for _, o := range opts {
				if o == choice {
					return o
				}
			}
		}
	}
	return opts[f.intn(len(opts))]
}

func (f *Filler) fillConsent(ctx context.Context, c browser.Control) (bool, error) {
	if c.Checked {
		return false, nil
	}
	text := strings.ToLower(strings.TrimSpace(c.Context))
	if text == "" || !containsAny(text, consentKeywords) {
		return false, nil
	}
	if err := f.drv.Check(ctx, c.Selector); err != nil {
		return false, err
	}
	f.log.Debug("отмечено согласие", zap.String("context", clipLabel(text)))
	return true, nil
}

func (f *Filler) fillCheckboxGroup(ctx context.Context, c browser.Control) (bool, error) {
	if !c.Required || len(c.Options) == 0 || anyChecked(c.Options) {
		return false, nil
	}

	pick := c.Options[f.intn(len(c.Options))]
	if ref := strings.ToLower(strings.TrimSpace(f.res.Policy().ReferralSource)); ref != "" {
		for _, o := range c.Options {
			if strings.Contains(strings.ToLower(o.Label), ref) {
				pick = o
				break
			}
		}
	}

	if err := f.drv.Check(ctx, pick.Selector); err != nil {
		return false, err
	}
	f.log.Debug("отмечен вариант обязательной группы", zap.String("option", pick.Label))
	return true, nil
}

func (f *Filler) fillChoice(ctx context.Context, c browser.Control, seen, handled map[string]bool) (bool, error) {
	key := clipRunes(strings.TrimSpace(c.Label), 100)
	if key == "" || seen[key] || !c.Required {
		return false, nil
	}
	seen[key] = true
	if c.Name != "" {
		handled[c.Name] = true
	}
	if len(c.Options) == 0 || anyChecked(c.Options) {
		return false, nil
	}

	opt := f.chooseChoice(c)
	if err := f.drv.Check(ctx, opt.Selector); err != nil {
		return false, err
	}
	f.log.Debug("выбран вариант", zap.String("question", clipLabel(key)), zap.String("option", opt.Label))
	return true, nil
}

// chooseChoice: policy overrides, then relocation preference for location
// questions, then the affirmative option, then the first one.
func (f *Filler) chooseChoice(c browser.Control) browser.Option {
	q := strings.ToLower(c.Label)

	if want, ok := f.override(q); ok {
		if o, ok := PickYesNo(c.Options, want); ok {
			return o
		}
	}
	if containsAny(q, locationWords) {
		for _, o := range c.Options {
			if containsAny(strings.ToLower(o.Label), relocationWords) {
				return o
			}
		}
	}
	for _, o := range c.Options {
		ll := strings.ToLower(strings.TrimSpace(o.Label))
		if (strings.Contains(ll, "yes") || strings.Contains(ll, "oui")) && ll != "no" && !strings.HasPrefix(ll, "no/") {
			return o
		}
	}
	return c.Options[0]
}

func (f *Filler) override(q string) (string, bool) {
	if a, ok := f.res.Authorization(q); ok {
		return a, true
	}
	if containsAny(q, backgroundWords) {
		return orDefault(f.res.Policy().BackgroundCheck, "Yes"), true
	}
	return "", false
}

func (f *Filler) fillRadio(ctx context.Context, c browser.Control, handled map[string]bool) (bool, error) {
	if c.Name != "" {
		if handled[c.Name] {
			return false, nil
		}
		handled[c.Name] = true
	}
	if !c.Required || len(c.Options) == 0 || anyChecked(c.Options) {
		return false, nil
	}

	opt, how := f.chooseRadio(ctx, c)
	if err := f.drv.Check(ctx, opt.Selector); err != nil {
		return false, err
	}
	f.log.Debug("отмечен radio", zap.String("question", clipLabel(c.Label)), zap.String("option", opt.Label), zap.String("by", how))
	return true, nil
}

func (f *Filler) chooseRadio(ctx context.Context, c browser.Control) (browser.Option, string) {
	combined := strings.ToLower(strings.TrimSpace(c.Label + " " + c.Context))
	if a, ok := f.res.Authorization(combined); ok {
		if o, ok := PickYesNo(c.Options, a); ok {
			return o, string(answers.FromAuthorization)
		}
	}

	question := strings.TrimSpace(c.Label)
	if question == "" {
		question = strings.TrimSpace(c.Context)
	}
	ans := f.res.Resolve(ctx, answers.Query{Label: question, AllowGenerative: true})
	affirmative := orDefault(f.res.Policy().Affirmative, "Yes")
	value := strings.TrimSpace(ans.Value)
	if value == "" {
		value = affirmative
	}

	if isYesNo(value) {
		if o, ok := PickYesNo(c.Options, value); ok {
			return o, string(ans.Provenance)
		}
	} else {
		vl := strings.ToLower(value)
		for _, o := range c.Options {
			ol := strings.ToLower(strings.TrimSpace(o.Label))
			if ol != "" && (strings.Contains(ol, vl) || strings.Contains(vl, ol)) {
				return o, string(ans.Provenance)
			}
		}
	}

	if o, ok := PickYesNo(c.Options, affirmative); ok {
		return o, string(answers.FromDefault)
	}
	return c.Options[0], string(answers.FromDefault)
}

var numericRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// CoerceText turns a resolved answer into something the field accepts:
// rating fields get a positive decimal, years fields a whole number, empty
// answers the configured filler repeated up to the field's length limit.
func CoerceText(kind browser.ControlKind, label, answer string, maxLen int, policy config.Policy, profile config.Profile) string {
	lower := strings.ToLower(label)
	decimal := containsAny(lower, ratingFieldWords)
	whole := strings.Contains(lower, "years") && strings.Contains(lower, "experience") && !decimal
	isNumber := kind == browser.KindNumber
	fallback := orDefault(policy.TextFallback, "none")
	years := orDefault(profile.YearsDefault, "3")

	v := strings.TrimSpace(answer)
	if v == "" || (v == "N/A" && kind == browser.KindTextarea) {
		switch {
		case decimal:
			v = ratingValue(lower, policy)
		case isNumber && whole:
			v = years
		case isNumber:
			v = "0"
		default:
			v = fallback
		}
	}

	if decimal {
		if !numericRe.MatchString(v) {
			v = ratingValue(lower, policy)
		} else if n, err := strconv.ParseFloat(v, 64); err != nil || n < 0.1 {
			v = ratingValue(lower, policy)
		}
	}
	if whole && numericRe.MatchString(v) {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			v = strconv.Itoa(int(n))
		}
	}
	if isNumber && !numericRe.MatchString(v) {
		v = "0"
		if whole {
			v = years
		}
	}

	if !isNumber && maxLen > 0 && strings.EqualFold(v, fallback) && len(v) != maxLen {
		v = RepeatFiller(fallback, maxLen)
	}
	return v
}

// RepeatFiller повторяет слово через пробел и обрезает результат до max символов.
func RepeatFiller(word string, max int) string {
	if max <= 0 || word == "" {
		return word
	}
	unit := word + " "
	s := strings.Repeat(unit, max/len(unit)+1)
	return s[:max]
}

func ratingValue(lower string, policy config.Policy) string {
	if strings.Contains(lower, "frontend") || strings.Contains(lower, "backend") {
		return orDefault(policy.RatingStrong, "8.0")
	}
	return orDefault(policy.RatingDefault, "5.0")
}

// MatchOption maps an answer onto the option list by case-insensitive
// equality or containment in either direction.
func MatchOption(answer string, opts []string) (string, bool) {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" {
		return "", false
	}
	for _, o := range opts {
		ol := strings.ToLower(strings.TrimSpace(o))
		if ol == "" {
			continue
		}
		if ol == a || strings.Contains(ol, a) || strings.Contains(a, ol) {
			return o, true
		}
	}
	return "", false
}

// PickYesNo finds the option that means want ("Yes"/"No", "Oui"/"Non").
// The site marks them by data-test value, by value 1/0 or by the label text.
func PickYesNo(opts []browser.Option, want string) (browser.Option, bool) {
	if !isYesNo(want) {
		if m, ok := MatchOption(want, optionLabels(opts)); ok {
			for _, o := range opts {
				if o.Label == m {
					return o, true
				}
			}
		}
		return browser.Option{}, false
	}

	yes := isAffirmative(want)
	test, num := "No", "0"
	words := []string{"no", "non"}
	if yes {
		test, num = "Yes", "1"
		words = []string{"yes", "oui"}
	}

	for _, o := range opts {
		if strings.EqualFold(o.TestValue, test) {
			return o, true
		}
	}
	for _, o := range opts {
		if o.Value == num || strings.EqualFold(o.Value, test) {
			return o, true
		}
	}
	for _, o := range opts {
		w := firstWord(o.Label)
		for _, want := range words {
			if w == want {
				return o, true
			}
		}
	}
	return browser.Option{}, false
}

func isYesNo(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "no", "oui", "non":
		return true
	}
	return false
}

func isAffirmative(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "oui", "1", "true":
		return true
	}
	return false
}

func firstWord(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	if end < 0 {
		return s
	}
	return s[:end]
}

func realOptions(opts []browser.Option) []string {
	var out []string
	for _, o := range opts {
		l := strings.TrimSpace(o.Label)
		if l == "" || isPlaceholder(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func optionLabels(opts []browser.Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Label)
	}
	return out
}

func isPlaceholder(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, p := range selectPlaceholders {
		if t == p {
			return true
		}
	}
	return false
}

func isCityField(label string) bool {
	l := strings.ToLower(label)
	return strings.Contains(l, "location") && strings.Contains(l, "city")
}

// prefilled reports controls the page (or the user) already answered.
func prefilled(c browser.Control) bool {
	switch c.Kind {
	case browser.KindFile:
		return false
	case browser.KindCheckbox:
		return c.Checked
	case browser.KindRadioGroup, browser.KindChoice, browser.KindCheckboxGroup:
		return c.Checked || anyChecked(c.Options)
	case browser.KindSelect:
		v := strings.TrimSpace(c.Value)
		return v != "" && !isPlaceholder(v)
	}
	return strings.TrimSpace(c.Value) != ""
}

func anyChecked(opts []browser.Option) bool {
	for _, o := range opts {
		if o.Checked {
			return true
		}
	}
	return false
}

func kindIn(k browser.ControlKind, kinds []browser.ControlKind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func clipRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func clipLabel(s string) string {
	return clipRunes(s, 50)
}
