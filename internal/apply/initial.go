package apply

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"easyApply/internal/browser"
)

const initialFormSteps = 15

var spaces = regexp.MustCompile(`\s+`)

// NormalizeKey приводит текст вопроса к ключу карты готовых ответов.
func NormalizeKey(label string) string {
	key := spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), " ")
	if key == "" {
		return ""
	}
	switch {
	case strings.Contains(key, "années"), strings.Contains(key, "years"), strings.Contains(key, "experience"):
		return "years_of_experience"
	case strings.Contains(key, "salaire"), strings.Contains(key, "salary"):
		return "salary"
	case strings.Contains(key, "visa"), strings.Contains(key, "sponsorship"):
		return "visa"
	case strings.Contains(key, "linkedin"), strings.Contains(key, "url"):
		return "linkedin_url"
	}
	return clipRunes(key, 80)
}

// FindAnswer looks a question up in a prepared answer map: by normalized key
// first, then by substring match in either direction (keys in sorted order).
func FindAnswer(label string, formAnswers map[string]string) string {
	norm := NormalizeKey(label)
	if v, ok := formAnswers[norm]; ok && norm != "" {
		return v
	}

	keys := make([]string, 0, len(formAnswers))
	for k := range formAnswers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	l := strings.ToLower(label)
	for _, k := range keys {
		kl := strings.ToLower(k)
		if strings.Contains(l, kl) || strings.Contains(kl, l) {
			return formAnswers[k]
		}
	}
	return formAnswers[label]
}

// FillInitialForm is the simpler mode for callers with a prepared answer map:
// every visible control whose label matches a key gets that value, the resume
// is uploaded once, and the wizard advances until submission.
func (n *Navigator) FillInitialForm(ctx context.Context, formAnswers map[string]string) (Result, error) {
	n.filler.Reset()
	res := Result{State: StateContact}

	if err := n.drv.WaitVisible(ctx, n.rules.Modal, 12*time.Second); err != nil {
		res.Outcome, res.State = Abandoned, StateAborted
		return res, fmt.Errorf("%w: %v", ErrNoModal, err)
	}

	for res.Steps < initialFormSteps {
		res.Steps++
		if err := n.pause(ctx, time.Second, 3*time.Second); err != nil {
			return n.abort(ctx, res, err)
		}

		controls, err := n.drv.Controls(ctx, n.rules.Modal)
		if err != nil {
			return res, err
		}

		filled := false
		for _, c := range controls {
			ok, err := n.fillFromMap(ctx, c, formAnswers)
			if err != nil {
				n.log.Debug("поле не заполнено", zap.String("label", clipLabel(c.Label)), zap.Error(err))
				continue
			}
			filled = filled || ok
		}

		if n.HasValidationErrors(ctx) {
			n.log.Warn("ошибки валидации в форме, закрываю без сохранения", zap.Int("step", res.Steps))
			return n.abort(ctx, res, ErrValidation)
		}

		if n.submitIfVisible(ctx) {
			res.Outcome, res.State = Submitted, StateClosed
			return res, nil
		}

		if sel := n.rules.Within(n.rules.Next); n.drv.Visible(ctx, sel) {
			if err := n.pause(ctx, time.Second, 2*time.Second); err != nil {
				return n.abort(ctx, res, err)
			}
			if err := n.drv.Click(ctx, sel); err != nil {
				return res, err
			}
			res.State = StateQuestions
			continue
		}

		if !filled && res.Steps > 1 {
			n.log.Warn("нет ни Suivant, ни отправки; останавливаю заполнение")
			break
		}
	}
	return n.abort(ctx, res, ErrNoNextStep)
}

func (n *Navigator) fillFromMap(ctx context.Context, c browser.Control, formAnswers map[string]string) (bool, error) {
	if c.Kind == browser.KindFile {
		return n.filler.upload(ctx, c)
	}
	if prefilled(c) {
		return false, nil
	}

	answer := strings.TrimSpace(FindAnswer(c.Label, formAnswers))
	if answer == "" {
		return false, nil
	}
	if err := n.pause(ctx, 300*time.Millisecond, 800*time.Millisecond); err != nil {
		return false, err
	}

	switch c.Kind {
	case browser.KindText, browser.KindNumber, browser.KindTextarea:
		return true, n.drv.Fill(ctx, c.Selector, answer)
	case browser.KindSelect:
		return true, n.drv.SelectOption(ctx, c.Selector, answer)
	case browser.KindCheckbox:
		if !isAffirmative(answer) {
			return false, nil
		}
		return true, n.drv.Check(ctx, c.Selector)
	case browser.KindRadioGroup, browser.KindChoice:
		o, ok := PickYesNo(c.Options, answer)
		if !ok {
			return false, nil
		}
		return true, n.drv.Check(ctx, o.Selector)
	}
	return false, nil
}
