package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// controlsJS размечает элементы внутри root атрибутом data-ea-id и возвращает
// JSON-массив Control. Разметка снимается при каждом вызове.
const controlsJS = `root => {
	document.querySelectorAll('[data-ea-id]').forEach(n => n.removeAttribute('data-ea-id'));
	let seq = 0;
	const tag = el => {
		let id = el.getAttribute('data-ea-id');
		if (!id) {
			id = 'ea' + (seq++);
			el.setAttribute('data-ea-id', id);
		}
		return '[data-ea-id="' + id + '"]';
	};
	const text = el => ((el && (el.innerText || el.textContent)) || '').trim();
	const visible = el => !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length) && getComputedStyle(el).visibility !== 'hidden';
	const labelOf = el => {
		if (el.id) {
			const l = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (l && text(l)) return text(l);
		}
		let p = el.parentElement;
		for (let i = 0; i < 8 && p; i++) {
			const l = p.querySelector('label');
			if (l) return text(l);
			const lg = p.querySelector('legend');
			if (lg) return text(lg);
			p = p.parentElement;
		}
		return el.getAttribute('placeholder') || el.getAttribute('aria-label') || '';
	};
	const required = (el, label) => el.required === true || el.getAttribute('aria-required') === 'true' || label.indexOf('*') !== -1;
	const maxLength = el => {
		const m = parseInt(el.getAttribute('maxlength') || '', 10);
		if (m > 0) return m;
		const ids = (el.getAttribute('aria-describedby') || '').split(/\s+/).filter(Boolean);
		let best = 0;
		for (const id of ids) {
			const node = document.getElementById(id);
			for (const d of ((node && node.innerText) || '').match(/\d+/g) || []) best = Math.max(best, Number(d));
		}
		return best;
	};
	const block = el => el.closest('fieldset') || el.closest('[role="group"]') || el.closest('.fb-dash-form-element') || el.closest('[class*="form-element"]') || (el.parentElement && el.parentElement.parentElement);
	const inGroup = el => !!el.closest('fieldset[data-test-checkbox-form-component]');
	const optionLabel = o => {
		const l = o.querySelector('[data-test-text-selectable-option__label]') || o;
		return ((l.getAttribute && l.getAttribute('data-test-text-selectable-option__label')) || text(l)).trim();
	};
	const out = [];

	root.querySelectorAll('input[type="number"], input[type="text"], textarea').forEach(el => {
		if (!visible(el)) return;
		const label = labelOf(el);
		const kind = el.tagName === 'TEXTAREA' ? 'textarea' : (el.type === 'number' ? 'number' : 'text');
		out.push({selector: tag(el), kind, name: el.name || '', label, required: required(el, label), value: el.value || '', maxLength: maxLength(el)});
	});

	root.querySelectorAll('select').forEach(el => {
		if (!visible(el)) return;
		const label = labelOf(el);
		const cur = el.options[el.selectedIndex];
		const options = [...el.options].map(o => ({label: text(o), value: o.value || ''}));
		out.push({selector: tag(el), kind: 'select', name: el.name || '', label, required: required(el, label), value: (el.value || '').trim() ? text(cur) : '', options});
	});

	root.querySelectorAll('input[type="file"]').forEach(el => {
		out.push({selector: tag(el), kind: 'file', name: el.name || '', label: labelOf(el)});
	});

	root.querySelectorAll('input[type="checkbox"]').forEach(el => {
		if (inGroup(el)) return;
		const l = el.closest('label') || (el.id && document.querySelector('label[for="' + CSS.escape(el.id) + '"]'));
		const context = (text(l) || text(block(el))).substring(0, 300);
		out.push({selector: tag(el), kind: 'checkbox', name: el.name || '', label: text(l), context, checked: el.checked});
	});

	root.querySelectorAll('fieldset[data-test-checkbox-form-component]').forEach(fs => {
		const options = [...fs.querySelectorAll('[data-test-text-selectable-option]')].map(o => {
			const input = o.querySelector('input[type="checkbox"]');
			return {label: optionLabel(o), value: input ? input.value : '', selector: tag(input || o), checked: !!(input && input.checked)};
		});
		const req = !!fs.querySelector('[class*="is-required"]') || !!fs.getAttribute('aria-describedby');
		out.push({selector: tag(fs), kind: 'checkbox-group', label: text(fs.querySelector('legend')), required: req, options});
	});

	const blocks = new Map();
	root.querySelectorAll('[data-test-text-selectable-option]').forEach(o => {
		if (inGroup(o)) return;
		const b = block(o);
		if (!b) return;
		if (!blocks.has(b)) blocks.set(b, []);
		blocks.get(b).push(o);
	});
	blocks.forEach((opts, b) => {
		const question = text(b).substring(0, 250);
		const req = question.indexOf('*') >= 0 || !!b.querySelector('[class*="is-required"]') || !!b.querySelector('input[aria-required="true"]');
		let name = '';
		const options = opts.map(o => {
			const input = o.querySelector('input');
			if (input && !name) name = input.name || '';
			return {
				label: optionLabel(o),
				value: input ? input.value : '',
				testValue: input ? (input.getAttribute('data-test-text-selectable-option__input') || '') : '',
				selector: tag(input || o.querySelector('[data-test-text-selectable-option__label]') || o),
				checked: !!(input && input.checked),
			};
		}).filter(o => o.label);
		out.push({selector: tag(b), kind: 'choice', name, label: question, context: question, required: req, options});
	});

	const groupQuestion = el => {
		let p = el.closest('fieldset') || el.closest('[role="group"]') || el.parentElement;
		for (let i = 0; i < 12 && p; i++) {
			const lg = p.querySelector('legend');
			if (lg && text(lg).length > 10) return text(lg);
			for (const l of p.querySelectorAll('label')) {
				if (text(l).length > 20 && !l.contains(el)) return text(l);
			}
			p = p.parentElement;
		}
		return '';
	};
	const radios = new Map();
	root.querySelectorAll('input[type="radio"]').forEach(el => {
		const key = el.name || ('#' + radios.size);
		if (!radios.has(key)) radios.set(key, []);
		radios.get(key).push(el);
	});
	radios.forEach((els, key) => {
		const first = els[0];
		const question = groupQuestion(first);
		const context = text(block(first));
		const req = question.indexOf('*') >= 0 || context.indexOf('*') >= 0 || els.some(e => e.getAttribute('aria-required') === 'true');
		const options = els.map(e => {
			const l = e.closest('label') || (e.id && document.querySelector('label[for="' + CSS.escape(e.id) + '"]'));
			return {
				label: text(l) || e.getAttribute('aria-label') || '',
				value: e.value || '',
				testValue: e.getAttribute('data-test-text-selectable-option__input') || '',
				selector: tag(e),
				checked: e.checked,
			};
		});
		out.push({selector: options[0].selector, kind: 'radio-group', name: first.name || '', label: question, context, required: req, options});
	});

	return JSON.stringify(out);
}`

// checkJS - запасной путь, когда нативный input скрыт стилями сайта.
const checkJS = `el => {
	if (el.tagName === 'INPUT') {
		el.scrollIntoView({block: 'center'});
		el.checked = true;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		el.dispatchEvent(new Event('input', { bubbles: true }));
		return true;
	}
	el.click();
	return true;
}`

// selectFuzzyJS выбирает первую опцию, текст которой содержит ответ или содержится в нём.
const selectFuzzyJS = `(el, answer) => {
	const a = (answer || '').toLowerCase();
	for (const o of el.options) {
		const t = (o.textContent || '').trim().toLowerCase();
		if (t && (t.includes(a) || a.includes(t))) {
			el.value = o.value;
			el.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		}
	}
	return false;
}`

// Controls enumerates the form controls inside the first element matching scope.
func (b *PlaywrightBrowser) Controls(ctx context.Context, scope string) ([]Control, error) {
	loc, err := b.locator(scope)
	if err != nil {
		return nil, err
	}

	res, err := loc.Evaluate(controlsJS, nil)
	if err != nil {
		return nil, fmt.Errorf("перечисление полей: %w", err)
	}
	raw, ok := res.(string)
	if !ok {
		return nil, fmt.Errorf("перечисление полей: неожиданный ответ %T", res)
	}

	var controls []Control
	if err := json.Unmarshal([]byte(raw), &controls); err != nil {
		return nil, fmt.Errorf("разбор полей: %w", err)
	}
	return controls, nil
}

func (b *PlaywrightBrowser) Fill(ctx context.Context, selector, value string) error {
	loc, err := b.locator(selector)
	if err != nil {
		return err
	}
	return loc.Fill(value, playwright.LocatorFillOptions{Timeout: playwright.Float(5000)})
}

// SelectOption tries the option value, then the visible label, then a fuzzy
// text match done in the page.
func (b *PlaywrightBrowser) SelectOption(ctx context.Context, selector, option string) error {
	loc, err := b.locator(selector)
	if err != nil {
		return err
	}
	timeout := playwright.Float(3000)

	if _, err := loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{option}}, playwright.LocatorSelectOptionOptions{Timeout: timeout}); err == nil {
		return nil
	}
	if _, err := loc.SelectOption(playwright.SelectOptionValues{Labels: &[]string{option}}, playwright.LocatorSelectOptionOptions{Timeout: timeout}); err == nil {
		return nil
	}

	res, err := loc.Evaluate(selectFuzzyJS, option)
	if err != nil {
		return fmt.Errorf("выбор %q: %w", option, err)
	}
	if ok, _ := res.(bool); !ok {
		return fmt.Errorf("выбор %q: опция не найдена", option)
	}
	return nil
}

// Check отмечает checkbox/radio; если элемент скрыт, выставляет checked через JS.
func (b *PlaywrightBrowser) Check(ctx context.Context, selector string) error {
	loc, err := b.locator(selector)
	if err != nil {
		return err
	}

	err = loc.Check(playwright.LocatorCheckOptions{Timeout: playwright.Float(4000)})
	if err == nil {
		return nil
	}
	if _, jsErr := loc.Evaluate(checkJS, nil); jsErr != nil {
		return fmt.Errorf("отметка %s: %w", short(selector), err)
	}
	return nil
}

func (b *PlaywrightBrowser) SetFiles(ctx context.Context, selector, path string) error {
	loc, err := b.locator(selector)
	if err != nil {
		return err
	}
	return loc.SetInputFiles(path, playwright.LocatorSetInputFilesOptions{Timeout: playwright.Float(10000)})
}
