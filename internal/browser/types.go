package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ControlKind - тип элемента формы после классификации.
type ControlKind string

const (
	KindText          ControlKind = "text"
	KindNumber        ControlKind = "number"
	KindTextarea      ControlKind = "textarea"
	KindSelect        ControlKind = "select"
	KindRadioGroup    ControlKind = "radio-group"
	KindCheckbox      ControlKind = "checkbox"
	KindCheckboxGroup ControlKind = "checkbox-group"
	KindFile          ControlKind = "file"
	// KindChoice - кастомный виджет с data-test-text-selectable-option.
	KindChoice ControlKind = "choice"
)

// Option is one entry of a select, radio group, checkbox group or choice widget.
// Selector points at the element that has to be checked or clicked.
type Option struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	TestValue string `json:"testValue"`
	Selector  string `json:"selector"`
	Checked   bool   `json:"checked"`
}

// Control is a snapshot of one form control inside the application dialog.
// Selectors are valid until the next enumeration.
type Control struct {
	Selector  string      `json:"selector"`
	Kind      ControlKind `json:"kind"`
	Name      string      `json:"name"`
	Label     string      `json:"label"`
	Context   string      `json:"context"`
	Required  bool        `json:"required"`
	Value     string      `json:"value"`
	MaxLength int         `json:"maxLength"`
	Checked   bool        `json:"checked"`
	Options   []Option    `json:"options"`
}

type PlaywrightBrowser struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page
	cfg     Config
	mu      sync.RWMutex
}

type Config struct {
	Headless     bool
	UserDataDir  string
	BrowsersPath string
	Display      string
	Locale       string

	Timeout         time.Duration
	NavigateTimeout time.Duration
	ActionTimeout   time.Duration
}
