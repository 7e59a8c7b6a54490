package ui

// FormatOutcome возвращает иконку, цвет и текст для исхода попытки подачи.
func FormatOutcome(outcome string) (icon, color, text string) {
	switch outcome {
	case "submitted":
		return IconCheckmark, ColorGreen, "отправлена"
	case "abandoned":
		return IconCross, ColorRed, "отменена (валидация)"
	case "incomplete":
		return IconStop, ColorYellow, "не дошли до отправки"
	case "skipped":
		return IconSkip, ColorGray, "пропущена"
	default:
		return IconSkip, ColorGray, outcome
	}
}

// FormatRunStatus - то же для статуса прогона.
func FormatRunStatus(status string) (icon, color, text string) {
	switch status {
	case "daily_limit":
		return IconStop, ColorYellow, "дневной лимит"
	case "stopped":
		return IconStop, ColorCyan, "остановлен"
	case "failed":
		return IconCross, ColorRed, "ошибка"
	case "running":
		return IconPlay, ColorCyan, "выполняется"
	default:
		return IconSkip, ColorGray, status
	}
}
