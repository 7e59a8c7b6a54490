package ui

import (
	"fmt"
	"io"
)

// PrintWelcome выводит шапку перед прогоном.
func PrintWelcome(w io.Writer, searchURL, email string, journal bool) {
	fmt.Fprintln(w, ColorBold+IconPlay+" Easy Apply"+ColorReset)
	fmt.Fprintln(w, ColorGray+IconGlobe+" "+searchURL+ColorReset)
	if email != "" {
		fmt.Fprintln(w, ColorGray+IconCog+" профиль: "+email+ColorReset)
	}
	if !journal {
		fmt.Fprintln(w, ColorGray+"журнал отключён (DB_HOST пуст)"+ColorReset)
	}
	fmt.Fprintln(w, ColorGray+"Ctrl+C - остановиться после текущей вакансии"+ColorReset)
	fmt.Fprintln(w)
}

// PrintSummary выводит итог прогона.
func PrintSummary(w io.Writer, applied int, errText string) {
	if errText != "" {
		fmt.Fprintf(w, ColorRed+IconCross+" прогон прерван: %s"+ColorReset+"\n", errText)
	}
	fmt.Fprintf(w, ColorCyan+IconWave+" отправлено заявок: %d"+ColorReset+"\n", applied)
}
