package handler

import (
	"fmt"
	"strings"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/pkg/dates"
)

// addHoliday handles /feriado <date> <name...>.
func (h *Handler) addHoliday(chatID int64, args []string) {
	if len(args) < 2 {
		h.send(chatID, "⚠️ Uso: /feriado <data> <nome>")
		return
	}
	if !dates.IsISO(args[0]) {
		h.send(chatID, fmt.Sprintf("⚠️ Data inválida %q, use AAAA-MM-DD.", args[0]))
		return
	}

	name := strings.Join(args[1:], " ")
	if err := h.holidayService.AddCustomDate(args[0], name); err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("📅 %s marcado como fechado (%s). Aulas desse dia não ficam pendentes.", args[0], name))
}

// removeHoliday handles /feriado_remover <date>.
func (h *Handler) removeHoliday(chatID int64, args []string) {
	if len(args) != 1 {
		h.send(chatID, "⚠️ Uso: /feriado_remover <data>")
		return
	}
	if !dates.IsISO(args[0]) {
		h.send(chatID, fmt.Sprintf("⚠️ Data inválida %q, use AAAA-MM-DD.", args[0]))
		return
	}

	if err := h.holidayService.RemoveDate(args[0]); err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("📅 %s reaberto. Aulas desse dia voltam a contar.", args[0]))
}

// listHolidays handles /feriados.
func (h *Handler) listHolidays(chatID int64) {
	holidays, err := h.holidayService.ListAll()
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if len(holidays) == 0 {
		h.send(chatID, "Nenhuma data fechada cadastrada.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 Datas fechadas:\n\n")
	for _, holiday := range holidays {
		sb.WriteString(fmt.Sprintf("• %s — %s", holiday.Date, holiday.Name))
		if holiday.Source == models.HolidaySourceCustom {
			sb.WriteString(" (estúdio)")
		}
		sb.WriteString("\n")
	}
	h.send(chatID, sb.String())
}
