package handler

import (
	"fmt"
	"strings"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/service"
)

// listPending shows the occurrences without a submitted record inside the
// configured trailing window. Optional filters: "hoje" to include today,
// prof=<id>, mod=<id>.
func (h *Handler) listPending(chatID int64, args []string) {
	filter := service.PendingFilter{}
	for _, arg := range args {
		switch {
		case arg == "hoje":
			filter.IncludeToday = true
		case strings.HasPrefix(arg, "prof="):
			id, err := parseID(strings.TrimPrefix(arg, "prof="))
			if err != nil {
				h.send(chatID, "⚠️ "+err.Error())
				return
			}
			filter.TeacherID = &id
		case strings.HasPrefix(arg, "mod="):
			id, err := parseID(strings.TrimPrefix(arg, "mod="))
			if err != nil {
				h.send(chatID, "⚠️ "+err.Error())
				return
			}
			filter.ModalityID = &id
		default:
			h.send(chatID, fmt.Sprintf("⚠️ Filtro desconhecido %q. Use hoje, prof=<id> ou mod=<id>.", arg))
			return
		}
	}

	pending, err := h.reconciliationService.PendingInDefaultWindow(h.config.PendingWindowDays, filter)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if len(pending) == 0 {
		h.send(chatID, "✅ Nenhuma chamada pendente no período.")
		return
	}

	service.SortPendingForDisplay(pending)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 %d chamadas pendentes:\n\n", len(pending)))
	for _, p := range pending {
		sb.WriteString(fmt.Sprintf("• %s (%s) %s-%s %s", p.Date, weekdayName(p.Weekday), p.StartTime, p.EndTime, p.ModalityName))
		if p.TeacherName != "" {
			sb.WriteString(" — " + p.TeacherName)
		}
		sb.WriteString(fmt.Sprintf(" [horário %d]\n", p.SlotID))
	}
	h.send(chatID, sb.String())
}

// submitAttendance handles /presenca <slotID> <date> <aluno:marca ...>.
func (h *Handler) submitAttendance(chatID int64, args []string) {
	if len(args) < 2 {
		h.send(chatID, "⚠️ Uso: /presenca <horário> <data> <aluno:marca ...>")
		return
	}

	slotID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}
	marks, err := parseMarks(args[2:])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	record, err := h.attendanceService.Submit(service.SubmitInput{
		SlotID:      slotID,
		Date:        args[1],
		Marks:       marks,
		SubmittedBy: chatID,
	})
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, h.formatRecord(record, "✅ Chamada registrada"))
}

// amendAttendance handles /corrigir <recordID> <aluno:marca ...>.
func (h *Handler) amendAttendance(chatID int64, args []string) {
	if len(args) < 2 {
		h.send(chatID, "⚠️ Uso: /corrigir <registro> <aluno:marca ...>")
		return
	}

	recordID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}
	marks, err := parseMarks(args[1:])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	record, err := h.attendanceService.Amend(recordID, marks)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, h.formatRecord(record, "✏️ Chamada corrigida"))
}

// attendanceStatus handles /status <slotID> <date>.
func (h *Handler) attendanceStatus(chatID int64, args []string) {
	if len(args) != 2 {
		h.send(chatID, "⚠️ Uso: /status <horário> <data>")
		return
	}

	slotID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	record, err := h.attendanceService.Status(slotID, args[1])
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if record == nil || !record.IsSubmitted() {
		h.send(chatID, fmt.Sprintf("⏳ Aula de %s no horário %d ainda sem chamada.", args[1], slotID))
		return
	}

	h.send(chatID, h.formatRecord(record, "📄 Chamada"))
}

func (h *Handler) formatRecord(record *models.AttendanceRecord, title string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s #%d\n%s (%s) %s-%s %s\n", title, record.ID,
		record.Date, weekdayName(record.Weekday), record.StartTime, record.EndTime, record.ModalityName))
	sb.WriteString(fmt.Sprintf("Presenças: %d | Faltas: %d | Reposições: %d\n\n",
		record.Presences, record.Absences, record.GuestCount))

	for _, entry := range record.Entries {
		sb.WriteString(fmt.Sprintf("• %s (%d): %s", entry.StudentName, entry.StudentID,
			presenceLabel(entry.Present, entry.NotifiedAbsence)))
		if entry.IsRescheduleGuest {
			sb.WriteString(" [reposição]")
		} else if entry.StatusSnapshot != models.PauseNone {
			sb.WriteString(" [" + entry.StatusSnapshot + "]")
		}
		if entry.ObservationTag != "" {
			sb.WriteString(" — " + entry.ObservationTag)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
