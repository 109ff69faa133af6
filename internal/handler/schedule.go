package handler

import (
	"fmt"
	"strconv"
	"strings"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/service"
	"studio-schedule-bot/pkg/dates"
)

// createSlot handles /horario <dia 0-6> <início> <fim> <modalidade> [professor].
func (h *Handler) createSlot(chatID int64, args []string) {
	if len(args) < 4 {
		h.send(chatID, "⚠️ Use: /horario <dia 0-6> <início> <fim> <modalidade> [professor]")
		return
	}

	weekday, err := strconv.Atoi(args[0])
	if err != nil || weekday < 0 || weekday > 6 {
		h.send(chatID, "⚠️ Dia da semana deve ser 0 (domingo) a 6 (sábado).")
		return
	}
	if !dates.ValidClock(args[1]) || !dates.ValidClock(args[2]) {
		h.send(chatID, "⚠️ Horários devem estar no formato HH:MM.")
		return
	}
	modalityID, err := parseID(args[3])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	input := service.CreateSlotInput{
		Weekday:    weekday,
		StartTime:  args[1],
		EndTime:    args[2],
		ModalityID: modalityID,
	}
	if len(args) > 4 {
		teacherID, err := parseID(args[4])
		if err != nil {
			h.send(chatID, "⚠️ "+err.Error())
			return
		}
		input.TeacherID = &teacherID
	}

	slot, err := h.scheduleService.CreateSlot(input)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, fmt.Sprintf("✅ Horário %d criado: %s %s-%s.",
		slot.ID, weekdayName(slot.Weekday), slot.StartTime, slot.EndTime))
}

// listSlots handles /horarios; "todos" also shows deactivated slots.
func (h *Handler) listSlots(chatID int64, args []string) {
	includeInactive := len(args) > 0 && args[0] == "todos"

	var slots []*models.RecurringSlot
	var err error
	if includeInactive {
		slots, err = h.scheduleService.AllSlots()
	} else {
		slots, err = h.scheduleService.ActiveSlots()
	}
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if len(slots) == 0 {
		h.send(chatID, "A grade está vazia.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🗓 Grade:\n\n")
	for _, slot := range slots {
		sb.WriteString(fmt.Sprintf("• %s %s-%s %s", weekdayName(slot.Weekday), slot.StartTime, slot.EndTime, slot.Modality.Name))
		if slot.Teacher != nil {
			sb.WriteString(" — " + slot.Teacher.Name)
		}
		sb.WriteString(fmt.Sprintf(" [horário %d]", slot.ID))
		if !slot.Active {
			sb.WriteString(" (desativado)")
		}
		sb.WriteString("\n")
	}
	h.send(chatID, sb.String())
}

// editSlot handles /horario_editar <horário> <início> <fim>.
func (h *Handler) editSlot(chatID int64, args []string) {
	if len(args) != 3 {
		h.send(chatID, "⚠️ Use: /horario_editar <horário> <início> <fim>")
		return
	}
	slotID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	slot, err := h.scheduleService.UpdateSlotTimes(slotID, args[1], args[2])
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Horário %d agora é %s %s-%s.",
		slot.ID, weekdayName(slot.Weekday), slot.StartTime, slot.EndTime))
}

func (h *Handler) deactivateSlot(chatID int64, args []string) {
	if len(args) != 1 {
		h.send(chatID, "⚠️ Use: /desativar_horario <horário>")
		return
	}
	slotID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	if err := h.scheduleService.DeactivateSlot(slotID); err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Horário %d desativado. Aulas já registradas são mantidas.", slotID))
}

func (h *Handler) createModality(chatID int64, args []string) {
	if len(args) == 0 {
		h.send(chatID, "⚠️ Use: /modalidade <nome>")
		return
	}

	modality, err := h.scheduleService.CreateModality(strings.Join(args, " "))
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Modalidade %q criada (id %d).", modality.Name, modality.ID))
}

// createTeacher handles /professor <nome> [chat]. A trailing numeric
// argument is taken as the teacher's Telegram chat id, which also grants
// bot access.
func (h *Handler) createTeacher(chatID int64, args []string) {
	if len(args) == 0 {
		h.send(chatID, "⚠️ Use: /professor <nome> [chat]")
		return
	}

	var teacherChat *int64
	if len(args) > 1 {
		if id, err := strconv.ParseInt(args[len(args)-1], 10, 64); err == nil {
			teacherChat = &id
			args = args[:len(args)-1]
		}
	}

	teacher, err := h.scheduleService.CreateTeacher(strings.Join(args, " "), teacherChat)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	reply := fmt.Sprintf("✅ Professor(a) %s cadastrado(a) (id %d).", teacher.Name, teacher.ID)
	if teacherChat != nil {
		reply += " O chat informado já tem acesso ao bot."
	}
	h.send(chatID, reply)
}
