package handler

import (
	"fmt"
	"strings"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// createReschedule handles
// /reagendar <studentID> <enrollmentID> <origSlotID> <origDate> <newSlotID> <newDate> [creditID].
// A confirmed absence notice for the original occurrence, when one exists,
// is attached automatically as justification.
func (h *Handler) createReschedule(chatID int64, args []string) {
	if len(args) < 6 || len(args) > 7 {
		h.send(chatID, "⚠️ Uso: /reagendar <aluno> <matrícula> <horário orig.> <data orig.> <horário novo> <data nova> [crédito]")
		return
	}

	ids := make([]uint, 0, 4)
	for _, i := range []int{0, 1, 2, 4} {
		id, err := parseID(args[i])
		if err != nil {
			h.send(chatID, "⚠️ "+err.Error())
			return
		}
		ids = append(ids, id)
	}

	input := service.CreateRescheduleInput{
		StudentID:      ids[0],
		EnrollmentID:   ids[1],
		OriginalSlotID: ids[2],
		OriginalDate:   args[3],
		NewSlotID:      ids[3],
		NewDate:        args[5],
		RequestedBy:    chatID,
	}

	if len(args) == 7 {
		creditID, err := parseID(args[6])
		if err != nil {
			h.send(chatID, "⚠️ crédito: "+err.Error())
			return
		}
		input.CreditID = &creditID
	}

	notice, err := h.absenceService.ConfirmedNotice(input.StudentID, input.OriginalSlotID, input.OriginalDate)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if notice != nil {
		input.AbsenceNoticeID = &notice.ID
	}

	request, err := h.rescheduleService.CreateTemporary(input)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	switch request.Status {
	case models.RequestAprovado:
		h.send(chatID, fmt.Sprintf("✅ Reagendamento #%d aprovado: aluno %d entra como reposição em %s.",
			request.ID, request.StudentID, request.NewDate))
	default:
		h.send(chatID, fmt.Sprintf("📨 Reagendamento #%d criado, aguardando aprovação. Use /reagendamentos para decidir.", request.ID))
	}
}

// listReschedules shows pending temporary requests with approve/reject
// buttons.
func (h *Handler) listReschedules(chatID int64) {
	requests, err := h.rescheduleService.PendingRequests()
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if len(requests) == 0 {
		h.send(chatID, "✅ Nenhum reagendamento pendente.")
		return
	}

	for _, request := range requests {
		text := fmt.Sprintf("📨 Reagendamento #%d\nAluno: %s (%d)\nDe: horário %d em %s\nPara: horário %d em %s",
			request.ID, request.Student.Name, request.StudentID,
			request.OriginalSlotID, request.OriginalDate,
			request.NewSlotID, request.NewDate)
		if request.Reason != "" {
			text += "\nMotivo: " + request.Reason
		}
		if request.AbsenceNoticeID != nil {
			text += fmt.Sprintf("\nJustificado pelo aviso #%d", *request.AbsenceNoticeID)
		}
		if request.CreditUsageID != nil {
			text += fmt.Sprintf("\nPago com crédito (uso #%d)", *request.CreditUsageID)
		}

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Aprovar", fmt.Sprintf("resched_ok_%d", request.ID)),
				tgbotapi.NewInlineKeyboardButtonData("❌ Rejeitar", fmt.Sprintf("resched_no_%d", request.ID)),
			),
		)
		h.client.Bot.Send(msg)
	}
}

func (h *Handler) handleRescheduleCallback(chatID int64, data string) {
	switch {
	case strings.HasPrefix(data, "resched_ok_"):
		id, err := parseID(strings.TrimPrefix(data, "resched_ok_"))
		if err != nil {
			return
		}
		request, err := h.rescheduleService.Approve(id, chatID)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, fmt.Sprintf("✅ Reagendamento #%d aprovado: aluno aparece na chamada de %s.", request.ID, request.NewDate))
	case strings.HasPrefix(data, "resched_no_"):
		id, err := parseID(strings.TrimPrefix(data, "resched_no_"))
		if err != nil {
			return
		}
		request, err := h.rescheduleService.Reject(id, "rejeitado pela equipe", chatID)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		text := fmt.Sprintf("❌ Reagendamento #%d rejeitado.", request.ID)
		if request.CreditUsageID != nil {
			text += " O crédito usado foi devolvido."
		}
		h.send(chatID, text)
	}
}

// createChange handles /alterar <studentID> <enrollmentID> <newSlotID> [reason...].
func (h *Handler) createChange(chatID int64, args []string) {
	if len(args) < 3 {
		h.send(chatID, "⚠️ Uso: /alterar <aluno> <matrícula> <horário novo> [motivo]")
		return
	}

	studentID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}
	enrollmentID, err := parseID(args[1])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}
	newSlotID, err := parseID(args[2])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	change, err := h.rescheduleService.CreatePermanentChange(service.CreateChangeInput{
		StudentID:    studentID,
		EnrollmentID: enrollmentID,
		NewSlotID:    newSlotID,
		Reason:       strings.Join(args[3:], " "),
	})
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if change.Status == models.RequestAprovado {
		h.send(chatID, fmt.Sprintf("✅ Mudança #%d aprovada: matrícula %d agora é do horário %d.",
			change.ID, change.EnrollmentID, change.NewSlotID))
		return
	}
	h.send(chatID, fmt.Sprintf("📨 Mudança de horário #%d criada, aguardando aprovação. Use /alteracoes para decidir.", change.ID))
}

// listChanges shows pending permanent changes with approve/reject buttons.
func (h *Handler) listChanges(chatID int64) {
	changes, err := h.rescheduleService.PendingChanges()
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if len(changes) == 0 {
		h.send(chatID, "✅ Nenhuma mudança de horário pendente.")
		return
	}

	for _, change := range changes {
		text := fmt.Sprintf("📨 Mudança #%d\nAluno: %d, matrícula %d\nDe: horário %d\nPara: horário %d",
			change.ID, change.StudentID, change.EnrollmentID, change.CurrentSlotID, change.NewSlotID)
		if change.Reason != "" {
			text += "\nMotivo: " + change.Reason
		}

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Aprovar", fmt.Sprintf("change_ok_%d", change.ID)),
				tgbotapi.NewInlineKeyboardButtonData("❌ Rejeitar", fmt.Sprintf("change_no_%d", change.ID)),
			),
		)
		h.client.Bot.Send(msg)
	}
}

func (h *Handler) handleChangeCallback(chatID int64, data string) {
	switch {
	case strings.HasPrefix(data, "change_ok_"):
		id, err := parseID(strings.TrimPrefix(data, "change_ok_"))
		if err != nil {
			return
		}
		change, err := h.rescheduleService.ApproveChange(id, chatID)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, fmt.Sprintf("✅ Mudança #%d aprovada: matrícula %d movida para o horário %d.",
			change.ID, change.EnrollmentID, change.NewSlotID))
	case strings.HasPrefix(data, "change_no_"):
		id, err := parseID(strings.TrimPrefix(data, "change_no_"))
		if err != nil {
			return
		}
		change, err := h.rescheduleService.RejectChange(id, "rejeitado pela equipe", chatID)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, fmt.Sprintf("❌ Mudança #%d rejeitada, matrícula permanece no horário %d.", change.ID, change.CurrentSlotID))
	}
}

// clearHistory handles /limpar_historico.
func (h *Handler) clearHistory(chatID int64) {
	deleted, err := h.rescheduleService.ClearResolvedHistory()
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("🧹 %d pedidos decididos foram removidos do histórico.", deleted))
}
