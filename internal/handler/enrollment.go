package handler

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// enroll handles /matricular <studentID> <slotID>.
func (h *Handler) enroll(chatID int64, args []string) {
	if len(args) != 2 {
		h.send(chatID, "⚠️ Uso: /matricular <aluno> <horário>")
		return
	}

	studentID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}
	slotID, err := parseID(args[1])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	enrollment, err := h.enrollmentService.Enroll(studentID, slotID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Matrícula %d criada: aluno %d no horário %d.", enrollment.ID, studentID, slotID))
}

// enrollSubstitute handles /substituto <pausedEnrollmentID> <studentID>.
func (h *Handler) enrollSubstitute(chatID int64, args []string) {
	if len(args) != 2 {
		h.send(chatID, "⚠️ Uso: /substituto <matrícula pausada> <aluno>")
		return
	}

	originalID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}
	studentID, err := parseID(args[1])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	substitute, err := h.enrollmentService.EnrollSubstitute(originalID, studentID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Substituto matriculado (matrícula %d) na vaga da matrícula %d.", substitute.ID, originalID))
}

// pauseEnrollment handles /pausar <enrollmentID> <frozen|absent|waitlisted>.
func (h *Handler) pauseEnrollment(chatID int64, args []string) {
	if len(args) != 2 {
		h.send(chatID, "⚠️ Uso: /pausar <matrícula> <frozen|absent|waitlisted>")
		return
	}

	enrollmentID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	enrollment, err := h.enrollmentService.SetPauseState(enrollmentID, strings.ToLower(args[1]))
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, fmt.Sprintf("⏸ Matrícula %d pausada (%s). A vaga pode receber um substituto e o aluno sai das contagens de chamada.",
		enrollment.ID, enrollment.PauseState))
}

// resumeEnrollment handles /retomar <enrollmentID>. When a substitute
// occupies the seat, the conflict is surfaced with resolution buttons.
func (h *Handler) resumeEnrollment(chatID int64, args []string) {
	if len(args) != 1 {
		h.send(chatID, "⚠️ Uso: /retomar <matrícula>")
		return
	}

	enrollmentID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	result, err := h.enrollmentService.Resume(enrollmentID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if result.OK {
		h.send(chatID, fmt.Sprintf("▶️ Matrícula %d retomada.", enrollmentID))
		return
	}

	substitute := result.Substitutes[0]
	text := fmt.Sprintf("⚠️ Conflito de vaga: a matrícula %d está ocupada pelo substituto %s (matrícula %d).\nComo resolver?",
		enrollmentID, substitute.Student.Name, substitute.ID)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Retomar a vaga", fmt.Sprintf("resume_reclaim_%d_%d", enrollmentID, substitute.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Manter os dois", fmt.Sprintf("resume_force_%d", enrollmentID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancelar", "cancel"),
		),
	)
	h.client.Bot.Send(msg)
}

func (h *Handler) handleResumeCallback(chatID int64, data string) {
	switch {
	case strings.HasPrefix(data, "resume_reclaim_"):
		parts := strings.Split(strings.TrimPrefix(data, "resume_reclaim_"), "_")
		if len(parts) != 2 {
			return
		}
		originalID, err1 := parseID(parts[0])
		substituteID, err2 := parseID(parts[1])
		if err1 != nil || err2 != nil {
			return
		}
		if err := h.enrollmentService.ReclaimSeat(originalID, substituteID); err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, fmt.Sprintf("▶️ Matrícula %d retomada; substituto %d desativado.", originalID, substituteID))
	case strings.HasPrefix(data, "resume_force_"):
		id, err := parseID(strings.TrimPrefix(data, "resume_force_"))
		if err != nil {
			return
		}
		enrollment, err := h.enrollmentService.ForceResume(id)
		if err != nil {
			h.replyError(chatID, err)
			return
		}
		h.send(chatID, fmt.Sprintf("▶️ Matrícula %d retomada mantendo o substituto. A turma fica acima da capacidade.", enrollment.ID))
	}
}
