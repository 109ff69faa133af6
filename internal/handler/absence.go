package handler

import (
	"fmt"
	"strings"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/service"
)

// notifyAbsence handles /aviso <studentID> <slotID> <date>.
func (h *Handler) notifyAbsence(chatID int64, args []string) {
	if len(args) != 3 {
		h.send(chatID, "⚠️ Uso: /aviso <aluno> <horário> <data>")
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

	notice, err := h.absenceService.Notify(service.NotifyInput{
		StudentID: studentID,
		SlotID:    slotID,
		Date:      args[2],
	})
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if notice.Status == models.NoticeConfirmed {
		h.send(chatID, fmt.Sprintf("ℹ️ Aviso #%d já estava registrado e confirmado.", notice.ID))
		return
	}
	h.send(chatID, fmt.Sprintf("🔔 Aviso de falta #%d registrado para %s. Será confirmado quando a chamada da aula for feita.", notice.ID, notice.Date))
}

// listAbsences handles /faltas <studentID>.
func (h *Handler) listAbsences(chatID int64, args []string) {
	if len(args) != 1 {
		h.send(chatID, "⚠️ Uso: /faltas <aluno>")
		return
	}

	studentID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	views, err := h.absenceService.AbsencesFor(studentID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if len(views) == 0 {
		h.send(chatID, "Nenhum aviso de falta registrado para este aluno.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📒 Faltas avisadas do aluno %d:\n\n", studentID))
	for _, view := range views {
		sb.WriteString(fmt.Sprintf("• #%d %s horário %d — ", view.Notice.ID, view.Notice.Date, view.Notice.SlotID))
		switch view.StatusReposicao {
		case service.MakeupDisponivel:
			sb.WriteString(fmt.Sprintf("reposição disponível (%d dias restantes)", view.DiasRestantes))
		case service.MakeupPendente:
			sb.WriteString("aguardando confirmação")
		case service.MakeupAprovada:
			sb.WriteString("reposição aprovada")
		case service.MakeupRejeitada:
			sb.WriteString("reposição rejeitada")
		case service.MakeupExpirada:
			sb.WriteString("prazo de reposição expirado")
		}
		sb.WriteString("\n")
	}
	h.send(chatID, sb.String())
}
