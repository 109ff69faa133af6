package handler

import (
	"fmt"
	"strings"

	"studio-schedule-bot/internal/service"
)

// grantCredit handles /conceder <studentID> <qty> <validUntil> [modalityID] [reason...].
func (h *Handler) grantCredit(chatID int64, args []string) {
	if len(args) < 3 {
		h.send(chatID, "⚠️ Uso: /conceder <aluno> <qtd> <validade> [modalidade] [motivo]")
		return
	}

	studentID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}
	quantity, err := parseID(args[1])
	if err != nil {
		h.send(chatID, "⚠️ quantidade: "+err.Error())
		return
	}

	input := service.GrantInput{
		StudentID:  studentID,
		Quantity:   int(quantity),
		ValidUntil: args[2],
		GrantedBy:  chatID,
	}

	rest := args[3:]
	if len(rest) > 0 {
		if modalityID, err := parseID(rest[0]); err == nil {
			input.ModalityID = &modalityID
			rest = rest[1:]
		}
	}
	input.Reason = strings.Join(rest, " ")

	credit, err := h.creditService.Grant(input)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	scope := "qualquer modalidade"
	if credit.ModalityID != nil {
		scope = fmt.Sprintf("modalidade %d", *credit.ModalityID)
	}
	h.send(chatID, fmt.Sprintf("🎟 Crédito #%d concedido: %d reposições para o aluno %d, %s, válido até %s.",
		credit.ID, credit.Quantity, credit.StudentID, scope, credit.ValidUntil))
}

// listCredits handles /creditos <studentID>.
func (h *Handler) listCredits(chatID int64, args []string) {
	if len(args) != 1 {
		h.send(chatID, "⚠️ Uso: /creditos <aluno>")
		return
	}

	studentID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	views, err := h.creditService.AvailableCredits(studentID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if len(views) == 0 {
		h.send(chatID, "Nenhum crédito disponível para este aluno.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎟 Créditos do aluno %d:\n\n", studentID))
	for _, view := range views {
		sb.WriteString(fmt.Sprintf("Crédito #%d — %d de %d disponíveis, válido até %s\n",
			view.Credit.ID, view.Available, view.Credit.Quantity, view.Credit.ValidUntil))
		for _, unit := range view.Units {
			if unit.Used {
				sb.WriteString(fmt.Sprintf("  %d: usado em %s #%d (%s)\n",
					unit.Ordinal+1, unit.BookingType, unit.BookingID, unit.UsedAt.Format("2006-01-02")))
			} else {
				sb.WriteString(fmt.Sprintf("  %d: livre\n", unit.Ordinal+1))
			}
		}
		sb.WriteString("\n")
	}
	h.send(chatID, sb.String())
}

// revokeCredit handles /revogar <creditID>. Unused credits disappear;
// partially used ones stop accepting new usages.
func (h *Handler) revokeCredit(chatID int64, args []string) {
	if len(args) != 1 {
		h.send(chatID, "⚠️ Uso: /revogar <crédito>")
		return
	}

	creditID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	if err := h.creditService.Revoke(creditID); err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("🚫 Crédito #%d revogado.", creditID))
}

// cancelUsage handles /cancelar_uso <usageID>: refunds the unit and removes
// the reschedule it paid for.
func (h *Handler) cancelUsage(chatID int64, args []string) {
	if len(args) != 1 {
		h.send(chatID, "⚠️ Uso: /cancelar_uso <uso>")
		return
	}

	usageID, err := parseID(args[0])
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}

	if err := h.creditService.CancelUsage(usageID); err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, fmt.Sprintf("↩️ Uso #%d estornado: a unidade voltou ao crédito e a reposição foi cancelada.", usageID))
}
